package services

import (
	"fmt"

	"github.com/vitalsheet/whatsapp-backend/internal/models"
)

// ConnectStep tags the phase of the account-connection flow a link
// message belongs to.
type ConnectStep string

const (
	ConnectStarted  ConnectStep = "auth_started"
	ConnectFinished ConnectStep = "auth_finished"
	ConnectFailed   ConnectStep = "auth_failed"
)

type replyButton struct {
	ID    string
	Title string
}

func textPayload(to, body string) map[string]any {
	return map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "text",
		"text":              map[string]any{"body": body},
	}
}

func buttonPayload(to, header, body, footer string, buttons []replyButton) map[string]any {
	actions := make([]map[string]any, 0, len(buttons))
	for _, b := range buttons {
		actions = append(actions, map[string]any{
			"type":  "reply",
			"reply": map[string]any{"id": b.ID, "title": b.Title},
		})
	}
	interactive := map[string]any{
		"type":   "button",
		"body":   map[string]any{"text": body},
		"action": map[string]any{"buttons": actions},
	}
	if header != "" {
		interactive["header"] = map[string]any{"type": "text", "text": header}
	}
	if footer != "" {
		interactive["footer"] = map[string]any{"text": footer}
	}
	return map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "interactive",
		"interactive":       interactive,
	}
}

func ctaPayload(to, body, displayText, url string) map[string]any {
	return map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]any{
			"type": "cta_url",
			"body": map[string]any{"text": body},
			"action": map[string]any{
				"name": "cta_url",
				"parameters": map[string]any{
					"display_text": displayText,
					"url":          url,
				},
			},
		},
	}
}

// readingPromptPayload is the step-one bubble: the category picker for an
// unrecognized message, or the format instructions once a category is
// chosen.
func readingPromptPayload(to string, kind models.ReadingKind) map[string]any {
	switch kind {
	case models.ReadingBloodSugar:
		return buttonPayload(to,
			"🩸 Blood Sugar Selected",
			"Please reply in this format:\n• *Type:* Fasting (F) / Post-Meal (P)\n• *Value:* mg/dL",
			"✨ Example: *F 95*",
			[]replyButton{{ID: "none", Title: "Go Back"}})
	case models.ReadingBloodPressure:
		return buttonPayload(to,
			"🫀 Blood Pressure Selected",
			"Please reply in this format:\n• *BP:* Systolic/Diastolic (mmHg)\n• *HR:* Beats per minute",
			"✨ Example: *120/80 72*",
			[]replyButton{{ID: "none", Title: "Go Back"}})
	default:
		return buttonPayload(to,
			"🩺 Health Check-In",
			"Hi there! 👋\n\nWhat would you like to record today?",
			"*Please choose one option*",
			[]replyButton{
				{ID: "bp", Title: "🫀 Blood Pressure"},
				{ID: "bs", Title: "🩸 Blood Sugar"},
			})
	}
}

// readingConfirmationPayload is the step-two bubble echoing the values
// just persisted.
func readingConfirmationPayload(to string, r models.Reading) map[string]any {
	header := "✅ Got it! Here's what I have received:"
	footer := "*Your reading is saved successfully.*"
	buttons := []replyButton{{ID: "none", Title: "Start Again"}}

	switch r.Kind {
	case models.ReadingBloodSugar:
		bs := r.BloodSugar
		body := fmt.Sprintf("🩸 *Type:* %s\n📊 *Value:* %d mg/dL\n📅 *Date:* %s\n⏰ *Time:* %s",
			bs.Type, bs.Value, bs.Date, bs.Time)
		return buttonPayload(to, header, body, footer, buttons)
	default:
		bp := r.BloodPressure
		body := fmt.Sprintf("🫀 *Blood Pressure:* %d/%d mmHg\n📊 *Heart Rate:* %s\n📅 *Date:* %s\n⏰ *Time:* %s",
			bp.Systolic, bp.Diastolic, bp.HeartRate, bp.Date, bp.Time)
		return buttonPayload(to, header, body, footer, buttons)
	}
}

// authLinkPayload is the connection call-to-action for each phase of the
// authorization flow. authURL already carries the state round-trip value.
func authLinkPayload(to string, step ConnectStep, authURL string) map[string]any {
	switch step {
	case ConnectFinished:
		return buttonPayload(to,
			"",
			"✅ Account connected successfully!\nTap Start to continue.",
			"",
			[]replyButton{{ID: "none", Title: "Start"}})
	case ConnectFailed:
		return ctaPayload(to,
			"⚠️ Hmm… we couldn't complete the connection.\nPlease try connecting again to continue.",
			"Retry Connection",
			authURL)
	default:
		return ctaPayload(to,
			"Please connect your Google account to continue.",
			"Continue",
			authURL)
	}
}

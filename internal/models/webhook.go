package models

import "errors"

// ErrNoActionableEvent is returned when a webhook envelope carries nothing
// this bot reacts to.
var ErrNoActionableEvent = errors.New("no actionable message type found")

// EventType classifies an inbound webhook delivery.
type EventType string

const (
	EventText        EventType = "text_message"
	EventInteractive EventType = "interactive_message"
	EventStatus      EventType = "message_status"
)

// WebhookBody mirrors the Graph API webhook envelope for a WhatsApp
// Business Account subscription.
type WebhookBody struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Contacts         []WebhookContact `json:"contacts,omitempty"`
	Messages         []WebhookMessage `json:"messages,omitempty"`
	Statuses         []WebhookStatus  `json:"statuses,omitempty"`
}

type WebhookContact struct {
	WaID string `json:"wa_id"`
}

type WebhookMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *WebhookText        `json:"text,omitempty"`
	Interactive *WebhookInteractive `json:"interactive,omitempty"`
}

type WebhookText struct {
	Body string `json:"body"`
}

type WebhookInteractive struct {
	Type        string            `json:"type"`
	ButtonReply *InteractiveReply `json:"button_reply,omitempty"`
	ListReply   *InteractiveReply `json:"list_reply,omitempty"`
}

type InteractiveReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type WebhookStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// InboundEvent is the flattened view of one webhook delivery that the
// dispatcher works with.
type InboundEvent struct {
	Type   EventType
	From   string // reply-to number
	UserID string // channel-assigned user identifier (wa_id)
	Body   string // text body, or the selected reply id for interactive events
	Status string // delivery status for status events
}

// Event extracts the single actionable event from the envelope. Statuses
// carry no contact block, so the recipient id stands in for the user there.
func (b WebhookBody) Event() (InboundEvent, error) {
	if len(b.Entry) == 0 || len(b.Entry[0].Changes) == 0 {
		return InboundEvent{}, ErrNoActionableEvent
	}
	change := b.Entry[0].Changes[0]
	if change.Field != "messages" {
		return InboundEvent{}, ErrNoActionableEvent
	}
	value := change.Value

	var waID string
	if len(value.Contacts) > 0 {
		waID = value.Contacts[0].WaID
	}

	if len(value.Messages) > 0 {
		msg := value.Messages[0]
		switch {
		case msg.Type == "text" && msg.Text != nil:
			return InboundEvent{
				Type:   EventText,
				From:   msg.From,
				UserID: waID,
				Body:   msg.Text.Body,
			}, nil
		case msg.Type == "interactive" && msg.Interactive != nil:
			reply := msg.Interactive.ButtonReply
			if msg.Interactive.Type == "list_reply" {
				reply = msg.Interactive.ListReply
			}
			if reply == nil {
				return InboundEvent{}, ErrNoActionableEvent
			}
			return InboundEvent{
				Type:   EventInteractive,
				From:   msg.From,
				UserID: waID,
				Body:   reply.ID,
			}, nil
		}
	}

	if len(value.Statuses) > 0 {
		st := value.Statuses[0]
		return InboundEvent{
			Type:   EventStatus,
			UserID: st.RecipientID,
			Status: st.Status,
		}, nil
	}

	return InboundEvent{}, ErrNoActionableEvent
}

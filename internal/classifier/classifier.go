package classifier

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vitalsheet/whatsapp-backend/internal/models"
)

// The two accepted message grammars. Both anchor start and end so partial
// matches inside longer sentences are rejected.
var (
	bloodSugarRe = regexp.MustCompile(
		`(?i)^\s*(?:(?:fasting|fast|f|post(?:[-\s]?meal)?|p)\s+(\d{2,3})|(\d{2,3})\s+(?:fasting|fast|f|post(?:[-\s]?meal)?|p))\s*$`)
	bloodPressureRe = regexp.MustCompile(
		`^(?:\d{2,3}\s*/\s*\d{2,3}(?:\s+\d{2,3})?|\d{2,3}\s+\d{2,3}\s*/\s*\d{2,3})$`)
)

// Validated is a raw message together with its recognized reading kind.
type Validated struct {
	Value string
	Kind  models.ReadingKind
}

// Classify decides whether raw is a blood-sugar or blood-pressure message.
// Blood sugar wins if both grammars somehow match. An unrecognized message
// classifies as ReadingNone; that is a valid outcome, not an error.
func Classify(raw string) Validated {
	v := Validated{Value: raw, Kind: models.ReadingNone}
	switch {
	case bloodSugarRe.MatchString(raw):
		v.Kind = models.ReadingBloodSugar
	case bloodPressureRe.MatchString(raw):
		v.Kind = models.ReadingBloodPressure
	}
	return v
}

// Parse builds the structured reading from a validated message. The capture
// date and time come from the supplied clock, not from the message itself.
func Parse(v Validated, now time.Time) models.Reading {
	date := now.Format("02-01-2006")
	clock := strings.ToLower(now.Format("3:04PM"))
	tokens := strings.Fields(strings.TrimSpace(v.Value))

	switch v.Kind {
	case models.ReadingBloodSugar:
		// The value is either the first or the last token; multi-word type
		// tokens like "post meal" sit on the other side of it.
		typeToken, valueToken := tokens[0], tokens[len(tokens)-1]
		if isNumeric(tokens[0]) {
			typeToken, valueToken = tokens[len(tokens)-1], tokens[0]
		}
		mt := models.MeasurementPostMeal
		if strings.HasPrefix(strings.ToLower(typeToken), "f") {
			mt = models.MeasurementFasting
		}
		value, _ := strconv.Atoi(valueToken)
		return models.Reading{
			Kind: models.ReadingBloodSugar,
			BloodSugar: &models.BloodSugar{
				Type:  mt,
				Value: value,
				Date:  date,
				Time:  clock,
			},
		}

	case models.ReadingBloodPressure:
		pressureToken := tokens[0]
		heartRateToken := ""
		if isNumeric(tokens[0]) {
			pressureToken = tokens[1]
			heartRateToken = tokens[0]
		} else if len(tokens) > 1 {
			heartRateToken = tokens[1]
		}
		parts := strings.SplitN(pressureToken, "/", 2)
		systolic, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
		diastolic, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
		heartRate := models.HeartRateNotEntered
		if heartRateToken != "" {
			heartRate = heartRateToken + " bpm"
		}
		return models.Reading{
			Kind: models.ReadingBloodPressure,
			BloodPressure: &models.BloodPressure{
				Systolic:  systolic,
				Diastolic: diastolic,
				HeartRate: heartRate,
				Date:      date,
				Time:      clock,
			},
		}
	}

	return models.Reading{Kind: models.ReadingNone}
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

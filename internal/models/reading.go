package models

// ReadingKind identifies which biometric a message carried.
type ReadingKind string

const (
	ReadingBloodSugar    ReadingKind = "bs"
	ReadingBloodPressure ReadingKind = "bp"
	ReadingNone          ReadingKind = "none"
)

// MeasurementType distinguishes the two blood-sugar contexts.
type MeasurementType string

const (
	MeasurementFasting  MeasurementType = "Fasting"
	MeasurementPostMeal MeasurementType = "Post-Meal"
)

// HeartRateNotEntered is stored verbatim when a blood-pressure reading
// arrives without a heart rate. A literal string keeps "not provided"
// distinguishable from a numeric zero in the sheet.
const HeartRateNotEntered = "value not entered"

// Reading is one parsed biometric measurement. Exactly one of BloodSugar
// or BloodPressure is set, matching Kind.
type Reading struct {
	Kind          ReadingKind    `json:"kind"`
	BloodSugar    *BloodSugar    `json:"blood_sugar,omitempty"`
	BloodPressure *BloodPressure `json:"blood_pressure,omitempty"`
}

// BloodSugar is a single glucose reading in mg/dL.
type BloodSugar struct {
	Type  MeasurementType `json:"type"`
	Value int             `json:"value"`
	Date  string          `json:"date"`
	Time  string          `json:"time"`
}

// BloodPressure is a single pressure reading in mmHg, with an optional
// heart rate ("72 bpm" or HeartRateNotEntered).
type BloodPressure struct {
	Systolic  int    `json:"systolic"`
	Diastolic int    `json:"diastolic"`
	HeartRate string `json:"heart_rate"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// Row returns the reading as a spreadsheet row in the column order of the
// sheet it belongs to.
func (r Reading) Row() []interface{} {
	switch r.Kind {
	case ReadingBloodSugar:
		bs := r.BloodSugar
		return []interface{}{bs.Date, bs.Time, string(bs.Type), bs.Value}
	case ReadingBloodPressure:
		bp := r.BloodPressure
		return []interface{}{bp.Date, bp.Time, bp.Systolic, bp.Diastolic, bp.HeartRate}
	}
	return nil
}

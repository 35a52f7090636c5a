package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalsheet/whatsapp-backend/internal/models"
)

var testClock = time.Date(2026, 1, 7, 14, 30, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  models.ReadingKind
	}{
		{"F 95", models.ReadingBloodSugar},
		{"95 F", models.ReadingBloodSugar},
		{"110 f", models.ReadingBloodSugar},
		{"fasting 102", models.ReadingBloodSugar},
		{"fast 102", models.ReadingBloodSugar},
		{"p 140", models.ReadingBloodSugar},
		{"post-meal 140", models.ReadingBloodSugar},
		{"post meal 140", models.ReadingBloodSugar},
		{"140 post", models.ReadingBloodSugar},
		{"  F 95  ", models.ReadingBloodSugar},

		{"120/80 72", models.ReadingBloodPressure},
		{"72 120/80", models.ReadingBloodPressure},
		{"120/80", models.ReadingBloodPressure},
		{"120 72/80", models.ReadingBloodPressure},

		{"Hi", models.ReadingNone},
		{"hello there", models.ReadingNone},
		{"F", models.ReadingNone},
		{"95", models.ReadingNone},
		{"9 F", models.ReadingNone},     // value must be 2-3 digits
		{"1200/80", models.ReadingNone}, // systolic too long
		{"F 95 extra", models.ReadingNone},
		{"", models.ReadingNone},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Classify(tt.input)
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, tt.input, got.Value)
		})
	}
}

func TestParseBloodSugar_OrderIndependent(t *testing.T) {
	for _, input := range []string{"F 95", "95 F"} {
		reading := Parse(Classify(input), testClock)
		require.Equal(t, models.ReadingBloodSugar, reading.Kind, input)
		require.NotNil(t, reading.BloodSugar)
		assert.Equal(t, models.MeasurementFasting, reading.BloodSugar.Type)
		assert.Equal(t, 95, reading.BloodSugar.Value)
	}
}

func TestParseBloodSugar_PostMeal(t *testing.T) {
	reading := Parse(Classify("140 post"), testClock)
	require.NotNil(t, reading.BloodSugar)
	assert.Equal(t, models.MeasurementPostMeal, reading.BloodSugar.Type)
	assert.Equal(t, 140, reading.BloodSugar.Value)
}

func TestParseBloodPressure_OrderIndependent(t *testing.T) {
	for _, input := range []string{"120/80 72", "72 120/80"} {
		reading := Parse(Classify(input), testClock)
		require.Equal(t, models.ReadingBloodPressure, reading.Kind, input)
		require.NotNil(t, reading.BloodPressure)
		assert.Equal(t, 120, reading.BloodPressure.Systolic)
		assert.Equal(t, 80, reading.BloodPressure.Diastolic)
		assert.Equal(t, "72 bpm", reading.BloodPressure.HeartRate)
	}
}

func TestParseBloodPressure_MissingHeartRate(t *testing.T) {
	reading := Parse(Classify("120/80"), testClock)
	require.NotNil(t, reading.BloodPressure)
	assert.Equal(t, models.HeartRateNotEntered, reading.BloodPressure.HeartRate)
}

func TestParse_StampsCaptureTime(t *testing.T) {
	reading := Parse(Classify("F 95"), testClock)
	require.NotNil(t, reading.BloodSugar)
	assert.Equal(t, "07-01-2026", reading.BloodSugar.Date)
	assert.Equal(t, "2:30pm", reading.BloodSugar.Time)

	morning := time.Date(2026, 1, 7, 0, 5, 0, 0, time.UTC)
	reading = Parse(Classify("120/80"), morning)
	require.NotNil(t, reading.BloodPressure)
	assert.Equal(t, "12:05am", reading.BloodPressure.Time)
}

func TestParse_NoMatchKind(t *testing.T) {
	reading := Parse(Classify("hello"), testClock)
	assert.Equal(t, models.ReadingNone, reading.Kind)
	assert.Nil(t, reading.BloodSugar)
	assert.Nil(t, reading.BloodPressure)
}

func TestReadingRow(t *testing.T) {
	bs := Parse(Classify("110 f"), testClock)
	assert.Equal(t, []interface{}{"07-01-2026", "2:30pm", "Fasting", 110}, bs.Row())

	bp := Parse(Classify("120/80 72"), testClock)
	assert.Equal(t, []interface{}{"07-01-2026", "2:30pm", 120, 80, "72 bpm"}, bp.Row())
}

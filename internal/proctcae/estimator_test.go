package proctcae

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateSeverity_KeywordPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		want    Severity
	}{
		{"very severe", "the reaction was very severe", SeverityVerySevere},
		{"extreme", "extreme discomfort reported", SeverityVerySevere},
		{"severe", "patient had a severe reaction", SeveritySevere},
		{"terrible", "it was terrible", SeveritySevere},
		{"moderate", "moderate itching after the scan", SeverityModerate},
		{"bad", "a bad rash appeared", SeverityModerate},
		{"mild", "only mild symptoms", SeverityMild},
		{"slight", "slight swelling of the lips", SeverityMild},
		{"case insensitive", "Patient reported SEVERE hives", SeveritySevere},
		// "very severe" contains "severe"; the higher family must win.
		{"very severe beats severe", "a very severe episode", SeverityVerySevere},
		// Position-insensitive: the higher-priority family wins even when it
		// appears after a lower one in the text.
		{"higher family wins over position", "mild headache but severe nausea", SeveritySevere},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := PatientSummary{FullSummary: tt.summary}
			assert.Equal(t, tt.want, EstimateSeverity("itching", summary))
		})
	}
}

func TestEstimateSeverity_NoKeywordFallbacks(t *testing.T) {
	prior := PatientSummary{HasPreviousReaction: true, FullSummary: "patient reports symptoms"}
	noPrior := PatientSummary{FullSummary: "patient reports symptoms"}

	// Critical symptom with a prior reaction bumps to moderate.
	assert.Equal(t, SeverityModerate, EstimateSeverity("shortness of breath", prior))
	assert.Equal(t, SeverityModerate, EstimateSeverity("chest pain", prior))

	// Non-critical symptom with a prior reaction stays mild.
	assert.Equal(t, SeverityMild, EstimateSeverity("itching", prior))

	// No prior reaction defaults to mild.
	assert.Equal(t, SeverityMild, EstimateSeverity("shortness of breath", noPrior))
	assert.Equal(t, SeverityMild, EstimateSeverity("itching", noPrior))
}

func TestEstimateSeverity_NeverReturnsNone(t *testing.T) {
	assert.Greater(t, EstimateSeverity("", PatientSummary{}), SeverityNone)
	assert.Greater(t, EstimateSeverity("banana", PatientSummary{}), SeverityNone)
}

func TestInterferenceFor(t *testing.T) {
	assert.Equal(t, InterferenceQuiteABit, InterferenceFor(SeverityVerySevere))
	assert.Equal(t, InterferenceQuiteABit, InterferenceFor(SeveritySevere))
	assert.Equal(t, InterferenceSomewhat, InterferenceFor(SeverityModerate))
	assert.Equal(t, InterferenceALittleBit, InterferenceFor(SeverityMild))
	assert.Equal(t, InterferenceALittleBit, InterferenceFor(SeverityNone))
}

func TestDefaultFrequency(t *testing.T) {
	assert.Equal(t, FrequencyOccasionally, DefaultFrequency())
}

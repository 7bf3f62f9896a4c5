package proctcae

import "strings"

// severityKeywords is scanned in order; the first family found anywhere in the
// narrative wins, regardless of position in the text.
var severityKeywords = []struct {
	keyword string
	level   Severity
}{
	{"very severe", SeverityVerySevere},
	{"extreme", SeverityVerySevere},
	{"severe", SeveritySevere},
	{"terrible", SeveritySevere},
	{"moderate", SeverityModerate},
	{"bad", SeverityModerate},
	{"mild", SeverityMild},
	{"slight", SeverityMild},
}

// criticalSymptoms are canonical keys treated as higher-risk when the patient
// reports a prior contrast reaction.
var criticalSymptoms = map[string]bool{
	"shortness_of_breath": true,
	"chest_tightness":     true,
	"throat_swelling":     true,
}

// EstimateSeverity derives a severity level for a reported symptom from the
// summary narrative and reaction history. It never returns SeverityNone:
// a symptom reported without an explicit qualifier still defaults to mild.
func EstimateSeverity(symptom string, summary PatientSummary) Severity {
	narrative := strings.ToLower(summary.FullSummary)
	for _, kw := range severityKeywords {
		if strings.Contains(narrative, kw.keyword) {
			return kw.level
		}
	}

	if summary.HasPreviousReaction {
		if key, ok := Normalize(symptom); ok && criticalSymptoms[key] {
			return SeverityModerate
		}
		return SeverityMild
	}

	return SeverityMild
}

// DefaultFrequency is assigned to any reported symptom whose item collects a
// frequency attribute; no richer frequency signal is extracted.
func DefaultFrequency() Frequency {
	return FrequencyOccasionally
}

// InterferenceFor derives interference purely from severity.
func InterferenceFor(severity Severity) Interference {
	switch {
	case severity >= SeveritySevere:
		return InterferenceQuiteABit
	case severity >= SeverityModerate:
		return InterferenceSomewhat
	default:
		return InterferenceALittleBit
	}
}

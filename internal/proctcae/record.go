package proctcae

import (
	"fmt"
	"strings"
)

const recordVersion = "1.0"

// AttributeValue pairs a numeric PRO-CTCAE attribute value with its label.
type AttributeValue struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// RecordEntry is one observation formatted for EHR entry.
type RecordEntry struct {
	SymptomTerm         string          `json:"symptom_term"`
	Code                string          `json:"code"`
	PatientReportedText string          `json:"patient_reported_text,omitempty"`
	Severity            *AttributeValue `json:"severity,omitempty"`
	Frequency           *AttributeValue `json:"frequency,omitempty"`
	Interference        *AttributeValue `json:"interference,omitempty"`
	Presence            *bool           `json:"presence,omitempty"`
}

// Record is the versioned, EHR-ready assessment document. SourceReference and
// AssessmentTimestamp are filled in by the caller that persists the record.
type Record struct {
	Version             string        `json:"pro_ctcae_version"`
	SourceReference     string        `json:"source_reference,omitempty"`
	AssessmentTimestamp string        `json:"assessment_timestamp,omitempty"`
	ClinicalSummary     string        `json:"clinical_summary,omitempty"`
	Entries             []RecordEntry `json:"entries"`
}

// FormatForRecord wraps entries into a versioned EHR record, expanding each
// numeric attribute into value+label form.
func (m *Mapper) FormatForRecord(entries []Entry) *Record {
	record := &Record{
		Version: recordVersion,
		Entries: make([]RecordEntry, 0, len(entries)),
	}

	for _, entry := range entries {
		re := RecordEntry{
			SymptomTerm:         entry.SymptomTerm,
			Code:                entry.Code,
			PatientReportedText: entry.RawText,
			Presence:            entry.Presence,
		}
		if entry.Severity != nil {
			re.Severity = &AttributeValue{Value: int(*entry.Severity), Label: entry.Severity.Label()}
		}
		if entry.Frequency != nil {
			re.Frequency = &AttributeValue{Value: int(*entry.Frequency), Label: entry.Frequency.Label()}
		}
		if entry.Interference != nil {
			re.Interference = &AttributeValue{Value: int(*entry.Interference), Label: entry.Interference.Label()}
		}
		record.Entries = append(record.Entries, re)
	}

	return record
}

// Summarize renders a fixed-format clinical report bucketing entries by
// severity. Presence-only entries land in the mild bucket. Output is
// deterministic: buckets keep input order.
func (m *Mapper) Summarize(entries []Entry) string {
	if len(entries) == 0 {
		return "No PRO-CTCAE symptoms reported."
	}

	var severe, moderate, mild []string
	for _, entry := range entries {
		text := fmt.Sprintf("%s (%s)", entry.SymptomTerm, entry.Code)
		switch {
		case entry.Severity != nil && *entry.Severity >= SeveritySevere:
			severe = append(severe, text)
		case entry.Severity != nil && *entry.Severity >= SeverityModerate:
			moderate = append(moderate, text)
		default:
			mild = append(mild, text)
		}
	}

	rule := strings.Repeat("-", 40)
	var b strings.Builder
	b.WriteString("PRO-CTCAE Assessment Summary:\n")
	b.WriteString(rule + "\n")
	if len(severe) > 0 {
		b.WriteString("SEVERE: " + strings.Join(severe, ", ") + "\n")
	}
	if len(moderate) > 0 {
		b.WriteString("MODERATE: " + strings.Join(moderate, ", ") + "\n")
	}
	if len(mild) > 0 {
		b.WriteString("MILD: " + strings.Join(mild, ", ") + "\n")
	}
	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("Total symptoms reported: %d\n", len(entries)))

	return b.String()
}

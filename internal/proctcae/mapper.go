package proctcae

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// Entry is one coded PRO-CTCAE observation built from a patient report.
// The set of populated attribute fields matches the attribute set declared
// on the matching SymptomDefinition exactly.
type Entry struct {
	SymptomTerm  string        `json:"symptom_term"`
	Code         string        `json:"code"`
	Severity     *Severity     `json:"severity,omitempty"`
	Frequency    *Frequency    `json:"frequency,omitempty"`
	Interference *Interference `json:"interference,omitempty"`
	Presence     *bool         `json:"presence,omitempty"`
	RawText      string        `json:"raw_text,omitempty"`
}

// Mapper turns a structured patient summary into coded PRO-CTCAE entries.
// It is state-free and safe for concurrent use.
type Mapper struct{}

// NewMapper creates a new PRO-CTCAE mapper
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map builds one entry per mapped symptom in the summary's reported-symptoms
// list, preserving encounter order. Unmapped symptoms are logged and skipped.
// A synthesized anxiety entry is appended last when the concerns heuristic fires.
func (m *Mapper) Map(summary PatientSummary) []Entry {
	var entries []Entry

	for _, symptom := range summary.ReportedSymptoms {
		key, ok := Normalize(symptom)
		if !ok {
			if symptom != "" {
				log.Warn().Str("symptom", symptom).Msg("unmapped symptom, skipping")
			}
			continue
		}

		def, ok := Definition(key)
		if !ok {
			continue
		}

		entry := Entry{
			SymptomTerm: def.Term,
			Code:        def.Code,
			RawText:     symptom,
		}

		if def.Requires(AttrSeverity) {
			sev := EstimateSeverity(symptom, summary)
			entry.Severity = &sev
		}
		if def.Requires(AttrPresence) {
			present := true
			entry.Presence = &present
		}
		if def.Requires(AttrFrequency) {
			freq := DefaultFrequency()
			entry.Frequency = &freq
		}
		if def.Requires(AttrInterference) && entry.Severity != nil {
			interf := InterferenceFor(*entry.Severity)
			entry.Interference = &interf
		}

		entries = append(entries, entry)
	}

	if anxiety := m.anxietyFromConcerns(summary.PatientConcerns); anxiety != nil {
		entries = append(entries, *anxiety)
	}

	return entries
}

// anxietyFromConcerns synthesizes a mild anxiety entry when the patient voiced
// concerns. This is a keyword heuristic, not text understanding: the concerns
// field must be non-empty, mention "concern", and not be the literal phrase
// "no concerns".
func (m *Mapper) anxietyFromConcerns(concerns string) *Entry {
	lowered := strings.ToLower(concerns)
	if concerns == "" || lowered == "no concerns" || !strings.Contains(lowered, "concern") {
		return nil
	}

	def, ok := Definition("anxiety")
	if !ok {
		return nil
	}

	sev := SeverityMild
	freq := FrequencyOccasionally
	interf := InterferenceALittleBit
	return &Entry{
		SymptomTerm:  def.Term,
		Code:         def.Code,
		Severity:     &sev,
		Frequency:    &freq,
		Interference: &interf,
		RawText:      "Patient expressed concerns",
	}
}

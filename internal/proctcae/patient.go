package proctcae

// PatientSummary is the structured summary extracted from a completed
// conversation. Field names follow the JSON contract of the extraction prompt.
type PatientSummary struct {
	HasPreviousReaction bool     `json:"has_previous_reaction"`
	HasKidneyIssues     bool     `json:"has_kidney_issues"`
	TakesMetformin      bool     `json:"takes_metformin"`
	ReportedSymptoms    []string `json:"reported_symptoms"`
	PatientConcerns     string   `json:"patient_concerns"`
	FullSummary         string   `json:"full_summary"`
}

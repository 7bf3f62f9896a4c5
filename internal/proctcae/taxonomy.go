package proctcae

import "strings"

// Attribute identifies which PRO-CTCAE attributes a symptom item collects
type Attribute string

const (
	AttrSeverity     Attribute = "Severity"
	AttrFrequency    Attribute = "Frequency"
	AttrInterference Attribute = "Interference"
	AttrPresence     Attribute = "Presence"
)

// SymptomDefinition describes one PRO-CTCAE item and the attribute set it requires
type SymptomDefinition struct {
	Term        string      `json:"symptom_term"`
	Code        string      `json:"code"`
	Attributes  []Attribute `json:"attributes"`
	Description string      `json:"description"`
}

// Requires reports whether the definition collects the given attribute
func (d SymptomDefinition) Requires(attr Attribute) bool {
	for _, a := range d.Attributes {
		if a == attr {
			return true
		}
	}
	return false
}

// symptomItems is the closed set of PRO-CTCAE items relevant to contrast reactions,
// keyed by canonical symptom key. Read-only for the process lifetime.
var symptomItems = map[string]SymptomDefinition{
	// Cutaneous
	"hives": {
		Term:        "Hives",
		Code:        "PRO-CTCAE_hives",
		Attributes:  []Attribute{AttrPresence},
		Description: "Hives (urticaria)",
	},
	"itching": {
		Term:        "Itching",
		Code:        "PRO-CTCAE_itching",
		Attributes:  []Attribute{AttrSeverity},
		Description: "Pruritus (itching)",
	},
	"rash": {
		Term:        "Rash",
		Code:        "PRO-CTCAE_rash",
		Attributes:  []Attribute{AttrPresence},
		Description: "Skin rash",
	},
	"skin_redness": {
		Term:        "Skin redness",
		Code:        "PRO-CTCAE_erythema",
		Attributes:  []Attribute{AttrPresence},
		Description: "Erythema or skin redness",
	},
	// Respiratory
	"shortness_of_breath": {
		Term:        "Shortness of breath",
		Code:        "PRO-CTCAE_dyspnea",
		Attributes:  []Attribute{AttrSeverity, AttrInterference},
		Description: "Dyspnea (shortness of breath)",
	},
	"wheezing": {
		Term:        "Wheezing",
		Code:        "PRO-CTCAE_wheezing",
		Attributes:  []Attribute{AttrSeverity},
		Description: "Wheezing",
	},
	"cough": {
		Term:        "Cough",
		Code:        "PRO-CTCAE_cough",
		Attributes:  []Attribute{AttrSeverity, AttrInterference},
		Description: "Cough",
	},
	// Circulatory
	"swelling": {
		Term:        "Swelling",
		Code:        "PRO-CTCAE_swelling",
		Attributes:  []Attribute{AttrFrequency, AttrSeverity, AttrInterference},
		Description: "Edema (swelling)",
	},
	"heart_palpitations": {
		Term:        "Heart palpitations",
		Code:        "PRO-CTCAE_palpitations",
		Attributes:  []Attribute{AttrFrequency, AttrSeverity},
		Description: "Heart palpitations",
	},
	// Gastrointestinal
	"nausea": {
		Term:        "Nausea",
		Code:        "PRO-CTCAE_nausea",
		Attributes:  []Attribute{AttrFrequency, AttrSeverity},
		Description: "Nausea",
	},
	"vomiting": {
		Term:        "Vomiting",
		Code:        "PRO-CTCAE_vomiting",
		Attributes:  []Attribute{AttrFrequency, AttrSeverity},
		Description: "Vomiting",
	},
	// General
	"chills": {
		Term:        "Chills",
		Code:        "PRO-CTCAE_chills",
		Attributes:  []Attribute{AttrFrequency, AttrSeverity},
		Description: "Chills",
	},
	"dizziness": {
		Term:        "Dizziness",
		Code:        "PRO-CTCAE_dizziness",
		Attributes:  []Attribute{AttrSeverity, AttrInterference},
		Description: "Dizziness",
	},
	"headache": {
		Term:        "Headache",
		Code:        "PRO-CTCAE_headache",
		Attributes:  []Attribute{AttrFrequency, AttrSeverity, AttrInterference},
		Description: "Headache",
	},
	"anxiety": {
		Term:        "Anxious",
		Code:        "PRO-CTCAE_anxiety",
		Attributes:  []Attribute{AttrFrequency, AttrSeverity, AttrInterference},
		Description: "Anxiety",
	},
	"chest_tightness": {
		Term:        "Chest pain",
		Code:        "PRO-CTCAE_chest_pain",
		Attributes:  []Attribute{AttrFrequency, AttrSeverity, AttrInterference},
		Description: "Chest tightness or pain",
	},
}

// symptomAliases maps free-text surface forms to canonical symptom keys.
// Lookup is lower-cased, whitespace-trimmed, exact-match only.
var symptomAliases = map[string]string{
	// Hives
	"hives":     "hives",
	"urticaria": "hives",
	"welts":     "hives",
	// Itching
	"itching":  "itching",
	"itchy":    "itching",
	"pruritus": "itching",
	"itch":     "itching",
	// Swelling
	"swelling":        "swelling",
	"edema":           "swelling",
	"puffiness":       "swelling",
	"angioedema":      "swelling",
	"facial swelling": "swelling",
	"throat swelling": "swelling",
	// Breathing
	"shortness of breath":  "shortness_of_breath",
	"difficulty breathing": "shortness_of_breath",
	"breathlessness":       "shortness_of_breath",
	"dyspnea":              "shortness_of_breath",
	"trouble breathing":    "shortness_of_breath",
	// Wheezing
	"wheezing": "wheezing",
	"wheeze":   "wheezing",
	// Rash
	"rash":          "rash",
	"skin reaction": "rash",
	"eruption":      "rash",
	// Other
	"nausea":          "nausea",
	"vomiting":        "vomiting",
	"dizziness":       "dizziness",
	"dizzy":           "dizziness",
	"headache":        "headache",
	"chest tightness": "chest_tightness",
	"chest pain":      "chest_tightness",
	"anxiety":         "anxiety",
	"anxious":         "anxiety",
	"palpitations":    "heart_palpitations",
	"heart racing":    "heart_palpitations",
}

// Normalize maps a free-text symptom phrase to its canonical key.
// Returns false when the phrase is not in the alias table; no fuzzy matching.
func Normalize(symptom string) (string, bool) {
	key, ok := symptomAliases[strings.ToLower(strings.TrimSpace(symptom))]
	return key, ok
}

// Definition returns the PRO-CTCAE item definition for a canonical key.
func Definition(key string) (SymptomDefinition, bool) {
	def, ok := symptomItems[key]
	return def, ok
}

// Definitions returns a copy of the full item set keyed by canonical symptom key.
func Definitions() map[string]SymptomDefinition {
	out := make(map[string]SymptomDefinition, len(symptomItems))
	for k, v := range symptomItems {
		out[k] = v
	}
	return out
}

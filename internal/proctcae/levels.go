package proctcae

// Severity represents a PRO-CTCAE severity level
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
	SeverityVerySevere
)

// Label returns the human-readable severity label
func (s Severity) Label() string {
	switch s {
	case SeverityNone:
		return "None"
	case SeverityMild:
		return "Mild"
	case SeverityModerate:
		return "Moderate"
	case SeveritySevere:
		return "Severe"
	case SeverityVerySevere:
		return "Very Severe"
	}
	return "Unknown"
}

// Frequency represents a PRO-CTCAE frequency level
type Frequency int

const (
	FrequencyNever Frequency = iota
	FrequencyRarely
	FrequencyOccasionally
	FrequencyFrequently
	FrequencyAlmostConstantly
)

// Label returns the human-readable frequency label
func (f Frequency) Label() string {
	switch f {
	case FrequencyNever:
		return "Never"
	case FrequencyRarely:
		return "Rarely"
	case FrequencyOccasionally:
		return "Occasionally"
	case FrequencyFrequently:
		return "Frequently"
	case FrequencyAlmostConstantly:
		return "Almost Constantly"
	}
	return "Unknown"
}

// Interference represents a PRO-CTCAE interference level
type Interference int

const (
	InterferenceNotAtAll Interference = iota
	InterferenceALittleBit
	InterferenceSomewhat
	InterferenceQuiteABit
	InterferenceVeryMuch
)

// Label returns the human-readable interference label
func (i Interference) Label() string {
	switch i {
	case InterferenceNotAtAll:
		return "Not At All"
	case InterferenceALittleBit:
		return "A Little Bit"
	case InterferenceSomewhat:
		return "Somewhat"
	case InterferenceQuiteABit:
		return "Quite A Bit"
	case InterferenceVeryMuch:
		return "Very Much"
	}
	return "Unknown"
}

package domain

// Severity is the classifier's user-facing output.
type Severity string

const (
	SeveritySafe     Severity = "Safe"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
	SeverityUnknown  Severity = "Unknown"
)

// SeverityFromCode maps a raw model class code to a Severity. Codes outside
// 1..3 map to SeverityUnknown so unseen model outputs never fail a request.
func SeverityFromCode(code int) Severity {
	switch code {
	case 1:
		return SeveritySafe
	case 2:
		return SeverityModerate
	case 3:
		return SeveritySevere
	default:
		return SeverityUnknown
	}
}

func (s Severity) String() string { return string(s) }

package model

// Severity is the worst outcome observed during a remediation run.
// It only ever escalates within a run: Info -> Warning -> Error.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Worst returns the higher of the two severities.
func Worst(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}

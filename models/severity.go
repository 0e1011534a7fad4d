package models

// Severity is a normalised severity bucket for a security alert.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
	SeverityUnknown  Severity = "unknown"
	// SeverityNone marks alert kinds that carry no severity label at all
	// (secret-exposure findings).
	SeverityNone Severity = ""
)

func (s Severity) String() string {
	return string(s)
}

// NormalizeSeverity maps raw GitHub severity strings to a Severity bucket.
// Unrecognised labels come back as SeverityUnknown; it is the aggregation
// layer that decides what an unknown severity counts as.
func NormalizeSeverity(raw string) Severity {
	switch raw {
	case "critical", "CRITICAL":
		return SeverityCritical
	case "high", "HIGH", "error", "ERROR":
		return SeverityHigh
	case "medium", "MEDIUM", "moderate", "MODERATE", "warning", "WARNING":
		return SeverityMedium
	case "low", "LOW", "note", "NOTE":
		return SeverityLow
	case "info", "INFO", "informational", "negligible":
		return SeverityInfo
	case "":
		return SeverityNone
	default:
		return SeverityUnknown
	}
}

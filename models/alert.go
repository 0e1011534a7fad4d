package models

import "time"

// AlertKind identifies one of the three GitHub security alert streams.
type AlertKind string

const (
	AlertKindCodeScanning   AlertKind = "codeScanning"
	AlertKindDependabot     AlertKind = "dependabot"
	AlertKindSecretScanning AlertKind = "secretScanning"
)

// AlertKinds lists every kind in bundle order.
var AlertKinds = []AlertKind{AlertKindCodeScanning, AlertKindDependabot, AlertKindSecretScanning}

// States returns the lifecycle states that must be queried for this kind.
// Closed states are needed too: remediation time and 30-day-closed counts
// cannot be derived from the open view alone.
func (k AlertKind) States() []string {
	switch k {
	case AlertKindCodeScanning:
		return []string{"open", "closed", "dismissed"}
	case AlertKindDependabot:
		return []string{"open", "dismissed", "fixed", "auto_dismissed"}
	case AlertKindSecretScanning:
		return []string{"open", "resolved"}
	default:
		return nil
	}
}

// CarriesSeverity reports whether alerts of this kind have a severity label.
// Secret-exposure alerts do not; they count toward totals but never toward
// a severity bucket.
func (k AlertKind) CarriesSeverity() bool {
	return k != AlertKindSecretScanning
}

// Alert is the normalised view of one security alert, independent of which
// GitHub endpoint it came from. Kind-specific payload lives in Detail.
type Alert struct {
	Kind      AlertKind
	Number    int
	State     string
	CreatedAt time.Time
	// ClosedAt is the dismissal/fix/resolution time. Zero while the alert
	// is open.
	ClosedAt  time.Time
	UpdatedAt time.Time
	// Severity is SeverityNone for kinds that carry no label.
	Severity Severity
	Detail   AlertDetail
}

// Open reports whether the alert is in its kind's open lifecycle state.
func (a Alert) Open() bool {
	return a.State == "open"
}

// AlertDetail is the kind-specific payload of an Alert. Exactly one variant
// exists per alert kind.
type AlertDetail interface {
	isAlertDetail()
}

// CodeScanningDetail is the payload of a static-analysis finding.
type CodeScanningDetail struct {
	RuleID string
	Tool   string
}

// DependabotDetail is the payload of a vulnerable-dependency finding.
type DependabotDetail struct {
	Package   string
	Ecosystem string
}

// SecretScanningDetail is the payload of a leaked-credential finding.
type SecretScanningDetail struct {
	SecretType string
}

func (CodeScanningDetail) isAlertDetail()   {}
func (DependabotDetail) isAlertDetail()     {}
func (SecretScanningDetail) isAlertDetail() {}

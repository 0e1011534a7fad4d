package models

// SeverityCounts is a zero-filled set of per-severity counters. The fields
// are plain ints so every bucket is always present in the serialised form.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
}

// Add increments the bucket for s. An unknown severity counts as medium;
// SeverityNone (secret-exposure alerts) increments nothing.
func (c *SeverityCounts) Add(s Severity) {
	switch s {
	case SeverityCritical:
		c.Critical++
	case SeverityHigh:
		c.High++
	case SeverityMedium, SeverityUnknown:
		c.Medium++
	case SeverityLow:
		c.Low++
	case SeverityInfo:
		c.Info++
	}
}

// WindowCounts is a total plus its per-severity breakdown, used for the
// 30-day opened/closed deltas.
type WindowCounts struct {
	Total int `json:"total"`
	SeverityCounts
}

// Age bucket keys, in histogram order. Upper bounds are inclusive; "180+"
// is open-ended.
var AgeBucketKeys = []string{"0-7", "8-30", "31-90", "91-180", "180+"}

// NewAgeBuckets returns a fully populated, zero-valued age histogram.
func NewAgeBuckets() map[string]int {
	b := make(map[string]int, len(AgeBucketKeys))
	for _, k := range AgeBucketKeys {
		b[k] = 0
	}
	return b
}

// AgeBucketFor returns the histogram key for an open alert aged ageDays.
func AgeBucketFor(ageDays int) string {
	switch {
	case ageDays <= 7:
		return "0-7"
	case ageDays <= 30:
		return "8-30"
	case ageDays <= 90:
		return "31-90"
	case ageDays <= 180:
		return "91-180"
	default:
		return "180+"
	}
}

// Aging describes how long currently-open alerts have been sitting.
type Aging struct {
	OldestAge  int            `json:"oldestAge"`
	AverageAge int            `json:"averageAge"`
	AgeBuckets map[string]int `json:"ageBuckets"`
}

// AlertSummary is the aggregated, immutable snapshot for one
// (repository, alert kind) pair. It is recomputed in full on every sync
// run, never partially updated.
type AlertSummary struct {
	// Total counts currently-open alerts only.
	Total int `json:"total"`
	SeverityCounts
	OpenedLast30Days WindowCounts `json:"openedLast30Days"`
	ClosedLast30Days WindowCounts `json:"closedLast30Days"`
	Aging            Aging        `json:"aging"`
	// MTTRDays is the mean remediation time in days over validly closed
	// alerts, rounded. 0 when nothing was closed.
	MTTRDays int `json:"mttrDays"`
	// LastUpdated is a best-effort freshness indicator (RFC3339, or empty).
	LastUpdated string `json:"lastUpdated"`
	// Enabled is false when the security feature is not available for the
	// repository. Distinct from "scanned and found nothing".
	Enabled bool `json:"enabled"`
}

// NewAlertSummary returns a zero-filled, enabled summary with every bucket
// present.
func NewAlertSummary() AlertSummary {
	return AlertSummary{
		Aging:   Aging{AgeBuckets: NewAgeBuckets()},
		Enabled: true,
	}
}

// DisabledAlertSummary returns the zero-filled summary used when the API
// reported the feature unavailable for a repository.
func DisabledAlertSummary() AlertSummary {
	s := NewAlertSummary()
	s.Enabled = false
	return s
}

// VulnerabilityBundle holds one AlertSummary per alert kind for one
// repository. Owned by the sync job; the presentation layer reads it only.
type VulnerabilityBundle struct {
	CodeScanning   AlertSummary `json:"codeScanning"`
	Dependabot     AlertSummary `json:"dependabot"`
	SecretScanning AlertSummary `json:"secretScanning"`
}

// Summary returns the summary for kind.
func (b *VulnerabilityBundle) Summary(kind AlertKind) AlertSummary {
	switch kind {
	case AlertKindCodeScanning:
		return b.CodeScanning
	case AlertKindDependabot:
		return b.Dependabot
	default:
		return b.SecretScanning
	}
}

// SetSummary stores the summary for kind.
func (b *VulnerabilityBundle) SetSummary(kind AlertKind, s AlertSummary) {
	switch kind {
	case AlertKindCodeScanning:
		b.CodeScanning = s
	case AlertKindDependabot:
		b.Dependabot = s
	default:
		b.SecretScanning = s
	}
}

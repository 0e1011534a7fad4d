package aggregate

import (
	"math"

	"github.com/patchwatch/repoboard/models"
)

// Severity weights for the base risk score.
const (
	weightCritical = 10
	weightHigh     = 7
	weightMedium   = 4
	weightLow      = 2
	weightInfo     = 1
	weightSecret   = 5
)

// ageMultiplierCap bounds how much stale alerts can inflate a score.
const ageMultiplierCap = 3.0

// RiskScore combines a repository's three alert summaries into a single
// weighted, age-adjusted score. Pure function; increasing any severity count
// while holding the rest fixed never lowers the result.
func RiskScore(b models.VulnerabilityBundle) int {
	base := weighted(b.CodeScanning.SeverityCounts) +
		weighted(b.Dependabot.SeverityCounts) +
		b.SecretScanning.Total*weightSecret

	maxAvgAge := b.CodeScanning.Aging.AverageAge
	if b.Dependabot.Aging.AverageAge > maxAvgAge {
		maxAvgAge = b.Dependabot.Aging.AverageAge
	}
	if b.SecretScanning.Aging.AverageAge > maxAvgAge {
		maxAvgAge = b.SecretScanning.Aging.AverageAge
	}

	multiplier := 1.0 + float64(maxAvgAge)/60.0
	if multiplier > ageMultiplierCap {
		multiplier = ageMultiplierCap
	}

	return int(math.Round(float64(base) * multiplier))
}

func weighted(c models.SeverityCounts) int {
	return c.Critical*weightCritical +
		c.High*weightHigh +
		c.Medium*weightMedium +
		c.Low*weightLow +
		c.Info*weightInfo
}

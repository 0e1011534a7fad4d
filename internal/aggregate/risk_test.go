package aggregate

import (
	"testing"

	"github.com/patchwatch/repoboard/models"
)

func bundle() models.VulnerabilityBundle {
	return models.VulnerabilityBundle{
		CodeScanning:   models.NewAlertSummary(),
		Dependabot:     models.NewAlertSummary(),
		SecretScanning: models.NewAlertSummary(),
	}
}

func TestRiskScoreBaseWeights(t *testing.T) {
	b := bundle()
	b.CodeScanning.Critical = 1 // 10
	b.CodeScanning.High = 2     // 14
	b.Dependabot.Medium = 3     // 12
	b.Dependabot.Low = 1        // 2
	b.Dependabot.Info = 1       // 1
	b.SecretScanning.Total = 2  // 10

	if got := RiskScore(b); got != 49 {
		t.Fatalf("score = %d, want 49", got)
	}
}

func TestRiskScoreZeroBundle(t *testing.T) {
	if got := RiskScore(bundle()); got != 0 {
		t.Fatalf("score of empty bundle = %d, want 0", got)
	}
}

func TestRiskScoreAgeMultiplier(t *testing.T) {
	b := bundle()
	b.Dependabot.Critical = 1 // base 10
	b.CodeScanning.Aging.AverageAge = 30
	b.Dependabot.Aging.AverageAge = 15

	// multiplier = 1 + 30/60 = 1.5 → 15
	if got := RiskScore(b); got != 15 {
		t.Fatalf("score = %d, want 15", got)
	}
}

func TestRiskScoreAgeMultiplierCapped(t *testing.T) {
	b := bundle()
	b.Dependabot.Critical = 1
	b.SecretScanning.Aging.AverageAge = 600 // uncapped would be 11x

	if got := RiskScore(b); got != 30 {
		t.Fatalf("score = %d, want 30 (multiplier capped at 3.0)", got)
	}
}

func TestRiskScoreMonotonicInSeverityCounts(t *testing.T) {
	b := bundle()
	b.CodeScanning.High = 2
	b.Dependabot.Medium = 1
	b.Dependabot.Aging.AverageAge = 45
	before := RiskScore(b)

	bump := []func(*models.VulnerabilityBundle){
		func(b *models.VulnerabilityBundle) { b.CodeScanning.Critical++ },
		func(b *models.VulnerabilityBundle) { b.CodeScanning.Info++ },
		func(b *models.VulnerabilityBundle) { b.Dependabot.High++ },
		func(b *models.VulnerabilityBundle) { b.Dependabot.Low++ },
		func(b *models.VulnerabilityBundle) { b.SecretScanning.Total++ },
	}
	for i, f := range bump {
		bb := b
		f(&bb)
		if after := RiskScore(bb); after < before {
			t.Fatalf("bump %d decreased score: %d -> %d", i, before, after)
		}
	}
}

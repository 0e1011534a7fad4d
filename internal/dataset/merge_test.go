package dataset

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/patchwatch/repoboard/models"
)

func day(d string) *string { return &d }

func freshRecord() models.RepositoryRecord {
	bundle := models.VulnerabilityBundle{
		CodeScanning:   models.NewAlertSummary(),
		Dependabot:     models.NewAlertSummary(),
		SecretScanning: models.NewAlertSummary(),
	}
	bundle.Dependabot.Total = 3
	bundle.Dependabot.High = 3
	return models.RepositoryRecord{
		Organization:    "acme",
		Repository:      "web",
		Description:     "Customer portal",
		Language:        "TypeScript",
		Status:          models.StatusActive,
		LastActivity:    day("2026-03-01"),
		GitHubURL:       "https://github.com/acme/web",
		Codeowners:      true,
		Vulnerabilities: &bundle,
	}
}

func priorRecord() models.RepositoryRecord {
	r := freshRecord()
	r.Pod = "Payments-Pod2"
	r.Vertical = "Payments"
	r.EngineeringManager = "Dana Moore"
	r.Description = "old description"
	return r
}

func TestMergeWithoutPriorDefaultsCuratedFields(t *testing.T) {
	got := Merge(freshRecord(), nil)

	if got.Pod != models.PodUnassigned {
		t.Fatalf("pod = %q, want sentinel %q", got.Pod, models.PodUnassigned)
	}
	if got.EngineeringManager != "" {
		t.Fatalf("manager = %q, want empty (never derived from fetch)", got.EngineeringManager)
	}
	if got.Vertical != "" {
		t.Fatalf("vertical = %q, want empty", got.Vertical)
	}
}

func TestMergeWithoutPriorKeepsFreshPod(t *testing.T) {
	fresh := freshRecord()
	fresh.Pod = "Vertical1-Pod1"
	got := Merge(fresh, nil)
	if got.Pod != "Vertical1-Pod1" {
		t.Fatalf("pod = %q, want Vertical1-Pod1", got.Pod)
	}
}

func TestMergePreservesCuratedFields(t *testing.T) {
	fresh := freshRecord() // empty pod/vertical/manager
	prior := priorRecord()

	got := Merge(fresh, &prior)

	if got.Pod != "Payments-Pod2" {
		t.Fatalf("pod = %q, want prior value preserved", got.Pod)
	}
	if got.Vertical != "Payments" {
		t.Fatalf("vertical = %q, want prior value preserved", got.Vertical)
	}
	if got.EngineeringManager != "Dana Moore" {
		t.Fatalf("manager = %q, want prior value preserved", got.EngineeringManager)
	}
}

func TestMergeSentinelPodNeverClobbersPrior(t *testing.T) {
	fresh := freshRecord()
	fresh.Pod = models.PodUnassigned
	prior := priorRecord()

	if got := Merge(fresh, &prior); got.Pod != "Payments-Pod2" {
		t.Fatalf("pod = %q, sentinel must not clobber a curated pod", got.Pod)
	}
}

func TestMergeManagerNeverComesFromFetch(t *testing.T) {
	fresh := freshRecord()
	fresh.EngineeringManager = "should-not-survive"
	prior := priorRecord()
	prior.EngineeringManager = ""

	if got := Merge(fresh, &prior); got.EngineeringManager != "" {
		t.Fatalf("manager = %q, want empty", got.EngineeringManager)
	}
}

func TestMergeObservedFieldsFallBackToPrior(t *testing.T) {
	fresh := freshRecord()
	fresh.Description = "" // partial fetch could not determine it
	fresh.Language = ""
	fresh.LastActivity = nil
	prior := priorRecord()

	got := Merge(fresh, &prior)
	if got.Description != "old description" {
		t.Fatalf("description = %q, want prior fallback", got.Description)
	}
	if got.Language != "TypeScript" {
		t.Fatalf("language = %q, want prior fallback", got.Language)
	}
	if got.LastActivity == nil || *got.LastActivity != "2026-03-01" {
		t.Fatalf("lastActivity = %v, want prior fallback", got.LastActivity)
	}
}

func TestMergeFreshObservedFieldsWin(t *testing.T) {
	fresh := freshRecord()
	prior := priorRecord()

	got := Merge(fresh, &prior)
	if got.Description != "Customer portal" {
		t.Fatalf("description = %q, want fresh value", got.Description)
	}
}

func TestMergeNilBundleKeepsPrior(t *testing.T) {
	fresh := freshRecord()
	fresh.Vulnerabilities = nil
	prior := priorRecord()

	got := Merge(fresh, &prior)
	if got.Vulnerabilities == nil {
		t.Fatal("expected the prior bundle to survive a failed vulnerability stage")
	}
	if diff := cmp.Diff(prior.Vulnerabilities, got.Vulnerabilities); diff != "" {
		t.Fatalf("bundle mismatch (-prior +got):\n%s", diff)
	}
}

func TestMergeFreshBundleReplacesPriorWholesale(t *testing.T) {
	fresh := freshRecord()
	prior := priorRecord()
	prior.Vulnerabilities.CodeScanning.Critical = 9 // stale

	got := Merge(fresh, &prior)
	if got.Vulnerabilities.CodeScanning.Critical != 0 {
		t.Fatal("fresh bundle must replace the prior one wholesale")
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	fresh := freshRecord()
	prior := priorRecord()

	once := Merge(fresh, &prior)
	twice := Merge(fresh, &prior)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("merge not idempotent (-first +second):\n%s", diff)
	}

	// Re-merging the same fresh data against its own output is stable too.
	again := Merge(fresh, &once)
	if diff := cmp.Diff(once, again); diff != "" {
		t.Fatalf("merge not stable under re-application (-first +again):\n%s", diff)
	}
}

func TestDedupeLastSeenWins(t *testing.T) {
	a := freshRecord()
	a.Description = "first"
	b := freshRecord()
	b.Description = "second"
	other := freshRecord()
	other.Repository = "infra"

	out := Dedupe([]models.RepositoryRecord{a, other, b})
	if len(out) != 2 {
		t.Fatalf("got %d records, want 2", len(out))
	}
	if out[0].Key() != "acme/web" || out[0].Description != "second" {
		t.Fatalf("expected last-seen acme/web to win, got %+v", out[0])
	}
	if out[1].Key() != "acme/infra" {
		t.Fatalf("unexpected second record: %s", out[1].Key())
	}
}

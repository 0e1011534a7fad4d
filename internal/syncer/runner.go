// Package syncer coordinates one sync pass: list each organization's
// repositories, enrich them with security-alert summaries in small parallel
// batches, merge against the previously persisted dataset, and write the
// result back.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/patchwatch/repoboard/internal/aggregate"
	"github.com/patchwatch/repoboard/internal/config"
	"github.com/patchwatch/repoboard/internal/dataset"
	"github.com/patchwatch/repoboard/internal/hosting"
	"github.com/patchwatch/repoboard/models"
)

// Provider is the slice of the hosting client the runner needs. Tests
// substitute a fake.
type Provider interface {
	ListOrgRepos(ctx context.Context, org string) ([]models.RepositoryRecord, error)
	HasCodeowners(ctx context.Context, owner, repo string) (bool, error)
	FetchAlerts(ctx context.Context, owner, repo string, kind models.AlertKind) (hosting.FetchResult, error)
}

// Runner executes sync passes.
type Runner struct {
	cfg      *config.Config
	provider Provider
	store    *dataset.Store
	now      func() time.Time
}

// New creates a Runner.
func New(cfg *config.Config, provider Provider, store *dataset.Store) *Runner {
	return &Runner{cfg: cfg, provider: provider, store: store, now: time.Now}
}

// OrgReport is the per-organization outcome of a pass.
type OrgReport struct {
	Organization string
	Updated      int
	Skipped      int
	Errors       int
	// ListFailed is set when the repository listing itself failed; every
	// prior record of the organization is retained untouched.
	ListFailed bool
}

// RunReport is the outcome of one whole pass.
type RunReport struct {
	StartedAt     time.Time
	FinishedAt    time.Time
	Organizations []OrgReport
	TotalRepos    int
	Updated       int
	Skipped       int
	Errors        int
}

// Summary renders the report as a single log-friendly line.
func (r *RunReport) Summary() string {
	return fmt.Sprintf("%d repos (%d updated, %d skipped, %d errors) in %s",
		r.TotalRepos, r.Updated, r.Skipped, r.Errors,
		r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
}

// Run executes one sync pass. Per-repository failures are contained: they
// are logged, counted, and leave the previously persisted record untouched.
// Only configuration-level problems (unreadable dataset, failed write)
// return an error.
func (r *Runner) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{StartedAt: r.now()}

	prior, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	priorIdx := make(map[string]*models.RepositoryRecord, len(prior.Repositories))
	for i := range prior.Repositories {
		priorIdx[prior.Repositories[i].Key()] = &prior.Repositories[i]
	}

	var (
		merged       []models.RepositoryRecord
		observedOrgs = map[string]bool{} // listing succeeded
		retainPrior  = map[string]bool{} // failed or filtered repos
	)

	for _, org := range r.cfg.Sync.Organizations {
		orgReport := OrgReport{Organization: org}
		slog.Info("Syncing organization", "org", org)

		repos, err := r.provider.ListOrgRepos(ctx, org)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Error("Organization listing failed; keeping prior records", "org", org, "error", err)
			orgReport.ListFailed = true
			report.Errors++
			report.Organizations = append(report.Organizations, orgReport)
			continue
		}
		observedOrgs[org] = true

		var work []models.RepositoryRecord
		for _, repo := range repos {
			if reason := r.skipReason(&repo); reason != "" {
				slog.Debug("Skipping repository", "repo", repo.Key(), "reason", reason)
				orgReport.Skipped++
				retainPrior[repo.Key()] = true
				continue
			}
			work = append(work, repo)
		}

		r.enrichBatches(ctx, work, priorIdx, &merged, retainPrior, &orgReport)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		slog.Info("Organization synced", "org", org,
			"updated", orgReport.Updated, "skipped", orgReport.Skipped, "errors", orgReport.Errors)
		report.Organizations = append(report.Organizations, orgReport)
	}

	// Records survive a pass when their organization was not observed at
	// all, or when the repository was skipped or failed this run. Records
	// whose org listing succeeded but which are gone upstream drop out.
	final := make([]models.RepositoryRecord, 0, len(merged)+len(prior.Repositories))
	for _, p := range prior.Repositories {
		if !observedOrgs[p.Organization] || retainPrior[p.Key()] {
			final = append(final, p)
		}
	}
	final = append(final, merged...)
	final = dataset.Dedupe(final)

	for _, o := range report.Organizations {
		report.Updated += o.Updated
		report.Skipped += o.Skipped
		report.Errors += o.Errors
	}
	report.TotalRepos = len(final)
	report.FinishedAt = r.now()

	ds := &models.Dataset{
		Metadata: models.DatasetMetadata{
			LastUpdated:   report.FinishedAt.UTC(),
			Version:       r.cfg.Sync.Version,
			Organizations: r.cfg.Sync.Organizations,
			TotalRepos:    report.TotalRepos,
			Updated:       report.Updated,
			Skipped:       report.Skipped,
			Errors:        report.Errors,
		},
		Repositories: final,
	}
	if err := r.store.Save(ds); err != nil {
		return nil, err
	}

	slog.Info("Sync pass complete", "summary", report.Summary())
	return report, nil
}

// enrichBatches processes work in fixed-size parallel batches, waiting for
// each batch to finish before starting the next. The small window keeps the
// shared rate budget honest.
func (r *Runner) enrichBatches(
	ctx context.Context,
	work []models.RepositoryRecord,
	priorIdx map[string]*models.RepositoryRecord,
	merged *[]models.RepositoryRecord,
	retainPrior map[string]bool,
	orgReport *OrgReport,
) {
	batchSize := r.cfg.Sync.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	var mu sync.Mutex
	for start := 0; start < len(work); start += batchSize {
		if ctx.Err() != nil {
			return
		}
		end := start + batchSize
		if end > len(work) {
			end = len(work)
		}

		var wg sync.WaitGroup
		for _, fresh := range work[start:end] {
			wg.Add(1)
			go func(fresh models.RepositoryRecord) {
				defer wg.Done()
				rec, err := r.enrich(ctx, fresh)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					slog.Error("Repository enrichment failed; keeping prior record",
						"repo", fresh.Key(), "error", err)
					retainPrior[fresh.Key()] = true
					orgReport.Errors++
					return
				}
				*merged = append(*merged, dataset.Merge(rec, priorIdx[rec.Key()]))
				orgReport.Updated++
			}(fresh)
		}
		wg.Wait()
	}
}

// enrich fills the observed fields that need extra API calls: the
// CODEOWNERS flag and the three alert summaries. Any hard failure abandons
// the whole record; a partially-filled bundle must never be persisted.
func (r *Runner) enrich(ctx context.Context, fresh models.RepositoryRecord) (models.RepositoryRecord, error) {
	owner, name := fresh.Organization, fresh.Repository

	hasOwners, err := r.provider.HasCodeowners(ctx, owner, name)
	if err != nil {
		return fresh, fmt.Errorf("codeowners probe: %w", err)
	}
	fresh.Codeowners = hasOwners

	now := r.now()
	var bundle models.VulnerabilityBundle
	for _, kind := range models.AlertKinds {
		res, err := r.provider.FetchAlerts(ctx, owner, name, kind)
		if err != nil {
			return fresh, err
		}
		summary := aggregate.Summarize(res.Alerts, now)
		if !res.Enabled {
			summary = models.DisabledAlertSummary()
		}
		bundle.SetSummary(kind, summary)
	}
	fresh.Vulnerabilities = &bundle
	return fresh, nil
}

// skipReason returns why a repository is excluded from this pass, or ""
// when it should be synced.
func (r *Runner) skipReason(rec *models.RepositoryRecord) string {
	if rec.Status == models.StatusArchived && !r.cfg.Sync.IncludeArchived {
		return "archived"
	}
	for _, pattern := range r.cfg.Sync.Exclude {
		if matchesExclude(pattern, rec.Organization, rec.Repository) {
			return "excluded by " + pattern
		}
	}
	return ""
}

func matchesExclude(pattern, org, name string) bool {
	if pattern == name || pattern == org+"/"+name {
		return true
	}
	if n := len(pattern); n > 0 && pattern[n-1] == '*' {
		prefix := pattern[:n-1]
		return len(name) >= len(prefix) && name[:len(prefix)] == prefix
	}
	return false
}

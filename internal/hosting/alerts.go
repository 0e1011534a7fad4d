package hosting

import (
	"context"
	"fmt"
	"time"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/patchwatch/repoboard/models"
)

// FetchResult carries every alert retrieved for one (repository, kind) pair
// across all lifecycle states, plus whether the feature is enabled at all.
type FetchResult struct {
	Alerts []models.Alert
	// Enabled is false when no lifecycle state could be listed because the
	// API reported the feature unavailable (403/404). Distinct from an
	// empty alert list.
	Enabled bool
}

// FetchAlerts retrieves all alerts of the given kind for one repository,
// querying every lifecycle state page by page. A 403/404 on a state listing
// is swallowed as "no alerts in this state"; any other error propagates so
// the caller can fail the whole per-repository enrichment rather than
// persist a partially-filled summary.
func (c *Client) FetchAlerts(ctx context.Context, owner, repo string, kind models.AlertKind) (FetchResult, error) {
	var page alertPageFunc
	switch kind {
	case models.AlertKindCodeScanning:
		page = c.codeScanningPage(owner, repo)
	case models.AlertKindDependabot:
		page = c.dependabotPage(owner, repo)
	case models.AlertKindSecretScanning:
		page = c.secretScanningPage(owner, repo)
	default:
		return FetchResult{}, fmt.Errorf("unknown alert kind %q", kind)
	}

	res := FetchResult{}
	for _, state := range kind.States() {
		ok, err := c.fetchState(ctx, state, page, &res.Alerts)
		if err != nil {
			return FetchResult{}, fmt.Errorf("fetching %s alerts (%s) for %s/%s: %w", kind, state, owner, repo, err)
		}
		if ok {
			res.Enabled = true
		}
	}
	return res, nil
}

// alertPageFunc fetches one page of alerts in one state. rawLen is the
// number of entries the API returned before conversion dropped nils; the
// pagination decision must be based on it, not the converted count.
type alertPageFunc func(ctx context.Context, state string, page int) (alerts []models.Alert, rawLen int, resp *gogithub.Response, err error)

// fetchState pages through one lifecycle state, appending to out. Returns
// false (and no error) when the endpoint reported the feature disabled.
func (c *Client) fetchState(ctx context.Context, state string, fetch alertPageFunc, out *[]models.Alert) (bool, error) {
	for page := 1; ; {
		if err := c.limiter.Acquire(ctx); err != nil {
			return false, err
		}
		batch, rawLen, resp, err := fetch(ctx, state, page)
		c.limiter.RecordResponse(resp)
		if err != nil {
			if isFeatureDisabled(err) {
				return false, nil
			}
			if delay, ok := rateLimitDelay(err); ok {
				if serr := sleepCtx(ctx, delay); serr != nil {
					return false, serr
				}
				continue // resume the same page
			}
			return false, err
		}

		*out = append(*out, batch...)
		if rawLen < c.pageSize {
			return true, nil
		}
		page++
	}
}

func (c *Client) codeScanningPage(owner, repo string) alertPageFunc {
	return func(ctx context.Context, state string, page int) ([]models.Alert, int, *gogithub.Response, error) {
		raw, resp, err := c.gh.CodeScanning.ListAlertsForRepo(ctx, owner, repo, &gogithub.AlertListOptions{
			State:       state,
			ListOptions: gogithub.ListOptions{PerPage: c.pageSize, Page: page},
		})
		if err != nil {
			return nil, 0, resp, err
		}
		alerts := make([]models.Alert, 0, len(raw))
		for _, a := range raw {
			if a == nil {
				continue
			}
			alerts = append(alerts, convertCodeScanningAlert(a))
		}
		return alerts, len(raw), resp, nil
	}
}

func (c *Client) dependabotPage(owner, repo string) alertPageFunc {
	return func(ctx context.Context, state string, page int) ([]models.Alert, int, *gogithub.Response, error) {
		raw, resp, err := c.gh.Dependabot.ListRepoAlerts(ctx, owner, repo, &gogithub.ListAlertsOptions{
			State:       gogithub.Ptr(state),
			ListOptions: gogithub.ListOptions{PerPage: c.pageSize, Page: page},
		})
		if err != nil {
			return nil, 0, resp, err
		}
		alerts := make([]models.Alert, 0, len(raw))
		for _, a := range raw {
			if a == nil {
				continue
			}
			alerts = append(alerts, convertDependabotAlert(a))
		}
		return alerts, len(raw), resp, nil
	}
}

func (c *Client) secretScanningPage(owner, repo string) alertPageFunc {
	return func(ctx context.Context, state string, page int) ([]models.Alert, int, *gogithub.Response, error) {
		raw, resp, err := c.gh.SecretScanning.ListAlertsForRepo(ctx, owner, repo, &gogithub.SecretScanningAlertListOptions{
			State:       state,
			ListOptions: gogithub.ListOptions{PerPage: c.pageSize, Page: page},
		})
		if err != nil {
			return nil, 0, resp, err
		}
		alerts := make([]models.Alert, 0, len(raw))
		for _, a := range raw {
			if a == nil {
				continue
			}
			alerts = append(alerts, convertSecretScanningAlert(a))
		}
		return alerts, len(raw), resp, nil
	}
}

func convertCodeScanningAlert(a *gogithub.Alert) models.Alert {
	return models.Alert{
		Kind:      models.AlertKindCodeScanning,
		Number:    a.GetNumber(),
		State:     a.GetState(),
		CreatedAt: a.GetCreatedAt().Time,
		ClosedAt:  firstNonZero(a.GetDismissedAt().Time, a.GetFixedAt().Time),
		UpdatedAt: a.GetUpdatedAt().Time,
		Severity:  codeScanningSeverity(a),
		Detail: models.CodeScanningDetail{
			RuleID: a.GetRule().GetID(),
			Tool:   a.GetTool().GetName(),
		},
	}
}

func convertDependabotAlert(a *gogithub.DependabotAlert) models.Alert {
	return models.Alert{
		Kind:      models.AlertKindDependabot,
		Number:    a.GetNumber(),
		State:     a.GetState(),
		CreatedAt: a.GetCreatedAt().Time,
		ClosedAt:  firstNonZero(a.GetDismissedAt().Time, a.GetFixedAt().Time, a.GetAutoDismissedAt().Time),
		UpdatedAt: a.GetUpdatedAt().Time,
		Severity:  dependabotSeverity(a),
		Detail: models.DependabotDetail{
			Package:   a.GetDependency().GetPackage().GetName(),
			Ecosystem: a.GetDependency().GetPackage().GetEcosystem(),
		},
	}
}

func convertSecretScanningAlert(a *gogithub.SecretScanningAlert) models.Alert {
	return models.Alert{
		Kind:      models.AlertKindSecretScanning,
		Number:    a.GetNumber(),
		State:     a.GetState(),
		CreatedAt: a.GetCreatedAt().Time,
		ClosedAt:  a.GetResolvedAt().Time,
		UpdatedAt: a.GetUpdatedAt().Time,
		Severity:  models.SeverityNone,
		Detail: models.SecretScanningDetail{
			SecretType: a.GetSecretType(),
		},
	}
}

// codeScanningSeverity resolves a static-analysis alert's severity.
// Fallback order: the rule's security severity level, then its plain
// severity (error/warning/note). Unknown stays unknown; the summarizer
// decides what that counts as.
func codeScanningSeverity(a *gogithub.Alert) models.Severity {
	if s := a.GetRule().GetSecuritySeverityLevel(); s != "" {
		return models.NormalizeSeverity(s)
	}
	if s := a.GetRule().GetSeverity(); s != "" {
		return models.NormalizeSeverity(s)
	}
	return models.SeverityUnknown
}

// dependabotSeverity resolves a dependency alert's severity.
// Fallback order: the advisory severity, then the vulnerability severity.
func dependabotSeverity(a *gogithub.DependabotAlert) models.Severity {
	if s := a.GetSecurityAdvisory().GetSeverity(); s != "" {
		return models.NormalizeSeverity(s)
	}
	if s := a.GetSecurityVulnerability().GetSeverity(); s != "" {
		return models.NormalizeSeverity(s)
	}
	return models.SeverityUnknown
}

func firstNonZero(times ...time.Time) time.Time {
	for _, t := range times {
		if !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}

// Package hosting talks to the GitHub API: repository listing, metadata,
// and the three security-alert streams the sync job aggregates.
package hosting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v68/github"
	"github.com/sethvargo/go-retry"
	"golang.org/x/oauth2"

	"github.com/patchwatch/repoboard/internal/config"
	"github.com/patchwatch/repoboard/models"
)

const defaultPageSize = 100

// Client wraps the GitHub API client with pagination, rate limiting, and
// conversion into repoboard's own types.
type Client struct {
	gh       *gogithub.Client
	limiter  *RateLimiter
	pageSize int
}

// New creates a Client from the given configuration.
func New(cfg config.GitHubConfig, pageSize int) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(context.Background(), ts)
	client := gogithub.NewClient(tc)

	// Support GitHub Enterprise by overriding the base URL.
	if cfg.Host != "" && cfg.Host != "github.com" {
		base := fmt.Sprintf("https://%s/api/v3/", cfg.Host)
		upload := fmt.Sprintf("https://%s/api/uploads/", cfg.Host)
		var err error
		client, err = client.WithEnterpriseURLs(base, upload)
		if err != nil {
			return nil, fmt.Errorf("configuring GitHub enterprise URLs: %w", err)
		}
	}

	return NewFromGitHub(client, pageSize), nil
}

// NewFromGitHub wraps an already-constructed GitHub client. Used by tests
// to point at a local server.
func NewFromGitHub(gh *gogithub.Client, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{gh: gh, limiter: NewRateLimiter(), pageSize: pageSize}
}

// Viewer returns the login of the authenticated user. Used by the doctor
// command to verify the token.
func (c *Client) Viewer(ctx context.Context) (string, error) {
	u, resp, err := c.gh.Users.Get(ctx, "")
	c.limiter.RecordResponse(resp)
	if err != nil {
		return "", fmt.Errorf("checking GitHub credentials: %w", err)
	}
	return u.GetLogin(), nil
}

// ListOrgRepos pages through every repository of org and converts each into
// a fresh observed-field record. A failure here would drop the whole org
// from the run, so pages are retried with exponential backoff.
func (c *Client) ListOrgRepos(ctx context.Context, org string) ([]models.RepositoryRecord, error) {
	var all []models.RepositoryRecord
	for page := 1; ; page++ {
		var repos []*gogithub.Repository
		backoff := retry.WithMaxRetries(3, retry.NewExponential(time.Second))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := c.limiter.Acquire(ctx); err != nil {
				return err
			}
			rs, resp, err := c.gh.Repositories.ListByOrg(ctx, org, &gogithub.RepositoryListByOrgOptions{
				Type:        "all",
				ListOptions: gogithub.ListOptions{PerPage: c.pageSize, Page: page},
			})
			c.limiter.RecordResponse(resp)
			if err != nil {
				if delay, ok := rateLimitDelay(err); ok {
					if serr := sleepCtx(ctx, delay); serr != nil {
						return serr
					}
					return retry.RetryableError(err)
				}
				if isClientError(err) {
					return err // 4xx: retrying will not help
				}
				return retry.RetryableError(err)
			}
			repos = rs
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("listing repositories for %s: %w", org, err)
		}

		for _, r := range repos {
			if r == nil {
				continue
			}
			all = append(all, recordFromRepo(org, r))
		}
		if len(repos) < c.pageSize {
			return all, nil
		}
	}
}

// codeownersPaths are probed in order; any hit counts.
var codeownersPaths = []string{".github/CODEOWNERS", "CODEOWNERS", "docs/CODEOWNERS"}

// HasCodeowners reports whether the repository carries a CODEOWNERS file in
// any of the conventional locations.
func (c *Client) HasCodeowners(ctx context.Context, owner, repo string) (bool, error) {
	for _, path := range codeownersPaths {
		found, err := c.probeFile(ctx, owner, repo, path)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

// probeFile checks whether a file exists, resuming after a rate-limit pause.
// A 403/404 means "not there" rather than an error.
func (c *Client) probeFile(ctx context.Context, owner, repo, path string) (bool, error) {
	for {
		if err := c.limiter.Acquire(ctx); err != nil {
			return false, err
		}
		file, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
		c.limiter.RecordResponse(resp)
		if err == nil {
			return file != nil, nil
		}
		if isFeatureDisabled(err) {
			return false, nil
		}
		if delay, ok := rateLimitDelay(err); ok {
			if serr := sleepCtx(ctx, delay); serr != nil {
				return false, serr
			}
			continue
		}
		return false, fmt.Errorf("probing %s in %s/%s: %w", path, owner, repo, err)
	}
}

// recordFromRepo builds a fresh RepositoryRecord from API metadata. Curated
// fields stay empty: they are owned by humans, never by the fetch stage.
func recordFromRepo(org string, r *gogithub.Repository) models.RepositoryRecord {
	rec := models.RepositoryRecord{
		Organization: org,
		Repository:   r.GetName(),
		Description:  r.GetDescription(),
		Language:     r.GetLanguage(),
		Status:       statusOf(r),
		GitHubURL:    r.GetHTMLURL(),
	}
	if t := r.GetPushedAt(); !t.Time.IsZero() {
		day := t.Time.UTC().Format("2006-01-02")
		rec.LastActivity = &day
	}
	return rec
}

func statusOf(r *gogithub.Repository) models.RepoStatus {
	if r.GetArchived() {
		return models.StatusArchived
	}
	if strings.Contains(strings.ToLower(r.GetDescription()), "deprecated") {
		return models.StatusDeprecated
	}
	return models.StatusActive
}

func isClientError(err error) bool {
	var er *gogithub.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return er.Response.StatusCode >= 400 && er.Response.StatusCode < 500
	}
	return false
}

// isFeatureDisabled reports whether err is the API's way of saying a
// security feature (or path) is not enabled/visible for the repository.
// Rate-limit 403s are typed differently by go-github and never match here.
func isFeatureDisabled(err error) bool {
	var er *gogithub.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		sc := er.Response.StatusCode
		return sc == http.StatusForbidden || sc == http.StatusNotFound
	}
	return false
}

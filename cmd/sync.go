package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/patchwatch/repoboard/internal/config"
	"github.com/patchwatch/repoboard/internal/dataset"
	"github.com/patchwatch/repoboard/internal/history"
	"github.com/patchwatch/repoboard/internal/hosting"
	"github.com/patchwatch/repoboard/internal/notify"
	"github.com/patchwatch/repoboard/internal/syncer"
)

var syncOrgs []string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync pass now",
	Long: `Fetches every repository of the configured organizations, recomputes the
three security-alert summaries for each, merges the result against the
persisted dataset (never touching curated ownership fields), and writes
the dataset back.

Per-repository failures are contained: the previous record survives
untouched and the run continues.

Examples:
  repoboard sync
  repoboard sync --org acme            # sync a single organization
  repoboard sync -v                    # with debug logging`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringSliceVar(&syncOrgs, "org", nil,
		"Organization(s) to sync (overrides config)")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(syncOrgs) > 0 {
		cfg.Sync.Organizations = syncOrgs
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	report, err := executeSync(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Println(successStyle.Render("Sync complete: " + report.Summary()))
	if report.Errors > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf(
			"%d repositories kept their previous data; see the log for details.", report.Errors)))
	}
	return nil
}

// executeSync runs one pass and handles the post-run bookkeeping (run log,
// Slack notification). Shared by 'sync' and 'agent'.
func executeSync(ctx context.Context, cfg *config.Config) (*syncer.RunReport, error) {
	client, err := hosting.New(cfg.GitHub, cfg.Sync.PageSize)
	if err != nil {
		return nil, err
	}

	store := dataset.NewStore(cfg.Sync.DatasetPath)
	runner := syncer.New(cfg, client, store)

	report, err := runner.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync failed: %w", err)
	}

	if cfg.History.Enabled {
		if err := recordRun(ctx, cfg, report); err != nil {
			slog.Warn("Could not record run in history", "error", err)
		}
	}

	slack := notify.NewSlack(cfg.Notify.SlackWebhookURL)
	if slack.IsConfigured() {
		if err := slack.SendReport(ctx, report); err != nil {
			slog.Warn("Slack notification failed", "error", err)
		}
	}
	return report, nil
}

func recordRun(ctx context.Context, cfg *config.Config, report *syncer.RunReport) error {
	h, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer h.Close()
	return h.RecordRun(ctx, history.Run{
		StartedAt:     report.StartedAt,
		FinishedAt:    report.FinishedAt,
		Organizations: cfg.Sync.Organizations,
		TotalRepos:    report.TotalRepos,
		Updated:       report.Updated,
		Skipped:       report.Skipped,
		Errors:        report.Errors,
	})
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/patchwatch/repoboard/internal/config"
)

var (
	agentSchedule string
	agentRunNow   bool
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run sync passes on a cron schedule",
	Long: `Starts a long-running process that executes a sync pass on the
configured cron schedule. One pass runs at a time; a firing that
overlaps a still-running pass is skipped.

Examples:
  repoboard agent                        # use sync.schedule from config
  repoboard agent --schedule "0 */6 * * *"
  repoboard agent --now                  # run one pass immediately, then wait`,
	RunE: runAgentCmd,
}

func init() {
	agentCmd.Flags().StringVar(&agentSchedule, "schedule", "",
		"Cron expression (overrides config, e.g. \"0 6 * * *\")")
	agentCmd.Flags().BoolVar(&agentRunNow, "now", false,
		"Run one sync pass immediately before waiting for the schedule")
}

func runAgentCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Graceful shutdown on SIGINT/SIGTERM.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Println("\nShutting down agent gracefully...")
		cancel()
	}()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if agentSchedule != "" {
		cfg.Sync.Schedule = agentSchedule
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// One pass at a time. A second firing while busy is dropped, not queued:
	// the next scheduled pass recomputes everything anyway.
	busy := make(chan struct{}, 1)
	pass := func() {
		select {
		case busy <- struct{}{}:
			defer func() { <-busy }()
		default:
			slog.Warn("Previous sync pass still running; skipping this firing")
			return
		}
		if _, err := executeSync(ctx, cfg); err != nil && ctx.Err() == nil {
			slog.Error("Scheduled sync failed", "error", err)
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Sync.Schedule, pass); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cfg.Sync.Schedule, err)
	}

	slog.Info("Agent started", "schedule", cfg.Sync.Schedule,
		"organizations", cfg.Sync.Organizations)
	fmt.Printf("repoboard agent running (schedule: %s). Press Ctrl+C to stop.\n", cfg.Sync.Schedule)

	if agentRunNow {
		pass()
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	fmt.Println("Agent stopped.")
	return nil
}

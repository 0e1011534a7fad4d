package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/patchwatch/repoboard/internal/aggregate"
	"github.com/patchwatch/repoboard/internal/config"
	"github.com/patchwatch/repoboard/internal/dataset"
	"github.com/patchwatch/repoboard/internal/history"
	"github.com/patchwatch/repoboard/internal/podmap"
	"github.com/patchwatch/repoboard/models"
)

var (
	reportTop  int
	reportRuns int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the highest-risk repositories",
	Long: `Reads the persisted dataset and prints the repositories with the highest
weighted, age-adjusted risk scores, together with their pod and
engineering manager. When a record has no manager, the pod map file
(sync.pod_map_path) is consulted.

Examples:
  repoboard report
  repoboard report --top 25
  repoboard report --runs 5     # also show the last 5 sync runs`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportTop, "top", 10,
		"Number of repositories to show")
	reportCmd.Flags().IntVar(&reportRuns, "runs", 0,
		"Also show the N most recent sync runs")
}

type scoredRepo struct {
	rec   models.RepositoryRecord
	score int
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ds, err := dataset.NewStore(cfg.Sync.DatasetPath).Load()
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	if len(ds.Repositories) == 0 {
		fmt.Println(dimStyle.Render("Dataset is empty — run 'repoboard sync' first."))
		return nil
	}

	pods, err := podmap.Load(cfg.Sync.PodMapPath)
	if err != nil {
		return err
	}

	scored := make([]scoredRepo, 0, len(ds.Repositories))
	for _, rec := range ds.Repositories {
		score := 0
		if rec.Vulnerabilities != nil {
			score = aggregate.RiskScore(*rec.Vulnerabilities)
		}
		scored = append(scored, scoredRepo{rec: rec, score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	top := reportTop
	if top <= 0 || top > len(scored) {
		top = len(scored)
	}

	fmt.Printf("Top %d of %d repositories by risk (dataset from %s)\n\n",
		top, len(scored), ds.Metadata.LastUpdated.Format("2006-01-02 15:04 MST"))
	fmt.Printf("  %-45s %6s  %-20s %-20s\n", "REPOSITORY", "RISK", "POD", "MANAGER")

	for _, s := range scored[:top] {
		manager := s.rec.EngineeringManager
		if manager == "" {
			manager = pods.Lookup(s.rec.Pod)
		}
		if manager == "" {
			manager = "-"
		}
		line := fmt.Sprintf("  %-45s %6d  %-20s %-20s",
			s.rec.Key(), s.score, s.rec.Pod, manager)
		switch {
		case s.score >= 100:
			fmt.Println(warnStyle.Render(line))
		case s.score == 0:
			fmt.Println(dimStyle.Render(line))
		default:
			fmt.Println(line)
		}
	}

	if reportRuns > 0 {
		if err := printRecentRuns(cmd, cfg, reportRuns); err != nil {
			return err
		}
	}
	return nil
}

func printRecentRuns(cmd *cobra.Command, cfg *config.Config, limit int) error {
	h, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("opening run history: %w", err)
	}
	defer h.Close()

	runs, err := h.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	fmt.Printf("\nRecent sync runs:\n")
	if len(runs) == 0 {
		fmt.Println(dimStyle.Render("  (none recorded yet)"))
		return nil
	}
	for _, r := range runs {
		line := fmt.Sprintf("  %s  %3d repos, %3d updated, %2d skipped, %2d errors  (%s)",
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.TotalRepos, r.Updated, r.Skipped, r.Errors,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
		if r.Errors > 0 {
			fmt.Println(warnStyle.Render(line))
		} else {
			fmt.Println(line)
		}
	}
	return nil
}

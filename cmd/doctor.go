package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/patchwatch/repoboard/internal/config"
	"github.com/patchwatch/repoboard/internal/dataset"
	"github.com/patchwatch/repoboard/internal/history"
	"github.com/patchwatch/repoboard/internal/hosting"
	"github.com/patchwatch/repoboard/internal/podmap"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify credentials and local state",
	Long: `Checks that the configuration is complete, the GitHub token works, the
dataset location is writable, and the local run history can be opened.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	allOK := true

	fmt.Println("=== repoboard doctor ===")
	fmt.Println()

	// Configuration completeness.
	fmt.Print("Configuration ............ ")
	if err := cfg.Validate(); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		fmt.Printf("OK (%d organization(s))\n", len(cfg.Sync.Organizations))
	}

	// GitHub credentials.
	fmt.Print("GitHub token ............. ")
	if cfg.GitHub.Token == "" {
		fmt.Println("MISSING (set github.token or GITHUB_TOKEN)")
		allOK = false
	} else if client, err := hosting.New(cfg.GitHub, cfg.Sync.PageSize); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else if login, err := client.Viewer(ctx); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		fmt.Printf("OK (authenticated as %s on %s)\n", login, cfg.GitHub.Host)
	}

	// Dataset location.
	fmt.Print("Dataset .................. ")
	store := dataset.NewStore(cfg.Sync.DatasetPath)
	if ds, err := store.Load(); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else if err := writableDir(filepath.Dir(cfg.Sync.DatasetPath)); err != nil {
		fmt.Printf("FAIL (not writable: %s)\n", err)
		allOK = false
	} else if len(ds.Repositories) == 0 {
		fmt.Printf("OK (empty — first sync pending at %s)\n", cfg.Sync.DatasetPath)
	} else {
		fmt.Printf("OK (%d repositories, last updated %s)\n",
			len(ds.Repositories), ds.Metadata.LastUpdated.Format("2006-01-02"))
	}

	// Pod map.
	fmt.Print("Pod map .................. ")
	if cfg.Sync.PodMapPath == "" {
		fmt.Println("not configured (optional)")
	} else if pods, err := podmap.Load(cfg.Sync.PodMapPath); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		fmt.Printf("OK (%d pods mapped)\n", len(pods))
	}

	// Run history.
	fmt.Print("Run history .............. ")
	if !cfg.History.Enabled {
		fmt.Println("disabled")
	} else if h, err := history.Open(cfg.History.Path); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		if err := h.Ping(ctx); err != nil {
			fmt.Printf("FAIL (%s)\n", err)
			allOK = false
		} else {
			fmt.Printf("OK (%s)\n", cfg.History.Path)
		}
		h.Close()
	}

	// Slack.
	fmt.Print("Slack notifications ...... ")
	if cfg.Notify.SlackWebhookURL == "" {
		fmt.Println("not configured (optional)")
	} else {
		fmt.Println("configured")
	}

	fmt.Println()
	if allOK {
		fmt.Println(successStyle.Render("All checks passed — repoboard is ready."))
	} else {
		fmt.Println(warnStyle.Render("Some checks failed — fix the items above and re-run."))
		return fmt.Errorf("doctor found problems")
	}
	return nil
}

// writableDir verifies dir exists (creating it if needed) and accepts writes.
func writableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".repoboard-doctor-*")
	if err != nil {
		return err
	}
	probe.Close()
	return os.Remove(probe.Name())
}

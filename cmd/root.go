package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

var successStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#10B981"))

var warnStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#F59E0B"))

var dimStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#6B7280"))

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "repoboard",
	Short: "Repository ownership and security-alert dashboard sync",
	Long: `repoboard keeps a JSON dataset of every repository across your GitHub
organizations: who owns it, how active it is, and how its security alerts
(code scanning, Dependabot, secret scanning) are trending. Curated
ownership fields survive every sync; observed fields are refreshed from
the API.

Get started:
  repoboard doctor    Verify credentials and local state
  repoboard sync      Run one sync pass now
  repoboard agent     Run sync passes on a cron schedule
  repoboard report    Show the highest-risk repositories`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.repoboard/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose/debug output")

	rootCmd.Version = Version
	rootCmd.AddCommand(
		syncCmd,
		agentCmd,
		reportCmd,
		doctorCmd,
	)
}

func initLogging() {
	if verbose {
		// slog.SetLogLoggerLevel requires Go 1.22; this toolchain is 1.21.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
		slog.Debug("Verbose logging enabled")
	}
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/miguel731/osintdash/api"
	"github.com/miguel731/osintdash/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "osintdash",
	Short: "Terminal client for the OSINT scanning service",
	Long: `osintdash is a terminal client for the OSINT scanning service: it
manages projects, scans and recurring schedules, streams scan logs live,
and renders filtered findings with chart and relationship-graph views.

Run without arguments to open the interactive dashboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file (default: $OSINTDASH_CONFIG, ./osintdash.yaml)")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadClient() (*api.Client, *config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	return api.NewClient(cfg.APIURL, cfg.WSURL), cfg, nil
}

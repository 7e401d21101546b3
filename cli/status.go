package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/miguel731/osintdash/api"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service health and collection sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := loadClient()
		if err != nil {
			return err
		}

		var (
			projects  []api.Project
			scans     []api.Scan
			schedules []api.Schedule
		)

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error { return client.Health(ctx) })
		g.Go(func() error {
			var err error
			projects, err = client.ListProjects(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			scans, err = client.ListScans(ctx, 0)
			return err
		})
		g.Go(func() error {
			var err error
			schedules, err = client.ListSchedules(ctx, 0)
			return err
		})
		if err := g.Wait(); err != nil {
			return fmt.Errorf("service unreachable: %w", err)
		}

		running := 0
		for _, sc := range scans {
			if sc.Status == api.ScanRunning || sc.Status == api.ScanQueued {
				running++
			}
		}
		enabled := 0
		for _, sch := range schedules {
			if sch.Enabled {
				enabled++
			}
		}

		fmt.Printf("Service:   %s (healthy)\n", cfg.APIURL)
		fmt.Printf("Projects:  %d\n", len(projects))
		fmt.Printf("Scans:     %d (%d active)\n", len(scans), running)
		fmt.Printf("Schedules: %d (%d enabled)\n", len(schedules), enabled)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

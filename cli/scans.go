package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/miguel731/osintdash/api"
	"github.com/miguel731/osintdash/engine"
)

var (
	scanProjectID int
	scanTools     []string
)

var scansCmd = &cobra.Command{
	Use:   "scans",
	Short: "Manage scans",
}

var scansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scans, optionally scoped to a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loadClient()
		if err != nil {
			return err
		}
		scans, err := client.ListScans(cmd.Context(), scanProjectID)
		if err != nil {
			return err
		}
		rows := make([][]any, 0, len(scans))
		for _, sc := range scans {
			rows = append(rows, []any{sc.ID, sc.ProjectID, sc.Target, sc.Status, strings.Join(sc.Tools, ",")})
		}
		renderTable([]string{"ID", "Project", "Target", "Status", "Tools"}, rows)
		return nil
	},
}

var scansStartCmd = &cobra.Command{
	Use:   "start <target>",
	Short: "Start a scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loadClient()
		if err != nil {
			return err
		}
		d := engine.NewDispatcher(client)
		outcome, err := d.CreateScan(cmd.Context(), api.ScanRequest{
			ProjectID: scanProjectID,
			Target:    args[0],
			Tools:     scanTools,
		})
		if err != nil {
			return err
		}
		fmt.Println(outcome.Note)
		return nil
	},
}

var scansStopCmd = &cobra.Command{
	Use:   "stop <id>",
	Short: "Request a running scan to stop",
	Args:  cobra.ExactArgs(1),
	RunE: scanAction(func(d *engine.Dispatcher, cmd *cobra.Command, id int) (engine.Outcome, error) {
		return d.StopScan(cmd.Context(), id)
	}),
}

var scansRerunCmd = &cobra.Command{
	Use:   "rerun <id>",
	Short: "Queue a fresh scan with the same target and tools",
	Args:  cobra.ExactArgs(1),
	RunE: scanAction(func(d *engine.Dispatcher, cmd *cobra.Command, id int) (engine.Outcome, error) {
		return d.RerunScan(cmd.Context(), id)
	}),
}

var scansDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a scan and its findings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid scan id %q", args[0])
		}
		if !confirmDestructive(cmd, fmt.Sprintf("Delete scan #%d and its findings?", id)) {
			fmt.Println("Canceled")
			return nil
		}
		client, _, err := loadClient()
		if err != nil {
			return err
		}
		outcome, err := engine.NewDispatcher(client).DeleteScan(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Println(outcome.Note)
		return nil
	},
}

var scansFindingsCmd = &cobra.Command{
	Use:   "findings <id>",
	Short: "List the findings of a scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid scan id %q", args[0])
		}
		client, _, err := loadClient()
		if err != nil {
			return err
		}
		findings, err := client.ListFindings(cmd.Context(), id)
		if err != nil {
			return err
		}
		rows := make([][]any, 0, len(findings))
		for _, f := range findings {
			rows = append(rows, []any{f.Tool, f.Category, f.Value, f.Severity})
		}
		renderTable([]string{"Tool", "Category", "Value", "Severity"}, rows)
		fmt.Printf("\nExports: %s  %s\n", client.ExportURL(id, "csv"), client.ExportURL(id, "pdf"))
		return nil
	},
}

func scanAction(fn func(*engine.Dispatcher, *cobra.Command, int) (engine.Outcome, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid scan id %q", args[0])
		}
		client, _, err := loadClient()
		if err != nil {
			return err
		}
		outcome, err := fn(engine.NewDispatcher(client), cmd, id)
		if err != nil {
			return err
		}
		fmt.Println(outcome.Note)
		return nil
	}
}

func init() {
	scansListCmd.Flags().IntVar(&scanProjectID, "project", 0, "Project id to scope the list (0 = all)")
	scansStartCmd.Flags().IntVar(&scanProjectID, "project", 0, "Project id the scan belongs to")
	scansStartCmd.Flags().StringSliceVar(&scanTools, "tools", api.DefaultTools, "Tools to run")
	scansCmd.AddCommand(scansListCmd, scansStartCmd, scansStopCmd, scansRerunCmd, scansDeleteCmd, scansFindingsCmd)
	rootCmd.AddCommand(scansCmd)
}

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
	scheduleProjectID int
	scheduleTools     []string
	scheduleInterval  int
)

var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "Manage recurring scan schedules",
}

var schedulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loadClient()
		if err != nil {
			return err
		}
		schedules, err := client.ListSchedules(cmd.Context(), scheduleProjectID)
		if err != nil {
			return err
		}
		rows := make([][]any, 0, len(schedules))
		for _, sch := range schedules {
			enabled := "off"
			if sch.Enabled {
				enabled = "on"
			}
			project := "-"
			if sch.ProjectID != nil {
				project = strconv.Itoa(*sch.ProjectID)
			}
			rows = append(rows, []any{
				sch.ID, project, sch.Target, strings.Join(sch.Tools, ","),
				fmt.Sprintf("%dm", sch.IntervalMinutes), enabled,
				sch.NextRunAt.Format("2006-01-02 15:04"),
			})
		}
		renderTable([]string{"ID", "Project", "Target", "Tools", "Interval", "Enabled", "Next run"}, rows)
		return nil
	},
}

var schedulesCreateCmd = &cobra.Command{
	Use:   "create <target>",
	Short: "Create a recurring scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loadClient()
		if err != nil {
			return err
		}
		req := api.ScheduleRequest{
			Target:          args[0],
			Tools:           scheduleTools,
			IntervalMinutes: scheduleInterval,
		}
		if scheduleProjectID > 0 {
			req.ProjectID = &scheduleProjectID
		}
		outcome, err := engine.NewDispatcher(client).CreateSchedule(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Println(outcome.Note)
		return nil
	},
}

var schedulesToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Enable or disable a schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid schedule id %q", args[0])
		}
		client, _, err := loadClient()
		if err != nil {
			return err
		}
		// One-shot command: fetch the canonical copy the toggle is based on.
		schedules, err := client.ListSchedules(cmd.Context(), 0)
		if err != nil {
			return err
		}
		var current *api.Schedule
		for i := range schedules {
			if schedules[i].ID == id {
				current = &schedules[i]
				break
			}
		}
		if current == nil {
			return fmt.Errorf("schedule #%d not found", id)
		}
		outcome, err := engine.NewDispatcher(client).ToggleSchedule(cmd.Context(), *current)
		if err != nil {
			return err
		}
		fmt.Println(outcome.Note)
		return nil
	},
}

var schedulesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid schedule id %q", args[0])
		}
		if !confirmDestructive(cmd, fmt.Sprintf("Delete schedule #%d?", id)) {
			fmt.Println("Canceled")
			return nil
		}
		client, _, err := loadClient()
		if err != nil {
			return err
		}
		outcome, err := engine.NewDispatcher(client).DeleteSchedule(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Println(outcome.Note)
		return nil
	},
}

func init() {
	schedulesListCmd.Flags().IntVar(&scheduleProjectID, "project", 0, "Project id to scope the list (0 = all)")
	schedulesCreateCmd.Flags().IntVar(&scheduleProjectID, "project", 0, "Project id the schedule belongs to")
	schedulesCreateCmd.Flags().StringSliceVar(&scheduleTools, "tools", api.DefaultTools, "Tools to run")
	schedulesCreateCmd.Flags().IntVar(&scheduleInterval, "interval", 60, "Minutes between runs")
	schedulesCmd.AddCommand(schedulesListCmd, schedulesCreateCmd, schedulesToggleCmd, schedulesDeleteCmd)
	rootCmd.AddCommand(schedulesCmd)
}

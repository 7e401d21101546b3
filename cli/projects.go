package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/miguel731/osintdash/engine"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loadClient()
		if err != nil {
			return err
		}
		projects, err := client.ListProjects(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]any, 0, len(projects))
		for _, p := range projects {
			rows = append(rows, []any{p.ID, p.Name})
		}
		renderTable([]string{"ID", "Name"}, rows)
		return nil
	},
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loadClient()
		if err != nil {
			return err
		}
		d := engine.NewDispatcher(client)
		outcome, err := d.CreateProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(outcome.Note)
		return nil
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project and its scans",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid project id %q", args[0])
		}
		if !confirmDestructive(cmd, fmt.Sprintf("Delete project #%d and all of its scans?", id)) {
			fmt.Println("Canceled")
			return nil
		}
		client, _, err := loadClient()
		if err != nil {
			return err
		}
		d := engine.NewDispatcher(client)
		outcome, err := d.DeleteProject(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Println(outcome.Note)
		return nil
	},
}

var assumeYes bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Skip confirmation prompts for destructive commands")
	projectsCmd.AddCommand(projectsListCmd, projectsCreateCmd, projectsDeleteCmd)
	rootCmd.AddCommand(projectsCmd)
}

// confirmDestructive implements the destructive-action gate for one-shot
// commands: --yes skips the prompt, otherwise the user answers on stdin.
func confirmDestructive(cmd *cobra.Command, prompt string) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/miguel731/osintdash/config"
)

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the interactive dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func init() {
	rootCmd.AddCommand(dashCmd)
}

func runDashboard() error {
	if !isInteractiveTerminal() {
		return fmt.Errorf("the dashboard needs an interactive terminal; use the projects/scans/schedules subcommands instead")
	}

	client, cfg, err := loadClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	model := newDashModel(client, cfg, cancel)
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Config edits apply live: the watcher feeds reloads into the event
	// loop like any other message.
	go func() {
		_ = config.Watch(ctx, cfgPath, func(next *config.Config) {
			p.Send(configReloadedMsg{cfg: next})
		})
	}()

	_, runErr := p.Run()
	cancel()
	return runErr
}

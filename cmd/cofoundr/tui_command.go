package main

import (
	"context"
	"fmt"

	"cofoundr/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTUICommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive terminal workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger(true)
			if err != nil {
				return err
			}

			runCtx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			bridge := tui.NewBridge()
			a, err := ctx.newApp(runCtx, logger, bridge)
			if err != nil {
				return err
			}
			defer a.Close()

			model := tui.NewModel(runCtx, a.runner, bridge, tui.Options{
				PollInterval: a.cfg.PollInterval,
				Logger:       logger.Named("tui"),
			})

			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(runCtx))
			final, err := program.Run()

			cancel()
			if m, ok := final.(tui.Model); ok {
				m.Close()
			} else {
				model.Close()
			}
			if err != nil && runCtx.Err() == nil {
				return fmt.Errorf("error running program: %w", err)
			}
			return nil
		},
	}
}

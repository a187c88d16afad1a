package tui

import (
	"context"
	"time"

	"cofoundr/poller"
	"cofoundr/types"
	"cofoundr/workflow"

	tea "github.com/charmbracelet/bubbletea"
)

// toastLifetime is how long a toast stays on screen
const toastLifetime = 4 * time.Second

// runStep creates a command that runs one workflow step
func runStep(ctx context.Context, runner *workflow.Runner, step types.Step) tea.Cmd {
	return func() tea.Msg {
		return StepFinishedMsg{Step: step, Err: runner.Run(ctx, step)}
	}
}

// submitIdea creates a command that analyzes idea
func submitIdea(ctx context.Context, runner *workflow.Runner, idea string) tea.Cmd {
	return func() tea.Msg {
		return StepFinishedMsg{Step: types.StepAnalyze, Err: runner.Analyze(ctx, idea)}
	}
}

// simulateIfNeeded creates a command that auto-runs the simulation on page entry
func simulateIfNeeded(ctx context.Context, runner *workflow.Runner) tea.Cmd {
	return func() tea.Msg {
		ran, err := runner.SimulateIfNeeded(ctx)
		if !ran {
			return nil
		}
		return StepFinishedMsg{Step: types.StepSimulate, Err: err}
	}
}

// stopPoller creates a command that waits for the poller to wind down
func stopPoller(h *poller.Handle) tea.Cmd {
	return func() tea.Msg {
		h.Stop()
		return pollerStoppedMsg{}
	}
}

// expireToast creates a command that fires when toast id should disappear
func expireToast(id int) tea.Cmd {
	return tea.Tick(toastLifetime, func(time.Time) tea.Msg {
		return toastExpiredMsg{ID: id}
	})
}

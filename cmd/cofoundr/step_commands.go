package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cofoundr/types"
	"cofoundr/workflow"

	"github.com/spf13/cobra"
)

// prerequisites lists the steps that must run before step in a fresh
// process, in order
var prerequisites = map[types.Step][]types.Step{
	types.StepAnalyze:  nil,
	types.StepSimulate: {types.StepAnalyze},
	types.StepBrochure: nil,
	types.StepReport:   {types.StepAnalyze},
	types.StepLinkedIn: {types.StepAnalyze},
	types.StepAutoPost: {types.StepAnalyze, types.StepLinkedIn},
	types.StepMetrics:  nil,
}

var stepShort = map[types.Step]string{
	types.StepAnalyze:  "Analyze a startup idea",
	types.StepSimulate: "Analyze an idea and simulate its market",
	types.StepBrochure: "Generate a brochure image for an idea",
	types.StepReport:   "Analyze an idea and generate a PDF report",
	types.StepLinkedIn: "Analyze an idea and draft a LinkedIn post",
	types.StepAutoPost: "Analyze an idea, draft a LinkedIn post and publish it",
	types.StepMetrics:  "Show service metrics",
}

type outputOptions struct {
	json bool
}

func newStepCommands(ctx *commandContext) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(types.Steps))
	for _, step := range types.Steps {
		cmds = append(cmds, newStepCommand(ctx, step))
	}
	return cmds
}

func newStepCommand(ctx *commandContext, step types.Step) *cobra.Command {
	var out outputOptions
	var ideaFile string
	var post string

	needsIdea := step != types.StepMetrics

	cmd := &cobra.Command{
		Use:   string(step),
		Short: stepShort[step],
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger(false)
			if err != nil {
				return err
			}
			a, err := ctx.newApp(cmd.Context(), logger, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if needsIdea {
				idea, err := readIdea(cmd, args, ideaFile)
				if err != nil {
					return err
				}
				a.store.SetIdeaText(idea)
			}

			plan := append(append([]types.Step(nil), prerequisites[step]...), step)
			for _, s := range plan {
				if s == types.StepAutoPost && post != "" {
					a.runner.EditPost(post)
				}
				if err := a.runner.Run(cmd.Context(), s); err != nil {
					return stepError(s, err)
				}
			}

			snap := a.store.Snapshot()
			if out.json {
				return writeJSON(cmd, snap)
			}
			return printStep(cmd.OutOrStdout(), snap, step)
		},
	}

	cmd.Flags().BoolVar(&out.json, "json", false, "Print the workflow state as JSON")
	if needsIdea {
		cmd.Use += " [idea...]"
		cmd.Flags().StringVarP(&ideaFile, "file", "f", "", "Read the idea from a file (- for stdin)")
	}
	if step == types.StepAutoPost {
		cmd.Flags().StringVar(&post, "post", "", "Publish this text instead of the drafted post")
	}
	return cmd
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var out outputOptions
	var ideaFile string
	var publish bool

	cmd := &cobra.Command{
		Use:   "run [idea...]",
		Short: "Run the whole workflow for an idea",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger(false)
			if err != nil {
				return err
			}
			a, err := ctx.newApp(cmd.Context(), logger, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			idea, err := readIdea(cmd, args, ideaFile)
			if err != nil {
				return err
			}
			if err := a.runner.Analyze(cmd.Context(), idea); err != nil {
				return stepError(types.StepAnalyze, err)
			}

			// Later steps are independent; keep going so the summary shows
			// every outcome
			for _, s := range []types.Step{types.StepSimulate, types.StepBrochure, types.StepReport, types.StepLinkedIn} {
				_ = a.runner.Run(cmd.Context(), s)
			}
			if publish {
				_ = a.runner.Autopost(cmd.Context())
			}

			snap := a.store.Snapshot()
			if out.json {
				return writeJSON(cmd, snap)
			}
			printSummary(cmd.OutOrStdout(), snap)

			for _, st := range snap.Steps {
				if st.Status == types.StatusError {
					return fmt.Errorf("one or more steps failed")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&out.json, "json", false, "Print the workflow state as JSON")
	cmd.Flags().StringVarP(&ideaFile, "file", "f", "", "Read the idea from a file (- for stdin)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish the LinkedIn post at the end")
	return cmd
}

// readIdea takes the idea from args, or from file when set
func readIdea(cmd *cobra.Command, args []string, file string) (string, error) {
	var idea string
	switch {
	case file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read idea from stdin: %w", err)
		}
		idea = string(data)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read idea: %w", err)
		}
		idea = string(data)
	default:
		idea = strings.Join(args, " ")
	}

	idea = strings.TrimSpace(idea)
	if idea == "" {
		return "", workflow.ErrMissingIdea
	}
	return idea, nil
}

func stepError(step types.Step, err error) error {
	if errors.Is(err, workflow.ErrMissingIdea) || errors.Is(err, workflow.ErrMissingAnalysis) || errors.Is(err, workflow.ErrMissingPost) {
		return err
	}
	return fmt.Errorf("%s failed: %w", strings.ToLower(step.Label()), err)
}

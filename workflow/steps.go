package workflow

import (
	"context"
	"strings"

	"cofoundr/types"
)

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// Analyze stores the idea and submits it for analysis
func (r *Runner) Analyze(ctx context.Context, idea string) error {
	if isBlank(idea) {
		r.notifier.Error(ErrMissingIdea.Error())
		return ErrMissingIdea
	}
	r.store.SetIdeaText(idea)

	return r.attempt(ctx, types.StepAnalyze, "Analysis complete! Your startup idea has been analyzed.", func(ctx context.Context) error {
		result, err := r.api.Analyze(ctx, strings.TrimSpace(idea))
		if err != nil {
			return err
		}
		r.store.SetAnalyzeResult(result)
		return nil
	})
}

// Simulate runs the market simulation for the stored analysis
func (r *Runner) Simulate(ctx context.Context) error {
	if err := r.guard(types.StepSimulate); err != nil {
		return err
	}
	analysis := r.store.AnalyzeResult()

	return r.attempt(ctx, types.StepSimulate, "", func(ctx context.Context) error {
		result, err := r.api.Simulate(ctx, analysis)
		if err != nil {
			return err
		}
		r.store.SetSimulateResult(result)
		return nil
	})
}

// SimulateIfNeeded runs the simulation when an analysis exists and no
// simulation has run or is running. It reports whether a run happened.
func (r *Runner) SimulateIfNeeded(ctx context.Context) (bool, error) {
	if r.store.AnalyzeResult() == nil || r.store.SimulateResult() != nil {
		return false, nil
	}
	switch r.store.Status(types.StepSimulate) {
	case types.StatusLoading, types.StatusDone:
		return false, nil
	}
	return true, r.Simulate(ctx)
}

// Brochure generates the brochure image for the stored idea
func (r *Runner) Brochure(ctx context.Context) error {
	if err := r.guard(types.StepBrochure); err != nil {
		return err
	}
	idea := r.store.IdeaText()

	return r.attempt(ctx, types.StepBrochure, "Brochure image generated successfully!", func(ctx context.Context) error {
		result, err := r.api.Image(ctx, idea)
		if err != nil {
			return err
		}
		r.store.SetBrochureImage(result)
		return nil
	})
}

// Report generates the PDF report for the stored analysis
func (r *Runner) Report(ctx context.Context) error {
	if err := r.guard(types.StepReport); err != nil {
		return err
	}
	analysis := r.store.AnalyzeResult()

	return r.attempt(ctx, types.StepReport, "PDF report generated successfully!", func(ctx context.Context) error {
		doc, err := r.api.Report(ctx, analysis)
		if err != nil {
			return err
		}
		r.store.SetReport(doc)
		return nil
	})
}

// LinkedIn drafts a LinkedIn post for the stored analysis
func (r *Runner) LinkedIn(ctx context.Context) error {
	if err := r.guard(types.StepLinkedIn); err != nil {
		return err
	}
	analysis := r.store.AnalyzeResult()

	return r.attempt(ctx, types.StepLinkedIn, "LinkedIn post generated!", func(ctx context.Context) error {
		result, err := r.api.LinkedIn(ctx, analysis)
		if err != nil {
			return err
		}
		r.store.SetLinkedInPost(result.Text())
		return nil
	})
}

// EditPost replaces the post text with the user's edit
func (r *Runner) EditPost(text string) {
	r.store.SetLinkedInPost(text)
}

// Autopost publishes the current post
func (r *Runner) Autopost(ctx context.Context) error {
	if err := r.guard(types.StepAutoPost); err != nil {
		return err
	}
	post := r.store.LinkedInPost()

	return r.attempt(ctx, types.StepAutoPost, "Successfully posted to LinkedIn!", func(ctx context.Context) error {
		result, err := r.api.Autopost(ctx, post)
		if err != nil {
			return err
		}
		r.store.SetAutopostResult(result)
		return nil
	})
}

// RefreshMetrics fetches the service metrics
func (r *Runner) RefreshMetrics(ctx context.Context) error {
	return r.attempt(ctx, types.StepMetrics, "", func(ctx context.Context) error {
		metrics, err := r.api.Metrics(ctx)
		if err != nil {
			return err
		}
		r.store.SetMetrics(metrics)
		return nil
	})
}

package workflow

import (
	"context"
	"errors"
	"fmt"

	"cofoundr/client"
	"cofoundr/state"
	"cofoundr/types"

	"go.uber.org/zap"
)

// Guard failures. They are reported to the user but leave the step status
// untouched.
var (
	ErrMissingIdea     = errors.New("please enter a startup idea first")
	ErrMissingAnalysis = errors.New("please analyze an idea first")
	ErrMissingPost     = errors.New("please generate a LinkedIn post first")
	ErrUnknownStep     = errors.New("unknown step")
)

// API is the subset of the service client the workflow needs
type API interface {
	Analyze(ctx context.Context, idea string) (*types.AnalyzeResult, error)
	Simulate(ctx context.Context, analysis *types.AnalyzeResult) (*types.SimulateResult, error)
	Image(ctx context.Context, idea string) (*types.ImageResult, error)
	Report(ctx context.Context, analysis *types.AnalyzeResult) (*types.Document, error)
	LinkedIn(ctx context.Context, analysis *types.AnalyzeResult) (*types.LinkedInResult, error)
	Autopost(ctx context.Context, post string) (*types.AutopostResult, error)
	Metrics(ctx context.Context) (*types.Metrics, error)
}

// Notifier shows transient success and failure messages
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier reports notifications to a zap logger
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Success(msg string) { n.Logger.Info(msg) }

func (n LogNotifier) Error(msg string) { n.Logger.Warn(msg) }

// Runner executes workflow steps against the service and records every
// attempt in the store
type Runner struct {
	api      API
	store    *state.Store
	notifier Notifier
	logger   *zap.Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithNotifier sets where success and failure messages go
func WithNotifier(n Notifier) Option {
	return func(r *Runner) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithLogger sets the runner logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a new workflow runner
func NewRunner(api API, store *state.Store, opts ...Option) *Runner {
	r := &Runner{
		api:    api,
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.notifier == nil {
		r.notifier = LogNotifier{Logger: r.logger}
	}
	return r
}

// Store returns the store the runner writes to
func (r *Runner) Store() *state.Store { return r.store }

// Run executes step by name
func (r *Runner) Run(ctx context.Context, step types.Step) error {
	switch step {
	case types.StepAnalyze:
		return r.Analyze(ctx, r.store.IdeaText())
	case types.StepSimulate:
		return r.Simulate(ctx)
	case types.StepBrochure:
		return r.Brochure(ctx)
	case types.StepReport:
		return r.Report(ctx)
	case types.StepLinkedIn:
		return r.LinkedIn(ctx)
	case types.StepAutoPost:
		return r.Autopost(ctx)
	case types.StepMetrics:
		return r.RefreshMetrics(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
}

// Check evaluates the guard of step against the current state without
// running it
func (r *Runner) Check(step types.Step) error {
	switch step {
	case types.StepAnalyze, types.StepBrochure:
		if isBlank(r.store.IdeaText()) {
			return ErrMissingIdea
		}
	case types.StepSimulate, types.StepReport, types.StepLinkedIn:
		if r.store.AnalyzeResult() == nil {
			return ErrMissingAnalysis
		}
	case types.StepAutoPost:
		if isBlank(r.store.LinkedInPost()) {
			return ErrMissingPost
		}
	case types.StepMetrics:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
	return nil
}

// guard rejects a step whose precondition does not hold
func (r *Runner) guard(step types.Step) error {
	if err := r.Check(step); err != nil {
		r.notifier.Error(err.Error())
		r.logger.Debug("step guard rejected", zap.String("step", string(step)), zap.Error(err))
		return err
	}
	return nil
}

// attempt runs call with the loading -> done|error sequence. call stores its
// own result; on failure the previous result is left in place.
func (r *Runner) attempt(ctx context.Context, step types.Step, success string, call func(context.Context) error) error {
	r.store.Begin(step)
	r.store.AddLog(step, fmt.Sprintf("%s started", step.Label()))
	r.logger.Info("step started", zap.String("step", string(step)))

	if err := call(ctx); err != nil {
		msg := client.Message(err)
		r.store.Fail(step, msg)
		r.store.AddLog(step, fmt.Sprintf("%s failed: %s", step.Label(), msg))
		r.logger.Warn("step failed", zap.String("step", string(step)), zap.Error(err))
		r.notifier.Error(msg)
		return err
	}

	r.store.Finish(step)
	r.store.AddLog(step, fmt.Sprintf("%s complete", step.Label()))
	r.logger.Info("step complete", zap.String("step", string(step)))
	if success != "" {
		r.notifier.Success(success)
	}
	return nil
}

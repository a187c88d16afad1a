package tui

import (
	"context"
	"time"

	"cofoundr/poller"
	"cofoundr/state"
	"cofoundr/types"
	"cofoundr/workflow"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const wordWrap = 80

// pages are shown in workflow order, one per step
var pages = types.Steps

// Options tunes the terminal UI
type Options struct {
	PollInterval time.Duration
	Logger       *zap.Logger
}

// Model is the terminal front-end over one workflow store
type Model struct {
	ctx    context.Context
	runner *workflow.Runner
	store  *state.Store
	bridge *Bridge
	logger *zap.Logger

	unwatch    func()
	poller     *poller.Poller
	pollHandle *poller.Handle

	// Local UI state (synced from the store)
	page     int
	snapshot state.Snapshot
	toasts   []toast
	nextID   int
	editing  bool
	width    int
	idea     textarea.Model
	post     textarea.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
}

// NewModel creates a model driving runner. bridge must be the notifier
// runner was built with.
func NewModel(ctx context.Context, runner *workflow.Runner, bridge *Bridge, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	idea := textarea.New()
	idea.Placeholder = "e.g. An AI meal planner that builds grocery lists from what is already in your fridge"
	idea.SetWidth(wordWrap)
	idea.SetHeight(5)
	idea.CharLimit = 2000
	idea.Focus()

	post := textarea.New()
	post.SetWidth(wordWrap)
	post.SetHeight(10)
	post.CharLimit = 3000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = LoadingStyle

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		logger.Warn("markdown renderer unavailable", zap.Error(err))
		renderer = nil
	}

	store := runner.Store()
	fetch := func(ctx context.Context) {
		_ = runner.RefreshMetrics(ctx)
	}

	return Model{
		ctx:      ctx,
		runner:   runner,
		store:    store,
		bridge:   bridge,
		logger:   logger,
		unwatch:  bridge.Watch(store),
		poller:   poller.New(fetch, poller.WithInterval(opts.PollInterval), poller.WithLogger(logger)),
		snapshot: store.Snapshot(),
		idea:     idea,
		post:     post,
		spinner:  sp,
		renderer: renderer,
		width:    wordWrap,
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.bridge.next(),
	)
}

// Close stops the metrics poller and detaches from the store
func (m Model) Close() {
	if m.pollHandle != nil {
		m.pollHandle.Stop()
	}
	if m.unwatch != nil {
		m.unwatch()
	}
}

// Page returns the step whose page is shown
func (m Model) Page() types.Step { return pages[m.page] }

// Polling reports whether the metrics poller is running
func (m Model) Polling() bool { return m.pollHandle != nil }

// renderMarkdown renders md with glamour, falling back to plain text
func (m Model) renderMarkdown(md string) string {
	if m.renderer == nil {
		return lipgloss.NewStyle().Width(wordWrap).Render(md)
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

package tui

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"cofoundr/state"
	"cofoundr/types"
	"cofoundr/workflow"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	metricsCalls atomic.Int32
}

func (s *stubAPI) Analyze(_ context.Context, idea string) (*types.AnalyzeResult, error) {
	return &types.AnalyzeResult{BusinessAnalysis: "analysis of " + idea}, nil
}

func (s *stubAPI) Simulate(context.Context, *types.AnalyzeResult) (*types.SimulateResult, error) {
	return &types.SimulateResult{Summary: "sim"}, nil
}

func (s *stubAPI) Image(context.Context, string) (*types.ImageResult, error) {
	return &types.ImageResult{Kind: types.ImageURL, URL: "https://cdn.test/b.png"}, nil
}

func (s *stubAPI) Report(context.Context, *types.AnalyzeResult) (*types.Document, error) {
	return &types.Document{Name: "r.pdf", Handle: "file:///tmp/r.pdf"}, nil
}

func (s *stubAPI) LinkedIn(context.Context, *types.AnalyzeResult) (*types.LinkedInResult, error) {
	post := "Generated post"
	return &types.LinkedInResult{Post: &post}, nil
}

func (s *stubAPI) Autopost(context.Context, string) (*types.AutopostResult, error) {
	return &types.AutopostResult{Message: "posted"}, nil
}

func (s *stubAPI) Metrics(context.Context) (*types.Metrics, error) {
	s.metricsCalls.Add(1)
	return types.DecodeMetrics(map[string]any{"agent_executions": float64(7)})
}

func newTestModel(t *testing.T) (Model, *stubAPI, *state.Store) {
	t.Helper()
	api := &stubAPI{}
	store := state.NewStore()
	bridge := NewBridge()
	runner := workflow.NewRunner(api, store, workflow.WithNotifier(bridge))
	m := NewModel(context.Background(), runner, bridge, Options{PollInterval: time.Hour})
	t.Cleanup(m.Close)
	return m, api, store
}

func press(t *testing.T, m Model, key tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func TestPageSwitchingWraps(t *testing.T) {
	m, _, _ := newTestModel(t)
	assert.Equal(t, types.StepAnalyze, m.Page())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, types.StepSimulate, m.Page())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, types.StepMetrics, m.Page())
	require.True(t, m.Polling())
	m.Close()
}

func TestMetricsPollerFollowsPage(t *testing.T) {
	m, api, store := newTestModel(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, types.StepMetrics, m.Page())
	require.True(t, m.Polling())
	handle := m.pollHandle

	require.Eventually(t, func() bool { return api.metricsCalls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return store.Status(types.StepMetrics) == types.StatusDone }, 2*time.Second, 5*time.Millisecond)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, types.StepAnalyze, m.Page())
	assert.False(t, m.Polling())
	require.NotNil(t, cmd)

	handle.Stop()
	select {
	case <-handle.Done():
	default:
		t.Fatal("poller handle should be stopped")
	}
	assert.Equal(t, int32(1), api.metricsCalls.Load())
}

func TestToastsExpire(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = send(t, m, ToastMsg{Kind: ToastSuccess, Text: "first"})
	m = send(t, m, ToastMsg{Kind: ToastError, Text: "second"})
	require.Len(t, m.toasts, 2)
	assert.Contains(t, m.View(), "second")

	m = send(t, m, toastExpiredMsg{ID: 1})
	require.Len(t, m.toasts, 1)
	assert.Equal(t, "second", m.toasts[0].text)
	assert.NotContains(t, m.View(), "first")
}

func TestEditPostFlow(t *testing.T) {
	m, _, store := newTestModel(t)
	store.SetLinkedInPost("draft")

	for m.Page() != types.StepLinkedIn {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	require.True(t, m.editing)
	assert.Equal(t, "draft", m.post.Value())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, types.StepLinkedIn, m.Page(), "tab does not switch pages while editing")

	m.post.SetValue("edited")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.editing)
	assert.Equal(t, "edited", store.LinkedInPost())
}

func TestStepFinishedSyncsPost(t *testing.T) {
	m, _, store := newTestModel(t)
	store.SetAnalyzeResult(&types.AnalyzeResult{BusinessAnalysis: "b"})

	for m.Page() != types.StepLinkedIn {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	m = send(t, m, cmd())

	assert.Equal(t, "Generated post", store.LinkedInPost())
	assert.Equal(t, "Generated post", m.post.Value())
	assert.Equal(t, types.StatusDone, m.snapshot.Step(types.StepLinkedIn).Status)
}

func TestSubmitIdeaFromAnalyzePage(t *testing.T) {
	m, _, store := newTestModel(t)
	m.idea.SetValue("AI tutor")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	msg, ok := cmd().(StepFinishedMsg)
	require.True(t, ok)
	assert.NoError(t, msg.Err)

	m = send(t, m, msg)
	assert.Equal(t, "analysis of AI tutor", store.AnalyzeResult().BusinessAnalysis)
	assert.Equal(t, types.StatusDone, m.snapshot.Step(types.StepAnalyze).Status)
}

func TestQuitKeys(t *testing.T) {
	m, _, _ := newTestModel(t)

	typed, _ := press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.Equal(t, "q", typed.idea.Value(), "q types into the idea on the analyze page")

	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}

func TestBridgeDeliversChangesAndToasts(t *testing.T) {
	store := state.NewStore()
	b := NewBridge()
	unwatch := b.Watch(store)
	defer unwatch()

	b.Error("boom")
	assert.Equal(t, ToastMsg{Kind: ToastError, Text: "boom"}, b.next()())

	store.SetIdeaText("a")
	store.SetIdeaText("b")
	assert.Equal(t, StoreChangedMsg{}, b.next()())

	select {
	case <-b.changed:
		t.Fatal("changes should be coalesced")
	default:
	}
}

func TestMetricsViewShowsFixedCards(t *testing.T) {
	m, _, store := newTestModel(t)
	metrics, err := types.DecodeMetrics(map[string]any{
		"agent_executions":   float64(7),
		"system_performance": "98%",
		"uptime_hours":       float64(12),
	})
	require.NoError(t, err)
	store.SetMetrics(metrics)

	m.page = len(pages) - 1
	require.Equal(t, types.StepMetrics, m.Page())
	m = send(t, m, StoreChangedMsg{})

	view := m.View()
	assert.Contains(t, view, "Agent Executions")
	assert.Contains(t, view, "98%")
	assert.Contains(t, view, "Request Count")
	assert.Contains(t, view, "—", "missing counters fall back to a dash")
	assert.Contains(t, view, "uptime hours")
	assert.Less(t, strings.Index(view, "Request Count"), strings.Index(view, "uptime hours"))
}

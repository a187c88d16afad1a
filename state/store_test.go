package state

import (
	"fmt"
	"sync"
	"testing"

	"cofoundr/types"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreStartsIdle(t *testing.T) {
	s := NewStore()
	for _, step := range types.Steps {
		assert.Equal(t, types.StatusIdle, s.Status(step), step)
		assert.Empty(t, s.Error(step), step)
	}
	assert.Empty(t, s.IdeaText())
	assert.Nil(t, s.AnalyzeResult())
	assert.Empty(t, s.LinkedInPost())
}

func TestSettersAreIndependent(t *testing.T) {
	s := NewStore()
	analysis := &types.AnalyzeResult{BusinessAnalysis: "b"}
	s.SetAnalyzeResult(analysis)

	s.SetStatus(types.StepAnalyze, types.StatusError)
	assert.Same(t, analysis, s.AnalyzeResult(), "status change must not touch the result")
	assert.Empty(t, s.Error(types.StepAnalyze), "status change must not touch the error")

	s.SetError(types.StepAnalyze, "boom")
	assert.Equal(t, types.StatusError, s.Status(types.StepAnalyze))

	s.SetStatus(types.StepSimulate, types.StatusLoading)
	assert.Equal(t, types.StatusError, s.Status(types.StepAnalyze), "steps do not share status")
	assert.Equal(t, "boom", s.Error(types.StepAnalyze))
}

func TestTransitions(t *testing.T) {
	s := NewStore()
	step := types.StepReport
	doc := &types.Document{Name: "r.pdf"}

	s.Fail(step, "first failure")
	assert.Equal(t, types.StatusError, s.Status(step))
	assert.Equal(t, "first failure", s.Error(step))

	s.Begin(step)
	assert.Equal(t, types.StatusLoading, s.Status(step))
	assert.Empty(t, s.Error(step), "loading clears the error")

	s.SetReport(doc)
	s.Finish(step)
	assert.Equal(t, types.StatusDone, s.Status(step))
	assert.Same(t, doc, s.Report())

	s.Begin(step)
	s.Fail(step, "second failure")
	assert.Same(t, doc, s.Report(), "a failure keeps the previous result")
	assert.Equal(t, "second failure", s.Error(step))
}

func TestBeginNeverShowsLoadingWithStaleError(t *testing.T) {
	s := NewStore()
	step := types.StepAnalyze
	s.Fail(step, "old failure")

	var seen []string
	s.Subscribe(func(c Change) {
		if c.Step == step {
			seen = append(seen, fmt.Sprintf("%s/%s", s.Status(step), s.Error(step)))
		}
	})
	s.Begin(step)

	assert.Equal(t, []string{"error/", "loading/"}, seen)
}

func TestEveryStepResultRoundTrips(t *testing.T) {
	s := NewStore()
	success := true

	analysis := &types.AnalyzeResult{MarketAnalysis: "m"}
	sim := &types.SimulateResult{Summary: "s"}
	img := &types.ImageResult{Kind: types.ImageURL, URL: "http://x/y.png"}
	doc := &types.Document{Handle: "file:///tmp/r.pdf"}
	ack := &types.AutopostResult{Success: &success}
	metrics, err := types.DecodeMetrics(map[string]any{"agent_executions": float64(1)})
	require.NoError(t, err)

	s.SetIdeaText("idea")
	s.SetAnalyzeResult(analysis)
	s.SetSimulateResult(sim)
	s.SetBrochureImage(img)
	s.SetReport(doc)
	s.SetLinkedInPost("post")
	s.SetAutopostResult(ack)
	s.SetMetrics(metrics)

	assert.Equal(t, "idea", s.IdeaText())
	assert.Same(t, analysis, s.AnalyzeResult())
	assert.Same(t, sim, s.SimulateResult())
	assert.Same(t, img, s.BrochureImage())
	assert.Same(t, doc, s.Report())
	assert.Equal(t, "post", s.LinkedInPost())
	assert.Same(t, ack, s.AutopostResult())
	assert.Same(t, metrics, s.Metrics())

	s.SetAnalyzeResult(nil)
	assert.Nil(t, s.AnalyzeResult())
}

func TestObserversCalledInOrderAfterEachMutation(t *testing.T) {
	s := NewStore()

	var calls []string
	s.Subscribe(func(c Change) { calls = append(calls, fmt.Sprintf("a:%s:%s", c.Field, c.Step)) })
	s.Subscribe(func(c Change) { calls = append(calls, fmt.Sprintf("b:%s:%s", c.Field, c.Step)) })

	s.SetStatus(types.StepAnalyze, types.StatusLoading)
	s.SetIdeaText("x")

	assert.Equal(t, []string{
		"a:status:analyze", "b:status:analyze",
		"a:idea:", "b:idea:",
	}, calls)
}

func TestObserverCanReadStore(t *testing.T) {
	s := NewStore()
	var seen types.Status
	s.Subscribe(func(c Change) {
		seen = s.Status(c.Step)
	})

	s.SetStatus(types.StepBrochure, types.StatusDone)
	assert.Equal(t, types.StatusDone, seen)
}

func TestUnsubscribe(t *testing.T) {
	s := NewStore()
	count := 0
	unsubscribe := s.Subscribe(func(Change) { count++ })

	s.SetLinkedInPost("one")
	unsubscribe()
	unsubscribe()
	s.SetLinkedInPost("two")

	assert.Equal(t, 1, count)
}

func TestLogsAreBounded(t *testing.T) {
	s := NewStore()
	for i := 0; i < DefaultMaxLogs+10; i++ {
		s.AddLog(types.StepMetrics, fmt.Sprintf("entry %d", i))
	}

	logs := s.Logs()
	require.Len(t, logs, DefaultMaxLogs)
	assert.Equal(t, "entry 10", logs[0].Message)
	assert.Equal(t, fmt.Sprintf("entry %d", DefaultMaxLogs+9), logs[len(logs)-1].Message)

	logs[0].Message = "mutated"
	assert.Equal(t, "entry 10", s.Logs()[0].Message, "Logs returns a copy")
}

func TestSnapshot(t *testing.T) {
	s := NewStore()
	s.SetIdeaText("idea")
	s.Begin(types.StepAnalyze)
	s.Fail(types.StepSimulate, "nope")
	s.SetLinkedInPost("post")
	s.AddLog(types.StepAnalyze, "Analyze started")

	snap := s.Snapshot()

	want := []StepSnapshot{
		{Step: types.StepAnalyze, Label: "Analyze", Status: types.StatusLoading},
		{Step: types.StepSimulate, Label: "Simulate", Status: types.StatusError, Error: "nope"},
		{Step: types.StepBrochure, Label: "Brochure", Status: types.StatusIdle},
		{Step: types.StepReport, Label: "Report", Status: types.StatusIdle},
		{Step: types.StepLinkedIn, Label: "LinkedIn", Status: types.StatusIdle},
		{Step: types.StepAutoPost, Label: "Auto-Post", Status: types.StatusIdle},
		{Step: types.StepMetrics, Label: "Metrics", Status: types.StatusIdle},
	}
	if diff := cmp.Diff(want, snap.Steps); diff != "" {
		t.Errorf("snapshot steps mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "idea", snap.IdeaText)
	assert.Equal(t, "post", snap.LinkedInPost)
	assert.Equal(t, types.StatusError, snap.Step(types.StepSimulate).Status)

	wantLogs := []types.LogEntry{{Step: types.StepAnalyze, Message: "Analyze started"}}
	if diff := cmp.Diff(wantLogs, snap.Logs, cmpopts.IgnoreFields(types.LogEntry{}, "Timestamp")); diff != "" {
		t.Errorf("snapshot logs mismatch (-want +got):\n%s", diff)
	}

	s.SetStatus(types.StepAnalyze, types.StatusDone)
	assert.Equal(t, types.StatusLoading, snap.Step(types.StepAnalyze).Status, "snapshot is a copy")
}

func TestConcurrentMutations(t *testing.T) {
	s := NewStore()
	s.Subscribe(func(c Change) { _ = s.Snapshot() })

	var wg sync.WaitGroup
	for _, step := range types.Steps {
		wg.Add(1)
		go func(step types.Step) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Begin(step)
				s.AddLog(step, "tick")
				s.Finish(step)
			}
		}(step)
	}
	wg.Wait()

	for _, step := range types.Steps {
		assert.Equal(t, types.StatusDone, s.Status(step))
	}
}

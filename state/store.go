// Package state holds the workflow state shared by every view: the idea
// text and, per step, the last result, the attempt status and the last
// error message.
//
// Setters are plain assignments. They do not validate, derive, or touch any
// other field; callers sequence loading -> done|error themselves (Begin,
// Finish and Fail bundle the usual pairs). Every mutation is followed by a
// synchronous notification of all observers, in subscription order, after
// the store lock has been released so observers may read the store.
package state

import (
	"sync"
	"time"

	"cofoundr/types"
)

// DefaultMaxLogs bounds the activity log
const DefaultMaxLogs = 50

// Field names the part of the state a Change touched
type Field string

const (
	FieldIdea   Field = "idea"
	FieldResult Field = "result"
	FieldStatus Field = "status"
	FieldError  Field = "error"
	FieldLog    Field = "log"
)

// Change describes a single mutation
type Change struct {
	Field Field
	Step  types.Step
}

// Observer is called after every mutation
type Observer func(Change)

type stepState struct {
	status types.Status
	err    string
}

type subscription struct {
	id int
	fn Observer
}

// Store holds the complete workflow state with thread-safe access
type Store struct {
	mu sync.RWMutex

	ideaText string

	// Results
	analyze      *types.AnalyzeResult
	simulate     *types.SimulateResult
	brochure     *types.ImageResult
	report       *types.Document
	linkedinPost string
	autopost     *types.AutopostResult
	metrics      *types.Metrics

	steps map[types.Step]*stepState

	// Logs (ring buffer)
	logs    []types.LogEntry
	maxLogs int

	obsMu     sync.Mutex
	observers []subscription
	nextID    int
}

// NewStore creates a store with every step idle
func NewStore() *Store {
	s := &Store{
		steps:   make(map[types.Step]*stepState, len(types.Steps)),
		logs:    make([]types.LogEntry, 0),
		maxLogs: DefaultMaxLogs,
	}
	for _, step := range types.Steps {
		s.steps[step] = &stepState{status: types.StatusIdle}
	}
	return s
}

// Subscribe registers fn for every subsequent mutation and returns a
// function that removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			defer s.obsMu.Unlock()
			for i, sub := range s.observers {
				if sub.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) notify(c Change) {
	s.obsMu.Lock()
	subs := append([]subscription(nil), s.observers...)
	s.obsMu.Unlock()

	for _, sub := range subs {
		sub.fn(c)
	}
}

// step returns the entry for step, creating it if needed (must hold lock)
func (s *Store) step(step types.Step) *stepState {
	st, ok := s.steps[step]
	if !ok {
		st = &stepState{status: types.StatusIdle}
		s.steps[step] = st
	}
	return st
}

// IdeaText returns the last submitted idea
func (s *Store) IdeaText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ideaText
}

// SetIdeaText sets the idea text
func (s *Store) SetIdeaText(text string) {
	s.mu.Lock()
	s.ideaText = text
	s.mu.Unlock()
	s.notify(Change{Field: FieldIdea})
}

// Status returns the attempt status of step
func (s *Store) Status(step types.Step) types.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.steps[step]; ok {
		return st.status
	}
	return types.StatusIdle
}

// SetStatus sets the attempt status of step
func (s *Store) SetStatus(step types.Step, status types.Status) {
	s.mu.Lock()
	s.step(step).status = status
	s.mu.Unlock()
	s.notify(Change{Field: FieldStatus, Step: step})
}

// Error returns the last failure message of step, empty when none
func (s *Store) Error(step types.Step) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.steps[step]; ok {
		return st.err
	}
	return ""
}

// SetError sets the failure message of step; empty clears it
func (s *Store) SetError(step types.Step, msg string) {
	s.mu.Lock()
	s.step(step).err = msg
	s.mu.Unlock()
	s.notify(Change{Field: FieldError, Step: step})
}

// Begin moves step to loading and clears its error. The result is kept.
func (s *Store) Begin(step types.Step) {
	s.SetError(step, "")
	s.SetStatus(step, types.StatusLoading)
}

// Finish moves step to done and clears its error. Callers store the new
// result before calling Finish.
func (s *Store) Finish(step types.Step) {
	s.SetError(step, "")
	s.SetStatus(step, types.StatusDone)
}

// Fail records msg and moves step to error. The previous result is kept.
func (s *Store) Fail(step types.Step, msg string) {
	s.SetError(step, msg)
	s.SetStatus(step, types.StatusError)
}

// AnalyzeResult returns the last analysis
func (s *Store) AnalyzeResult() *types.AnalyzeResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analyze
}

// SetAnalyzeResult sets the analysis result
func (s *Store) SetAnalyzeResult(r *types.AnalyzeResult) {
	s.mu.Lock()
	s.analyze = r
	s.mu.Unlock()
	s.notify(Change{Field: FieldResult, Step: types.StepAnalyze})
}

// SimulateResult returns the last simulation
func (s *Store) SimulateResult() *types.SimulateResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.simulate
}

// SetSimulateResult sets the simulation result
func (s *Store) SetSimulateResult(r *types.SimulateResult) {
	s.mu.Lock()
	s.simulate = r
	s.mu.Unlock()
	s.notify(Change{Field: FieldResult, Step: types.StepSimulate})
}

// BrochureImage returns the last brochure image
func (s *Store) BrochureImage() *types.ImageResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.brochure
}

// SetBrochureImage sets the brochure image
func (s *Store) SetBrochureImage(r *types.ImageResult) {
	s.mu.Lock()
	s.brochure = r
	s.mu.Unlock()
	s.notify(Change{Field: FieldResult, Step: types.StepBrochure})
}

// Report returns the last generated report
func (s *Store) Report() *types.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// SetReport sets the generated report
func (s *Store) SetReport(d *types.Document) {
	s.mu.Lock()
	s.report = d
	s.mu.Unlock()
	s.notify(Change{Field: FieldResult, Step: types.StepReport})
}

// LinkedInPost returns the current post text
func (s *Store) LinkedInPost() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linkedinPost
}

// SetLinkedInPost sets the post text
func (s *Store) SetLinkedInPost(post string) {
	s.mu.Lock()
	s.linkedinPost = post
	s.mu.Unlock()
	s.notify(Change{Field: FieldResult, Step: types.StepLinkedIn})
}

// AutopostResult returns the last publish acknowledgement
func (s *Store) AutopostResult() *types.AutopostResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autopost
}

// SetAutopostResult sets the publish acknowledgement
func (s *Store) SetAutopostResult(r *types.AutopostResult) {
	s.mu.Lock()
	s.autopost = r
	s.mu.Unlock()
	s.notify(Change{Field: FieldResult, Step: types.StepAutoPost})
}

// Metrics returns the last fetched metrics
func (s *Store) Metrics() *types.Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// SetMetrics sets the fetched metrics
func (s *Store) SetMetrics(m *types.Metrics) {
	s.mu.Lock()
	s.metrics = m
	s.mu.Unlock()
	s.notify(Change{Field: FieldResult, Step: types.StepMetrics})
}

// AddLog appends an activity entry, dropping the oldest beyond the bound
func (s *Store) AddLog(step types.Step, message string) {
	s.mu.Lock()
	s.logs = append(s.logs, types.LogEntry{
		Timestamp: time.Now(),
		Step:      step,
		Message:   message,
	})
	if len(s.logs) > s.maxLogs {
		s.logs = s.logs[len(s.logs)-s.maxLogs:]
	}
	s.mu.Unlock()
	s.notify(Change{Field: FieldLog, Step: step})
}

// Logs returns a copy of the activity log
func (s *Store) Logs() []types.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.LogEntry{}, s.logs...)
}

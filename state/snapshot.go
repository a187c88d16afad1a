package state

import "cofoundr/types"

// StepSnapshot is the status of one step at snapshot time
type StepSnapshot struct {
	Step   types.Step   `json:"step"`
	Label  string       `json:"label"`
	Status types.Status `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// Snapshot is a point-in-time copy of the whole workflow state
type Snapshot struct {
	IdeaText       string                `json:"idea_text"`
	Steps          []StepSnapshot        `json:"steps"`
	AnalyzeResult  *types.AnalyzeResult  `json:"analyze_result,omitempty"`
	SimulateResult *types.SimulateResult `json:"simulate_result,omitempty"`
	BrochureImage  *types.ImageResult    `json:"brochure_image,omitempty"`
	Report         *types.Document       `json:"report,omitempty"`
	LinkedInPost   string                `json:"linkedin_post"`
	AutopostResult *types.AutopostResult `json:"autopost_result,omitempty"`
	Metrics        *types.Metrics        `json:"metrics,omitempty"`
	Logs           []types.LogEntry      `json:"logs"`
}

// Snapshot returns a consistent copy of the current state (thread-safe).
// Result values are shared pointers and must be treated as read-only.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	steps := make([]StepSnapshot, 0, len(types.Steps))
	for _, step := range types.Steps {
		st := s.steps[step]
		steps = append(steps, StepSnapshot{
			Step:   step,
			Label:  step.Label(),
			Status: st.status,
			Error:  st.err,
		})
	}

	return Snapshot{
		IdeaText:       s.ideaText,
		Steps:          steps,
		AnalyzeResult:  s.analyze,
		SimulateResult: s.simulate,
		BrochureImage:  s.brochure,
		Report:         s.report,
		LinkedInPost:   s.linkedinPost,
		AutopostResult: s.autopost,
		Metrics:        s.metrics,
		Logs:           append([]types.LogEntry{}, s.logs...), // Copy slice
	}
}

// Step returns the snapshot entry for step
func (s Snapshot) Step(step types.Step) StepSnapshot {
	for _, st := range s.Steps {
		if st.Step == step {
			return st
		}
	}
	return StepSnapshot{Step: step, Label: step.Label(), Status: types.StatusIdle}
}

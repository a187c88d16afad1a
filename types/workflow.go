package types

import "time"

// Step identifies one stage of the idea-to-post pipeline
type Step string

const (
	StepAnalyze  Step = "analyze"
	StepSimulate Step = "simulate"
	StepBrochure Step = "brochure"
	StepReport   Step = "report"
	StepLinkedIn Step = "linkedin"
	StepAutoPost Step = "autopost"
	StepMetrics  Step = "metrics"
)

// Steps lists every step in workflow order
var Steps = []Step{
	StepAnalyze,
	StepSimulate,
	StepBrochure,
	StepReport,
	StepLinkedIn,
	StepAutoPost,
	StepMetrics,
}

var stepLabels = map[Step]string{
	StepAnalyze:  "Analyze",
	StepSimulate: "Simulate",
	StepBrochure: "Brochure",
	StepReport:   "Report",
	StepLinkedIn: "LinkedIn",
	StepAutoPost: "Auto-Post",
	StepMetrics:  "Metrics",
}

// Label returns the display name of the step
func (s Step) Label() string {
	if label, ok := stepLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseStep resolves a step name, reporting whether it is known
func ParseStep(name string) (Step, bool) {
	step := Step(name)
	_, ok := stepLabels[step]
	return step, ok
}

// Status is the attempt state of a single step
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// LogEntry represents a single activity line with timestamp
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Step      Step      `json:"step,omitempty"`
	Message   string    `json:"message"`
}

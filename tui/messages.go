package tui

import "cofoundr/types"

// Messages for the tea program

// StoreChangedMsg is sent when the workflow store has been mutated
type StoreChangedMsg struct{}

// ToastMsg is sent when the workflow reports a success or failure
type ToastMsg struct {
	Kind ToastKind
	Text string
}

// toastExpiredMsg removes a toast once its lifetime is over
type toastExpiredMsg struct {
	ID int
}

// StepFinishedMsg is sent when a step command returns
type StepFinishedMsg struct {
	Step types.Step
	Err  error
}

// pollerStoppedMsg is sent once a metrics poller has fully stopped
type pollerStoppedMsg struct{}

// ToastKind selects the toast style
type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastError
)

type toast struct {
	id   int
	kind ToastKind
	text string
}

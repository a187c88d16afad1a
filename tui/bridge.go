package tui

import (
	"cofoundr/state"

	tea "github.com/charmbracelet/bubbletea"
)

const bridgeBuffer = 64

// Bridge carries store changes and notifications into the tea program.
// Store observers run synchronously inside mutations, some of which happen
// in Update itself, so sends never block: toasts are dropped when the
// buffer is full, and store changes are coalesced into a single pending
// refresh.
type Bridge struct {
	msgs    chan tea.Msg
	changed chan struct{}
}

// NewBridge creates an unconnected bridge
func NewBridge() *Bridge {
	return &Bridge{
		msgs:    make(chan tea.Msg, bridgeBuffer),
		changed: make(chan struct{}, 1),
	}
}

// Watch subscribes the bridge to store
func (b *Bridge) Watch(store *state.Store) (unsubscribe func()) {
	return store.Subscribe(func(state.Change) {
		select {
		case b.changed <- struct{}{}:
		default:
		}
	})
}

// Success implements workflow.Notifier
func (b *Bridge) Success(msg string) { b.send(ToastMsg{Kind: ToastSuccess, Text: msg}) }

// Error implements workflow.Notifier
func (b *Bridge) Error(msg string) { b.send(ToastMsg{Kind: ToastError, Text: msg}) }

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.msgs <- msg:
	default:
	}
}

// next blocks until the bridge has something for the program
func (b *Bridge) next() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.msgs:
			return msg
		case <-b.changed:
			return StoreChangedMsg{}
		}
	}
}

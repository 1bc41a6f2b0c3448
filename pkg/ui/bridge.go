package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// StateChangedMsg tells the chat model to take a fresh session snapshot
type StateChangedMsg struct{}

// AlertMsg shows a dismissable message
type AlertMsg struct {
	Text string
}

// ConfirmMsg asks a yes/no question. The model answers on Reply exactly once.
type ConfirmMsg struct {
	Question string
	Reply    chan<- bool
}

// Bridge connects a session controller running in tea commands to the
// program's event loop. It is the controller's Prompter and observer.
type Bridge struct {
	ctx context.Context

	mu   sync.RWMutex
	send func(tea.Msg)
}

func NewBridge(ctx context.Context) *Bridge {
	return &Bridge{ctx: ctx}
}

// Attach routes messages to p
func (b *Bridge) Attach(p *tea.Program) {
	b.AttachFunc(p.Send)
}

// AttachFunc routes messages to send
func (b *Bridge) AttachFunc(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

func (b *Bridge) deliver(msg tea.Msg) bool {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()
	if send == nil {
		return false
	}
	send(msg)
	return true
}

// Notify is the controller observer. Controller changes can originate inside
// Update, where a blocking Send would deadlock, so delivery is async.
func (b *Bridge) Notify() {
	go b.deliver(StateChangedMsg{})
}

func (b *Bridge) Alert(message string) {
	go b.deliver(AlertMsg{Text: message})
}

// Confirm blocks until the user answers or the context ends
func (b *Bridge) Confirm(question string) bool {
	reply := make(chan bool, 1)
	if !b.deliver(ConfirmMsg{Question: question, Reply: reply}) {
		return false
	}
	select {
	case answer := <-reply:
		return answer
	case <-b.ctx.Done():
		return false
	}
}

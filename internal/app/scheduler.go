package app

import tea "github.com/charmbracelet/bubbletea"

// idleMsg runs the work deferred during the previous update.
type idleMsg struct{}

// idleScheduler defers flow propagation until the program has finished
// handling the current event and rendered it. All calls happen on the
// bubbletea update goroutine.
type idleScheduler struct {
	queue []func()
	armed bool
}

// Defer queues fn for the next idle tick.
func (s *idleScheduler) Defer(fn func()) {
	s.queue = append(s.queue, fn)
}

// Pending returns the number of queued functions.
func (s *idleScheduler) Pending() int { return len(s.queue) }

// cmd arms the next idle tick if work is queued.
func (s *idleScheduler) cmd() tea.Cmd {
	if s.armed || len(s.queue) == 0 {
		return nil
	}
	s.armed = true
	return func() tea.Msg { return idleMsg{} }
}

// flush runs the queued functions. Work queued while flushing waits for
// the following tick.
func (s *idleScheduler) flush() {
	batch := s.queue
	s.queue = nil
	s.armed = false
	for _, fn := range batch {
		fn()
	}
}

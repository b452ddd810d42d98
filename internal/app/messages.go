package app

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/flowfiler/internal/dirmodel"
	"github.com/wilbur182/flowfiler/internal/drives"
	"github.com/wilbur182/flowfiler/internal/fileops"
)

// tickMsg expires toasts.
type tickMsg time.Time

// drivesMsg carries the mounted volumes.
type drivesMsg struct {
	drives []drives.Drive
	err    error
}

// dirsChangedMsg lists folders the watcher saw change.
type dirsChangedMsg []string

// opDoneMsg reports a finished file operation.
type opDoneMsg struct {
	verb   string
	result fileops.Result
	// dirs are the folders whose listings changed.
	dirs []string
	// clearClipboard is set when a cut was pasted.
	clearClipboard bool
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func loadDrivesCmd(list func(*slog.Logger) ([]drives.Drive, error), logger *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		ds, err := list(logger)
		return drivesMsg{drives: ds, err: err}
	}
}

// waitForChanges blocks on the watcher's next debounced batch.
func waitForChanges(w *dirmodel.Watcher) tea.Cmd {
	return func() tea.Msg {
		dirs, ok := <-w.Events()
		if !ok {
			return nil
		}
		return dirsChangedMsg(dirs)
	}
}

// runOp runs a file operation off the update goroutine. While one is in
// flight further operations are refused; finishOp releases the slot.
func (m *Model) runOp(verb string, dirs []string, clearClipboard bool, fn func() fileops.Result) tea.Cmd {
	if m.opBlocked() {
		return nil
	}
	m.busy = verb
	return func() tea.Msg {
		return opDoneMsg{verb: verb, result: fn(), dirs: dirs, clearClipboard: clearClipboard}
	}
}

// opBlocked reports, and tells the user, that a file operation is running.
func (m *Model) opBlocked() bool {
	if m.busy == "" {
		return false
	}
	m.ShowError(fmt.Errorf("%s still running", m.busy))
	return true
}

package flow

import (
	"log/slog"
	"os"

	"github.com/wilbur182/flowfiler/internal/dirmodel"
	"github.com/wilbur182/flowfiler/internal/projection"
)

// Scheduler runs deferred work on the next idle tick of the event loop.
type Scheduler interface {
	Defer(fn func())
}

// QueueScheduler collects deferred work until Flush is called.
type QueueScheduler struct {
	queue []func()
}

// Defer queues fn.
func (s *QueueScheduler) Defer(fn func()) {
	s.queue = append(s.queue, fn)
}

// Pending returns the number of queued functions.
func (s *QueueScheduler) Pending() int {
	return len(s.queue)
}

// Flush runs queued work, including work queued while flushing, and
// returns how many functions ran.
func (s *QueueScheduler) Flush() int {
	n := 0
	for len(s.queue) > 0 {
		fn := s.queue[0]
		s.queue = s.queue[1:]
		fn()
		n++
	}
	return n
}

// Observer receives upward notifications that the host UI reflects.
type Observer interface {
	// AddressChanged reports the path the address bar should show.
	AddressChanged(path string)
}

// ArtifactViewer is the preview surface. ShowArtifact is called with the
// settled single selection while Visible reports true.
type ArtifactViewer interface {
	Visible() bool
	ShowArtifact(path string)
}

// Env carries the collaborators shared by one tree of areas, lanes and
// panes.
type Env struct {
	Lister      dirmodel.Lister
	Scheduler   Scheduler
	Logger      *slog.Logger
	Observer    Observer
	Preview     ArtifactViewer
	WorkDir     string
	SearchDepth int

	DefaultMode       projection.DisplayMode
	DefaultShowHidden bool
}

// NewEnv returns an Env with a working directory and logger filled in.
func NewEnv(lister dirmodel.Lister, sched Scheduler, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = string(os.PathSeparator)
	}
	return &Env{
		Lister:    lister,
		Scheduler: sched,
		Logger:    logger,
		WorkDir:   wd,
	}
}

func (e *Env) addressChanged(path string) {
	if e.Observer != nil && path != "" {
		e.Observer.AddressChanged(path)
	}
}

func (e *Env) schedule(fn func()) {
	if e.Scheduler == nil {
		fn()
		return
	}
	e.Scheduler.Defer(fn)
}

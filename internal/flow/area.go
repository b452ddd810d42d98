package flow

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/wilbur182/flowfiler/internal/marks"
)

// Area is one tab's content: a vertical stack of lanes sharing a mark
// bucket.
type Area struct {
	id     string
	env    *Env
	lanes  []*Lane
	active *Pane
	lane   *Lane
	marks  *marks.Bucket
	unsub  func()
	added  uint64
}

// NewArea creates an area with one lane whose first pane shows the
// working directory.
func NewArea(env *Env) *Area {
	a := newArea(env)
	a.AddLane().DisplayPathInFirstPane(env.WorkDir)
	return a
}

func newArea(env *Env) *Area {
	a := &Area{
		id:    uuid.NewString(),
		env:   env,
		marks: marks.NewBucket(),
	}
	a.unsub = a.marks.Subscribe(a.repaint)
	return a
}

// ID returns the area's stable identifier.
func (a *Area) ID() string { return a.id }

// Env returns the collaborators the area was built with.
func (a *Area) Env() *Env { return a.env }

// Lanes returns the lanes top to bottom.
func (a *Area) Lanes() []*Lane { return a.lanes }

// Marks returns the area's mark bucket.
func (a *Area) Marks() *marks.Bucket { return a.marks }

// ActiveLane returns the active lane.
func (a *Area) ActiveLane() *Lane {
	if a.lane != nil && slices.Contains(a.lanes, a.lane) {
		return a.lane
	}
	if len(a.lanes) > 0 {
		return a.lanes[len(a.lanes)-1]
	}
	return nil
}

// ActivePane returns the pane that last received activation, falling back
// to the active lane's first pane.
func (a *Area) ActivePane() *Pane {
	if a.active != nil && a.owns(a.active) {
		return a.active
	}
	if l := a.ActiveLane(); l != nil {
		return l.First()
	}
	return nil
}

// Activate makes p the active pane and its lane the active lane.
func (a *Area) Activate(p *Pane) {
	if !a.owns(p) {
		return
	}
	a.active = p
	a.lane = p.lane
	if paths := p.Paths(); len(paths) > 0 {
		a.env.addressChanged(paths[0])
	}
}

func (a *Area) owns(p *Pane) bool {
	return p != nil && p.lane != nil && p.lane.area == a && slices.Contains(a.lanes, p.lane)
}

// Owns reports whether p belongs to this area.
func (a *Area) Owns(p *Pane) bool { return a.owns(p) }

// Panes returns every pane, lane by lane.
func (a *Area) Panes() []*Pane {
	var out []*Pane
	for _, l := range a.lanes {
		out = append(out, l.panes...)
	}
	return out
}

// FindPane looks a pane up by id.
func (a *Area) FindPane(id string) *Pane {
	for _, p := range a.Panes() {
		if p.id == id {
			return p
		}
	}
	return nil
}

// FindView looks a view up by id.
func (a *Area) FindView(id string) *SubView {
	for _, p := range a.Panes() {
		if v := p.View(id); v != nil {
			return v
		}
	}
	return nil
}

// AddLane appends a lane with one empty pane and makes it active.
func (a *Area) AddLane() *Lane {
	l := newLane(a, a.env)
	a.added++
	l.added = a.added
	a.lanes = append(a.lanes, l)
	a.lane = l
	a.active = l.First()
	a.equalize()
	return l
}

// RemoveLane removes l unless it is the last lane. When the active lane
// goes, the most recently added remaining lane becomes active.
func (a *Area) RemoveLane(l *Lane) {
	i := slices.Index(a.lanes, l)
	if i < 0 || len(a.lanes) <= 1 {
		return
	}
	a.lanes = slices.Delete(a.lanes, i, i+1)
	l.detach()
	a.equalize()

	if a.lane == l || a.lane == nil {
		newest := a.lanes[0]
		for _, c := range a.lanes[1:] {
			if c.added > newest.added {
				newest = c
			}
		}
		a.lane = newest
		a.active = newest.First()
	}
}

func (a *Area) equalize() {
	for _, l := range a.lanes {
		l.weight = defaultWeight
	}
}

// ResizeLane grows l by delta against its neighbour lane.
func (a *Area) ResizeLane(l *Lane, delta, minWeight int) bool {
	i := slices.Index(a.lanes, l)
	if i < 0 {
		return false
	}
	weights := make([]int, len(a.lanes))
	for j, c := range a.lanes {
		weights[j] = c.weight
	}
	if !AdjustAdjacent(weights, i, delta, minWeight) {
		return false
	}
	for j, c := range a.lanes {
		c.weight = weights[j]
	}
	return true
}

// SplitLaneVertically adds a lane seeded from the hovered pane when it
// belongs to this area, else from the active lane's first folder, else
// from the working directory.
func (a *Area) SplitLaneVertically(hovered *Pane) *Lane {
	seed := a.env.WorkDir
	switch {
	case a.owns(hovered) && len(hovered.views) > 0:
		seed = hovered.views[0].path
	case a.ActiveLane() != nil && a.ActiveLane().First() != nil && len(a.ActiveLane().First().views) > 0:
		seed = a.ActiveLane().First().views[0].path
	}
	l := a.AddLane()
	l.DisplayPathInFirstPane(seed)
	return l
}

// ResetFlowFrom shows path in the active lane's first pane and clears the
// rest of the chain.
func (a *Area) ResetFlowFrom(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil || (a.env.Lister != nil && !a.env.Lister.IsDir(abs)) {
		return fmt.Errorf("reset flow to %s: %w", path, ErrInvalidTarget)
	}
	l := a.ActiveLane()
	if l == nil {
		l = a.AddLane()
	}
	l.DisplayPathInFirstPane(abs)
	a.active = l.First()
	a.env.addressChanged(abs)
	return nil
}

// Duplicate returns an independent area built from this area's snapshot.
// Marks are not copied.
func (a *Area) Duplicate() *Area {
	dup := newArea(a.env)
	dup.RestoreState(a.GetState().Clone())
	return dup
}

// GetState snapshots every lane and the active lane index.
func (a *Area) GetState() AreaState {
	s := AreaState{Lanes: make([]LaneState, len(a.lanes))}
	for i, l := range a.lanes {
		s.Lanes[i] = l.GetState()
	}
	s.ActiveLaneIndex = max(0, slices.Index(a.lanes, a.ActiveLane()))
	return s
}

// RestoreState replaces every lane from s. The mark bucket is left as is.
func (a *Area) RestoreState(s AreaState) {
	for _, l := range a.lanes {
		l.detach()
	}
	a.lanes = nil
	a.lane = nil
	a.active = nil

	lanes := s.Lanes
	if len(lanes) == 0 {
		lanes = []LaneState{{}}
	}
	for _, ls := range lanes {
		a.AddLane().RestoreState(ls)
	}

	idx := s.ActiveLaneIndex
	if idx < 0 || idx >= len(a.lanes) {
		idx = len(a.lanes) - 1
	}
	a.lane = a.lanes[idx]
	a.active = a.lane.First()
}

// Refresh re-lists views bound to the given folders (all views when none
// are given).
func (a *Area) Refresh(dirs ...string) {
	for _, p := range a.Panes() {
		p.Refresh(dirs...)
	}
}

// Folders returns every folder shown in the area.
func (a *Area) Folders() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range a.Panes() {
		for _, v := range p.views {
			if !seen[v.path] {
				seen[v.path] = true
				out = append(out, v.path)
			}
		}
	}
	return out
}

// Close detaches the area from its bucket.
func (a *Area) Close() {
	if a.unsub != nil {
		a.unsub()
		a.unsub = nil
	}
}

func (a *Area) repaint() {
	for _, p := range a.Panes() {
		p.repaint()
	}
}

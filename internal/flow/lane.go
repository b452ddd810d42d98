package flow

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// defaultWeight is the share every pane and lane gets after a re-layout.
const defaultWeight = 100

// Lane is a left-to-right chain of panes where the selection of pane i
// decides the folders of pane i+1.
type Lane struct {
	id     string
	area   *Area
	env    *Env
	panes  []*Pane
	weight int
	added  uint64
}

func newLane(a *Area, env *Env) *Lane {
	l := &Lane{
		id:     uuid.NewString(),
		area:   a,
		env:    env,
		weight: defaultWeight,
	}
	l.AddPane()
	return l
}

// ID returns the lane's stable identifier.
func (l *Lane) ID() string { return l.id }

// Area returns the owning area.
func (l *Lane) Area() *Area { return l.area }

// Panes returns the panes left to right.
func (l *Lane) Panes() []*Pane { return l.panes }

// Weight returns the lane's share of the area height.
func (l *Lane) Weight() int { return l.weight }

// First returns the leftmost pane.
func (l *Lane) First() *Pane {
	if len(l.panes) == 0 {
		return nil
	}
	return l.panes[0]
}

// Index returns p's position, or -1.
func (l *Lane) Index(p *Pane) int {
	return slices.Index(l.panes, p)
}

// AddPane appends an empty pane and evens out the pane widths.
func (l *Lane) AddPane() *Pane {
	p := newPane(l, l.env)
	l.panes = append(l.panes, p)
	l.equalize()
	return p
}

// RemovePane removes p. Removing the only pane asks the area to remove the
// whole lane instead, which is a no-op for the area's last lane.
func (l *Lane) RemovePane(p *Pane) {
	i := l.Index(p)
	if i < 0 {
		return
	}
	if len(l.panes) == 1 {
		if l.area != nil {
			l.area.RemoveLane(l)
		}
		return
	}
	l.panes = slices.Delete(l.panes, i, i+1)
	p.lane = nil
	l.equalize()
	if l.area != nil && l.area.active == p {
		l.area.active = l.panes[min(i, len(l.panes)-1)]
	}
}

func (l *Lane) equalize() {
	for _, p := range l.panes {
		p.weight = defaultWeight
	}
}

// DisplayPathInFirstPane shows path in the first pane and clears every
// pane after it.
func (l *Lane) DisplayPathInFirstPane(path string) {
	first := l.First()
	if first == nil {
		first = l.AddPane()
	}
	for _, v := range first.views {
		v.selection = nil
	}
	first.lastSelected = nil
	first.supersede()
	first.DisplayFolders([]string{path})
	l.clearFrom(1)
}

// detach cuts the lane and its panes loose from their parents, so work
// queued for them no longer reaches the tree.
func (l *Lane) detach() {
	for _, p := range l.panes {
		p.supersede()
		p.lane = nil
	}
	l.area = nil
}

func (l *Lane) clearFrom(i int) {
	for _, p := range l.panes[min(i, len(l.panes)):] {
		p.supersede()
		p.DisplayFolders(nil)
	}
}

// UpdateDownstream feeds paths to the pane after source and keeps going
// while each fed pane still holds a selection. Panes after the first pane
// without a retained selection are cleared. The walk is bounded by the
// number of panes present when it starts, plus the one it may create.
func (l *Lane) UpdateDownstream(source *Pane, paths []string) error {
	i := l.Index(source)
	if i < 0 {
		return fmt.Errorf("update downstream: pane not in lane: %w", ErrStaleReference)
	}

	limit := len(l.panes)
	for step := 0; ; step++ {
		if step >= limit {
			l.env.Logger.Warn("downstream propagation hit step bound", "lane", l.id, "steps", step)
			return nil
		}

		next := i + 1
		if next >= len(l.panes) {
			l.AddPane()
		}
		np := l.panes[next]
		np.supersede()
		np.DisplayFolders(paths)

		retained := np.LastSelected()
		if len(retained) == 0 {
			l.clearFrom(next + 1)
			return nil
		}
		i, paths = next, retained
	}
}

// Resize grows p by delta cells of weight, taking them from its right
// neighbour (or left neighbour for the last pane). Neither side may drop
// below minWeight. It reports whether anything changed.
func (l *Lane) Resize(p *Pane, delta, minWeight int) bool {
	i := l.Index(p)
	if i < 0 || len(l.panes) < 2 {
		return false
	}
	weights := make([]int, len(l.panes))
	for j, q := range l.panes {
		weights[j] = q.weight
	}
	if !AdjustAdjacent(weights, i, delta, minWeight) {
		return false
	}
	for j, q := range l.panes {
		q.weight = weights[j]
	}
	return true
}

// AdjustAdjacent moves delta from the neighbour of idx into idx, keeping
// both at or above minSize. It reports whether sizes changed.
func AdjustAdjacent(sizes []int, idx, delta, minSize int) bool {
	if idx < 0 || idx >= len(sizes) || len(sizes) < 2 || delta == 0 {
		return false
	}
	neighbour := idx + 1
	if neighbour >= len(sizes) {
		neighbour = idx - 1
	}
	grown := max(sizes[idx]+delta, minSize)
	diff := grown - sizes[idx]
	shrunk := sizes[neighbour] - diff
	if diff == 0 || shrunk < minSize {
		return false
	}
	sizes[idx] = grown
	sizes[neighbour] = shrunk
	return true
}

// GetState snapshots every pane.
func (l *Lane) GetState() LaneState {
	s := LaneState{Panes: make([]PaneState, len(l.panes))}
	for i, p := range l.panes {
		s.Panes[i] = p.GetState()
	}
	return s
}

// RestoreState rebuilds the lane from s: it trims to one pane, restores it
// from the first state and appends a pane per remaining state.
func (l *Lane) RestoreState(s LaneState) {
	for _, p := range l.panes[min(1, len(l.panes)):] {
		p.lane = nil
	}
	l.panes = l.panes[:min(1, len(l.panes))]
	if len(l.panes) == 0 {
		l.AddPane()
	}

	if len(s.Panes) == 0 {
		l.panes[0].RestoreState(PaneState{})
		l.equalize()
		return
	}
	l.panes[0].RestoreState(s.Panes[0])
	for _, ps := range s.Panes[1:] {
		l.AddPane().RestoreState(ps)
	}
	l.equalize()
}

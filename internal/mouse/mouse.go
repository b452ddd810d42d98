// Package mouse maps pointer coordinates onto the regions drawn by the last
// render and classifies raw mouse messages into clicks, double clicks,
// wheel notches, hovers and drags.
package mouse

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// doubleClickWindow is the longest gap between two clicks on the same
// region that still counts as a double click.
const doubleClickWindow = 400 * time.Millisecond

// Rect is a cell rectangle.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Region is a rectangle drawn under a kind ID, carrying what was drawn there.
type Region struct {
	ID   string
	Rect Rect
	Data any // compared on double click, so must be comparable
}

// HitMap holds the regions of one frame. Regions added later sit on top.
type HitMap struct {
	regions []Region
}

func NewHitMap() *HitMap {
	return &HitMap{regions: make([]Region, 0, 128)}
}

// Clear forgets the previous frame.
func (h *HitMap) Clear() {
	h.regions = h.regions[:0]
}

// AddRect registers a region.
func (h *HitMap) AddRect(id string, x, y, w, height int, data any) {
	h.regions = append(h.regions, Region{ID: id, Rect: Rect{X: x, Y: y, W: w, H: height}, Data: data})
}

// Test returns the topmost region under (x, y), or nil.
func (h *HitMap) Test(x, y int) *Region {
	return h.find(x, y, func(*Region) bool { return true })
}

// TestID returns the topmost region of kind id under (x, y), or nil. It
// finds the pane enclosing a row.
func (h *HitMap) TestID(id string, x, y int) *Region {
	return h.find(x, y, func(r *Region) bool { return r.ID == id })
}

func (h *HitMap) find(x, y int, keep func(*Region) bool) *Region {
	for i := len(h.regions) - 1; i >= 0; i-- {
		r := &h.regions[i]
		if r.Rect.Contains(x, y) && keep(r) {
			return r
		}
	}
	return nil
}

// Regions returns a copy of the registered regions.
func (h *HitMap) Regions() []Region {
	return append([]Region(nil), h.regions...)
}

type click struct {
	id   string
	data any
	at   time.Time
}

type drag struct {
	x, y   int
	region string
	start  int
}

// Handler owns the hit map and the click and drag state between events.
type Handler struct {
	HitMap *HitMap

	last click
	drag *drag
	now  func() time.Time
}

func NewHandler() *Handler {
	return &Handler{HitMap: NewHitMap(), now: time.Now}
}

// SetClock replaces the time source used for double-click detection.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

// ClickResult is the region under a click and whether it completed a
// double click.
type ClickResult struct {
	Region        *Region
	IsDoubleClick bool
}

// HandleClick records a left click at (x, y). A second click on the same
// region kind and data inside the window is a double click; a third starts
// over.
func (h *Handler) HandleClick(x, y int) ClickResult {
	region := h.HitMap.Test(x, y)
	if region == nil {
		return ClickResult{}
	}
	now := h.now()
	if region.ID == h.last.id && region.Data == h.last.data && now.Sub(h.last.at) < doubleClickWindow {
		h.last = click{}
		return ClickResult{Region: region, IsDoubleClick: true}
	}
	h.last = click{id: region.ID, data: region.Data, at: now}
	return ClickResult{Region: region}
}

// StartDrag begins a drag of region from (x, y). start is the value being
// dragged (a width, say) at the moment the drag began.
func (h *Handler) StartDrag(x, y int, region string, start int) {
	h.drag = &drag{x: x, y: y, region: region, start: start}
}

func (h *Handler) IsDragging() bool { return h.drag != nil }

// DragRegion returns the kind of region being dragged, or "".
func (h *Handler) DragRegion() string {
	if h.drag == nil {
		return ""
	}
	return h.drag.region
}

// DragStartValue returns the value passed to StartDrag.
func (h *Handler) DragStartValue() int {
	if h.drag == nil {
		return 0
	}
	return h.drag.start
}

// Modifiers are the keys held during a mouse event.
type Modifiers struct {
	Ctrl, Shift, Alt bool
}

// HandleMouse classifies msg against the current hit map.
func (h *Handler) HandleMouse(msg tea.MouseMsg) Action {
	a := Action{X: msg.X, Y: msg.Y, Mods: Modifiers{Ctrl: msg.Ctrl, Shift: msg.Shift, Alt: msg.Alt}}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			res := h.HandleClick(msg.X, msg.Y)
			if res.Region == nil {
				return Action{}
			}
			a.Region, a.Type = res.Region, ActionClick
			if res.IsDoubleClick {
				a.Type = ActionDoubleClick
			}
		case tea.MouseButtonRight:
			a.Region, a.Type = h.HitMap.Test(msg.X, msg.Y), ActionContextMenu
		case tea.MouseButtonWheelUp:
			a.Region, a.Type, a.Delta = h.HitMap.Test(msg.X, msg.Y), ActionScrollUp, -1
		case tea.MouseButtonWheelDown:
			a.Region, a.Type, a.Delta = h.HitMap.Test(msg.X, msg.Y), ActionScrollDown, 1
		default:
			return Action{}
		}
		return a

	case tea.MouseActionRelease:
		if h.drag != nil {
			h.drag = nil
			a.Type = ActionDragEnd
			return a
		}

	case tea.MouseActionMotion:
		if d := h.drag; d != nil {
			a.Type = ActionDrag
			a.DragDX, a.DragDY = msg.X-d.x, msg.Y-d.y
			return a
		}
		a.Region, a.Type = h.HitMap.Test(msg.X, msg.Y), ActionHover
		return a
	}
	return Action{}
}

// ActionType is the kind of a classified mouse event.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionClick
	ActionDoubleClick
	ActionContextMenu
	ActionScrollUp
	ActionScrollDown
	ActionDrag
	ActionDragEnd
	ActionHover
)

// Action is a classified mouse event.
type Action struct {
	Type   ActionType
	Region *Region
	X, Y   int
	Mods   Modifiers
	Delta  int // wheel notches, negative is up
	DragDX int
	DragDY int
}

// Package input turns raw terminal events into named intents. Key presses
// resolve through a Registry of context-scoped bindings; pointer and focus
// events go through the Router, which inspects modifiers and the hit region
// under the pointer.
package input

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/flowfiler/internal/command"
	"github.com/wilbur182/flowfiler/internal/mouse"
)

// Hit region IDs registered by the renderer.
const (
	RegionRow         = "row"
	RegionPane        = "pane"
	RegionSeparator   = "separator"
	RegionTab         = "tab"
	RegionFavorite    = "favorite"
	RegionDrive       = "drive"
	RegionAddress     = "address"
	RegionMenuItem    = "menu-item"
	RegionSidebarEdge = "sidebar-edge"
	RegionQuickLook   = "quicklook"
)

// RowHit is the data of a RegionRow.
type RowHit struct {
	PaneID string
	ViewID string
	Path   string
}

// PaneHit is the data of a RegionPane.
type PaneHit struct {
	PaneID string
	LaneID string
	ViewID string // the SubView under the pointer, if any
}

// SeparatorHit is the data of a RegionSeparator, the rule below a lane.
type SeparatorHit struct {
	LaneID string
}

// IntentKind names what the user meant.
type IntentKind int

const (
	IntentNone IntentKind = iota
	// ResizeAdjacent grows the pane (horizontal) or lane (vertical) under
	// the pointer by Amount at the expense of its neighbour.
	IntentResizeAdjacent
	// ActivatePane makes PaneID the active pane.
	IntentActivatePane
	// HighlightSeparator turns the separator of LaneID on or off.
	IntentHighlightSeparator
	IntentSelectRow
	IntentOpenRow
	IntentScroll
	IntentContextMenu
	IntentFocusTab
	IntentJumpFavorite
	IntentOpenDrive
	IntentFocusAddress
	IntentMenuPick
	IntentResizeSidebar
	IntentCommand
)

// Axis is the direction of a resize.
type Axis int

const (
	Horizontal Axis = iota // pane width within a lane
	Vertical               // lane height within an area
)

// Intent is one routed action.
type Intent struct {
	Kind   IntentKind
	PaneID string
	ViewID string
	LaneID string
	Path   string
	Index  int
	Amount int
	Axis   Axis
	On     bool
	Extend bool // ctrl-click toggles membership instead of replacing
	// Region is the hit region a scroll happened over.
	Region  string
	Command command.Command
}

// Router dispatches pointer and focus events.
type Router struct {
	mouse *mouse.Handler

	// ResizeStep is the weight change per wheel notch.
	ResizeStep int
	// ScrollStep is the rows moved per wheel notch.
	ScrollStep int
	// SidebarWidth is read when a sidebar drag starts.
	SidebarWidth int

	hoveredPane string
}

// NewRouter creates a router over a mouse handler whose hit map the
// renderer fills.
func NewRouter(h *mouse.Handler, resizeStep int) *Router {
	if resizeStep <= 0 {
		resizeStep = 10
	}
	return &Router{mouse: h, ResizeStep: resizeStep, ScrollStep: 3}
}

// Mouse routes a mouse event.
func (r *Router) Mouse(msg tea.MouseMsg) []Intent {
	a := r.mouse.HandleMouse(msg)
	switch a.Type {
	case mouse.ActionScrollUp, mouse.ActionScrollDown:
		return r.wheel(a)
	case mouse.ActionHover:
		return r.hover(a)
	case mouse.ActionClick, mouse.ActionDoubleClick:
		return r.click(a)
	case mouse.ActionContextMenu:
		return r.contextMenu(a)
	case mouse.ActionDrag:
		if r.mouse.DragRegion() == RegionSidebarEdge {
			return []Intent{{Kind: IntentResizeSidebar, Amount: r.mouse.DragStartValue() + a.DragDX}}
		}
	}
	return nil
}

// Focus routes terminal focus changes to the active lane's separator.
func (r *Router) Focus(focused bool, activeLane string) Intent {
	return Intent{Kind: IntentHighlightSeparator, LaneID: activeLane, On: focused}
}

// paneAt finds the pane under the pointer, looking through rows.
func (r *Router) paneAt(a mouse.Action) (PaneHit, bool) {
	region := r.mouse.HitMap.TestID(RegionPane, a.X, a.Y)
	if region == nil {
		return PaneHit{}, false
	}
	hit, ok := region.Data.(PaneHit)
	return hit, ok
}

func (r *Router) wheel(a mouse.Action) []Intent {
	if a.Region != nil && a.Region.ID == RegionQuickLook {
		return []Intent{{Kind: IntentScroll, Region: RegionQuickLook, Amount: a.Delta * r.ScrollStep}}
	}
	pane, ok := r.paneAt(a)
	if !ok {
		if a.Region != nil && a.Region.ID == RegionFavorite {
			return []Intent{{Kind: IntentScroll, Region: RegionFavorite, Amount: a.Delta}}
		}
		return nil
	}
	// Wheel up grows.
	grow := -a.Delta * r.ResizeStep
	switch {
	case a.Mods.Ctrl:
		return []Intent{{Kind: IntentResizeAdjacent, Axis: Horizontal, PaneID: pane.PaneID, LaneID: pane.LaneID, Amount: grow}}
	case a.Mods.Shift:
		return []Intent{{Kind: IntentResizeAdjacent, Axis: Vertical, PaneID: pane.PaneID, LaneID: pane.LaneID, Amount: grow}}
	}
	return []Intent{{Kind: IntentScroll, Region: RegionPane, PaneID: pane.PaneID, ViewID: pane.ViewID, Amount: a.Delta * r.ScrollStep}}
}

func (r *Router) hover(a mouse.Action) []Intent {
	pane, ok := r.paneAt(a)
	if !ok || pane.PaneID == r.hoveredPane {
		return nil
	}
	// Holding ctrl freezes the active pane so the pointer can travel.
	if a.Mods.Ctrl {
		return nil
	}
	r.hoveredPane = pane.PaneID
	return []Intent{{Kind: IntentActivatePane, PaneID: pane.PaneID, LaneID: pane.LaneID}}
}

func (r *Router) click(a mouse.Action) []Intent {
	if a.Region == nil {
		return nil
	}
	switch a.Region.ID {
	case RegionRow:
		row, ok := a.Region.Data.(RowHit)
		if !ok {
			return nil
		}
		intents := []Intent{{Kind: IntentActivatePane, PaneID: row.PaneID}}
		r.hoveredPane = row.PaneID
		if a.Type == mouse.ActionDoubleClick {
			return append(intents, Intent{Kind: IntentOpenRow, PaneID: row.PaneID, ViewID: row.ViewID, Path: row.Path})
		}
		return append(intents, Intent{Kind: IntentSelectRow, PaneID: row.PaneID, ViewID: row.ViewID, Path: row.Path, Extend: a.Mods.Ctrl || a.Mods.Alt})
	case RegionPane:
		if pane, ok := a.Region.Data.(PaneHit); ok {
			r.hoveredPane = pane.PaneID
			return []Intent{{Kind: IntentActivatePane, PaneID: pane.PaneID, LaneID: pane.LaneID}}
		}
	case RegionTab:
		if i, ok := a.Region.Data.(int); ok {
			return []Intent{{Kind: IntentFocusTab, Index: i}}
		}
	case RegionFavorite:
		if i, ok := a.Region.Data.(int); ok {
			return []Intent{{Kind: IntentJumpFavorite, Index: i}}
		}
	case RegionDrive:
		if p, ok := a.Region.Data.(string); ok {
			return []Intent{{Kind: IntentOpenDrive, Path: p}}
		}
	case RegionAddress:
		return []Intent{{Kind: IntentFocusAddress}}
	case RegionMenuItem:
		if i, ok := a.Region.Data.(int); ok {
			return []Intent{{Kind: IntentMenuPick, Index: i}}
		}
	case RegionSidebarEdge:
		r.mouse.StartDrag(a.X, a.Y, RegionSidebarEdge, r.SidebarWidth)
	case RegionSeparator:
		if s, ok := a.Region.Data.(SeparatorHit); ok {
			return []Intent{{Kind: IntentHighlightSeparator, LaneID: s.LaneID, On: true}}
		}
	}
	return nil
}

func (r *Router) contextMenu(a mouse.Action) []Intent {
	if a.Region == nil {
		return nil
	}
	if row, ok := a.Region.Data.(RowHit); ok && a.Region.ID == RegionRow {
		return []Intent{
			{Kind: IntentActivatePane, PaneID: row.PaneID},
			{Kind: IntentContextMenu, PaneID: row.PaneID, ViewID: row.ViewID, Path: row.Path},
		}
	}
	if pane, ok := r.paneAt(a); ok {
		return []Intent{
			{Kind: IntentActivatePane, PaneID: pane.PaneID, LaneID: pane.LaneID},
			{Kind: IntentContextMenu, PaneID: pane.PaneID, ViewID: pane.ViewID},
		}
	}
	return nil
}

// Key resolves a key press into a command intent.
func (r *Router) Key(reg *Registry, key tea.KeyMsg, context string) (Intent, bool) {
	cmd, ok := reg.Handle(key, context)
	if !ok {
		return Intent{}, false
	}
	return Intent{Kind: IntentCommand, Command: cmd}, true
}

package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/flowfiler/internal/command"
	"github.com/wilbur182/flowfiler/internal/config"
	"github.com/wilbur182/flowfiler/internal/dirmodel"
	"github.com/wilbur182/flowfiler/internal/fileops"
	"github.com/wilbur182/flowfiler/internal/flow"
	"github.com/wilbur182/flowfiler/internal/input"
)

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tickMsg:
		m.ClearToast()
		if m.watcher != nil {
			m.fds.Check(m.logger, len(m.ws.Folders()))
		}
		cmds = append(cmds, tickCmd())

	case idleMsg:
		m.sched.flush()

	case drivesMsg:
		if msg.err != nil {
			m.logger.Debug("drive listing failed", "error", msg.err)
		}
		m.drives = msg.drives

	case dirsChangedMsg:
		m.refreshDirs(msg)
		if m.watcher != nil {
			cmds = append(cmds, waitForChanges(m.watcher))
		}

	case opDoneMsg:
		m.finishOp(msg)

	case tea.FocusMsg:
		cmds = append(cmds, m.applyIntent(m.router.Focus(true, m.activeLaneID())))

	case tea.BlurMsg:
		m.keys.ResetPending()
		cmds = append(cmds, m.applyIntent(m.router.Focus(false, m.activeLaneID())))

	case tea.MouseMsg:
		for _, in := range m.router.Mouse(msg) {
			cmds = append(cmds, m.applyIntent(in))
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
	}

	if m.quitting {
		return m, tea.Quit
	}

	m.syncAddress()
	if m.watcher != nil {
		m.watcher.Sync(m.ws.Folders())
	}
	cmds = append(cmds, m.sched.cmd())
	return m, tea.Batch(cmds...)
}

func (m *Model) activeLaneID() string {
	if a := m.ws.ActiveArea(); a != nil && a.ActiveLane() != nil {
		return a.ActiveLane().ID()
	}
	return ""
}

// syncAddress mirrors the flow core's address into the address bar
// unless the user is typing in it.
func (m *Model) syncAddress() {
	if !m.address.changed || m.focus == focusAddress {
		return
	}
	m.address.changed = false
	m.addressInput.SetValue(m.address.path)
	m.addressErr = ""
	m.suggestion = ""
}

// refreshDirs re-lists folders that changed on disk.
func (m *Model) refreshDirs(dirs []string) {
	if m.fs != nil {
		m.fs.Invalidate(dirs...)
	}
	m.ws.Refresh(dirs...)
}

// finishOp drops whole cached subtrees of the touched folders, since a
// delete or move can take nested folders with it.
func (m *Model) finishOp(msg opDoneMsg) {
	m.busy = ""
	r := msg.result
	if m.fs != nil {
		for _, d := range msg.dirs {
			m.fs.InvalidateTree(d)
		}
	}
	m.ws.Refresh(msg.dirs...)
	if msg.clearClipboard && len(r.Created) > 0 {
		m.ws.ClearClipboard()
	}
	switch {
	case r.Err != nil && len(r.Created) == 0:
		m.ShowError(fmt.Errorf("%s failed: %w", msg.verb, firstError(r.Err)))
	case r.Err != nil:
		m.ShowError(fmt.Errorf("%s: %d done, %d failed", msg.verb, len(r.Created), r.Failed))
	default:
		m.ShowToast(fmt.Sprintf("%s: %s", msg.verb, plural(len(r.Created), "item")), 3*time.Second)
	}
}

// firstError unwraps a joined error to its first member.
func firstError(err error) error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := j.Unwrap(); len(errs) > 0 {
			return errs[0]
		}
	}
	return err
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// keyContext picks the binding context from what has focus.
func (m *Model) keyContext() string {
	switch {
	case m.menuOpen:
		return input.ContextMenu
	case m.quick.Visible():
		return input.ContextQuickLook
	case m.focus == focusFavorites:
		return input.ContextFavorites
	}
	return input.ContextPane
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case m.prompt != promptNone:
		return m.handlePromptKey(msg)
	case m.confirm != nil:
		return m.handleConfirmKey(msg)
	case m.info != nil:
		m.info = nil
		return nil
	case m.showHelp:
		if k := msg.String(); k == "esc" || k == "?" || k == "q" {
			m.showHelp = false
		}
		return nil
	}

	switch m.focus {
	case focusAddress:
		return m.handleAddressKey(msg)
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusFavoritesFilter:
		return m.handleFilterKey(msg)
	}

	in, ok := m.router.Key(m.keys, msg, m.keyContext())
	if !ok {
		return nil
	}
	if m.menuOpen {
		return m.handleMenuCommand(in.Command)
	}
	return m.execute(in.Command)
}

func (m *Model) handleMenuCommand(cmd command.Command) tea.Cmd {
	switch cmd.Kind {
	case command.CursorUp:
		m.moveMenu(-1)
	case command.CursorDown:
		m.moveMenu(1)
	case command.OpenSelected:
		return m.pickMenu(m.menuCursor)
	case command.ContextMenu:
		m.closeMenu()
	case command.Quit:
		return m.execute(cmd)
	}
	return nil
}

func (m *Model) moveMenu(delta int) {
	n := len(m.menuItems)
	for i := m.menuCursor + delta; i >= 0 && i < n; i += delta {
		if !m.menuItems[i].Header {
			m.menuCursor = i
			return
		}
	}
}

func (m *Model) pickMenu(i int) tea.Cmd {
	if i < 0 || i >= len(m.menuItems) || m.menuItems[i].Header {
		return nil
	}
	item := m.menuItems[i]
	m.closeMenu()
	return m.execute(item.Command)
}

func (m *Model) closeMenu() {
	m.menuOpen = false
	m.menuItems = nil
	m.menuCursor = 0
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y", "enter":
		cmd := *m.confirm
		m.confirm = nil
		return m.perform(cmd)
	case "n", "N", "esc":
		m.confirm = nil
	}
	return nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		return nil
	case tea.KeyEnter:
		return m.submitPrompt()
	}
	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return cmd
}

func (m *Model) openPrompt(kind promptKind, value string, paths []string) tea.Cmd {
	m.prompt = kind
	m.promptPaths = append([]string(nil), paths...)
	m.promptInput.SetValue(value)
	m.promptInput.CursorEnd()
	return m.promptInput.Focus()
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.promptPaths = nil
	m.promptInput.Blur()
	m.promptInput.SetValue("")
}

func (m *Model) submitPrompt() tea.Cmd {
	kind, paths, value := m.prompt, m.promptPaths, m.promptInput.Value()
	m.closePrompt()

	switch kind {
	case promptRename:
		if len(paths) == 0 {
			return nil
		}
		dst, err := fileops.Rename(paths[0], value)
		if err != nil {
			m.ShowError(err)
			return nil
		}
		m.refreshDirs([]string{filepath.Dir(dst)})
		m.ShowToast("renamed to "+filepath.Base(dst), 3*time.Second)

	case promptNewFolder:
		if len(paths) == 0 {
			return nil
		}
		dst, err := fileops.Mkdir(paths[0], value)
		if err != nil {
			m.ShowError(err)
			return nil
		}
		m.refreshDirs([]string{paths[0]})
		m.ShowToast("created "+filepath.Base(dst), 3*time.Second)

	case promptZip:
		if len(paths) == 0 {
			return nil
		}
		dir := filepath.Dir(paths[0])
		return m.runOp("compress", []string{dir}, false, func() fileops.Result {
			out, err := fileops.Zip(paths, value)
			if err != nil {
				return fileops.Result{Failed: 1, Err: err}
			}
			return fileops.Result{Created: []string{out}}
		})

	case promptRenameTab:
		m.ws.RenameTab(m.ws.ActiveIndex(), value)
	}
	return nil
}

func (m *Model) focusAddress() tea.Cmd {
	m.focus = focusAddress
	m.addressInput.CursorEnd()
	return m.addressInput.Focus()
}

func (m *Model) blurInputs() {
	m.focus = focusPanes
	m.addressInput.Blur()
	m.searchInput.Blur()
}

func (m *Model) handleAddressKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.blurInputs()
		m.address.changed = true
		return nil
	case tea.KeyTab:
		if m.suggestion != "" {
			m.addressInput.SetValue(m.suggestion)
			m.addressInput.CursorEnd()
			m.suggestion = ""
			m.addressErr = ""
		}
		return nil
	case tea.KeyEnter:
		m.navigateAddress(m.addressInput.Value())
		return nil
	}
	var cmd tea.Cmd
	m.addressInput, cmd = m.addressInput.Update(msg)
	m.addressErr = ""
	return cmd
}

// navigateAddress resets the active area's flow to a typed path. An
// invalid path keeps the bar focused, styled as an error, and offers the
// closest existing folder.
func (m *Model) navigateAddress(raw string) {
	path := config.ExpandPath(raw)
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.workDir(), path)
	}
	if err := m.ws.ResetFlowFrom(path); err != nil {
		m.addressErr = err.Error()
		m.suggestion = dirmodel.Suggest(path)
		if errors.Is(err, flow.ErrInvalidTarget) && m.suggestion != "" {
			m.ShowError(fmt.Errorf("not a folder: %s (did you mean %s? tab to accept)", raw, m.suggestion))
		} else {
			m.ShowError(fmt.Errorf("not a folder: %s", raw))
		}
		return
	}
	m.blurInputs()
	m.address.changed = true
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	p := m.ws.Hovered()
	switch msg.Type {
	case tea.KeyEsc:
		m.searchInput.SetValue("")
		if p != nil {
			p.SetSearch("")
		}
		m.blurInputs()
		return nil
	case tea.KeyEnter:
		m.blurInputs()
		return nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if p != nil {
		p.SetSearch(m.searchInput.Value())
	}
	return cmd
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.searchInput.SetValue("")
		m.favQuery = ""
		m.searchInput.Blur()
		m.focus = focusFavorites
		return nil
	case tea.KeyEnter:
		m.searchInput.Blur()
		m.focus = focusFavorites
		return nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.favQuery = m.searchInput.Value()
	m.favCursor = 0
	return cmd
}

// applyIntent performs one routed pointer or focus intent.
func (m *Model) applyIntent(in input.Intent) tea.Cmd {
	if m.prompt != promptNone || m.confirm != nil || m.showHelp {
		return nil
	}
	if m.info != nil {
		if in.Kind == input.IntentSelectRow || in.Kind == input.IntentContextMenu {
			m.info = nil
		}
		return nil
	}
	if m.menuOpen {
		switch in.Kind {
		case input.IntentMenuPick:
			return m.pickMenu(in.Index)
		case input.IntentSelectRow, input.IntentOpenRow, input.IntentContextMenu,
			input.IntentFocusTab, input.IntentJumpFavorite, input.IntentOpenDrive, input.IntentFocusAddress:
			m.closeMenu()
		}
		return nil
	}

	area := m.ws.ActiveArea()
	switch in.Kind {
	case input.IntentResizeAdjacent:
		p := area.FindPane(in.PaneID)
		if p == nil {
			return nil
		}
		if in.Axis == input.Horizontal {
			p.Lane().Resize(p, in.Amount, m.minPaneWeight(p.Lane()))
		} else {
			area.ResizeLane(p.Lane(), in.Amount, m.minLaneWeight(area))
		}

	case input.IntentActivatePane:
		if p := area.FindPane(in.PaneID); p != nil {
			m.ws.SetHovered(p)
			if m.termFocused {
				m.litLane = p.Lane().ID()
			}
		}

	case input.IntentHighlightSeparator:
		m.termFocused = in.On
		if in.On {
			m.litLane = in.LaneID
		} else {
			m.litLane = ""
		}

	case input.IntentSelectRow, input.IntentOpenRow:
		p, v := m.resolveView(in.PaneID, in.ViewID)
		if v == nil {
			return nil
		}
		m.blurInputs()
		for i, r := range v.Rows() {
			if r.Path == in.Path {
				v.SetCursor(i)
				break
			}
		}
		if in.Kind == input.IntentOpenRow {
			return m.openCursor(p, v)
		}
		if in.Extend {
			p.ToggleSelection(v, in.Path)
		} else {
			p.SetSelection(v, in.Path)
		}

	case input.IntentScroll:
		switch in.Region {
		case input.RegionQuickLook:
			m.qlScroll = max(0, m.qlScroll+in.Amount)
		case input.RegionFavorite:
			m.favCursor = max(0, min(m.favCursor+in.Amount, len(m.favoriteMatches())-1))
		default:
			if v := area.FindView(in.ViewID); v != nil {
				v.SetOffset(v.Offset() + in.Amount)
			}
		}

	case input.IntentContextMenu:
		p, v := m.resolveView(in.PaneID, in.ViewID)
		if p == nil {
			return nil
		}
		if v != nil && in.Path != "" && !v.IsSelected(in.Path) {
			for i, r := range v.Rows() {
				if r.Path == in.Path {
					v.SetCursor(i)
				}
			}
			p.SetSelection(v, in.Path)
		}
		m.openMenu(p)

	case input.IntentFocusTab:
		m.ws.SetActive(in.Index)

	case input.IntentJumpFavorite:
		m.jumpFavorite(in.Index)

	case input.IntentOpenDrive:
		if err := m.ws.ResetFlowFrom(in.Path); err != nil {
			m.ShowError(err)
		}

	case input.IntentFocusAddress:
		return m.focusAddress()

	case input.IntentResizeSidebar:
		m.sidebarWidth = max(12, min(in.Amount, max(12, m.width/2)))
		m.router.SidebarWidth = m.sidebarWidth

	case input.IntentCommand:
		return m.execute(in.Command)
	}
	return nil
}

// resolveView finds a pane of the active area and one of its views,
// falling back to the focused view.
func (m *Model) resolveView(paneID, viewID string) (*flow.Pane, *flow.SubView) {
	p := m.ws.ActiveArea().FindPane(paneID)
	if p == nil {
		return nil, nil
	}
	if v := p.View(viewID); v != nil {
		return p, v
	}
	return p, p.Focused()
}

// minPaneWeight converts the configured minimum pane width in cells into
// lane weight units.
func (m *Model) minPaneWeight(l *flow.Lane) int {
	total := 0
	for _, p := range l.Panes() {
		total += p.Weight()
	}
	return weightFor(m.cfg.Flow.MinPaneWidth, total, m.areaWidth())
}

// minLaneWeight keeps every lane at least minLaneHeight rows tall.
func (m *Model) minLaneWeight(a *flow.Area) int {
	total := 0
	for _, l := range a.Lanes() {
		total += l.Weight()
	}
	return weightFor(minLaneHeight, total, m.bodyHeight())
}

func weightFor(cells, totalWeight, totalCells int) int {
	if totalCells <= 0 {
		return 1
	}
	return max(1, (cells*totalWeight+totalCells-1)/totalCells)
}

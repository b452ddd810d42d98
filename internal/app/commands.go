package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/flowfiler/internal/command"
	"github.com/wilbur182/flowfiler/internal/favorites"
	"github.com/wilbur182/flowfiler/internal/fileops"
	"github.com/wilbur182/flowfiler/internal/flow"
	"github.com/wilbur182/flowfiler/internal/preview"
	"github.com/wilbur182/flowfiler/internal/projection"
	"github.com/wilbur182/flowfiler/internal/shell"
	"github.com/wilbur182/flowfiler/internal/workspace"
)

// execute runs a command against the pane under the pointer (or the
// active pane when the pointer is elsewhere).
func (m *Model) execute(cmd command.Command) tea.Cmd {
	if cmd.Destructive() {
		paths := m.subjects(cmd)
		if len(paths) == 0 {
			return nil
		}
		c := command.WithPaths(cmd.Kind, paths...)
		m.confirm = &c
		return nil
	}

	if m.quick.Visible() {
		if done, tc := m.executeQuickLook(cmd); done {
			return tc
		}
	}
	if m.focus == focusFavorites {
		if done, tc := m.executeFavorites(cmd); done {
			return tc
		}
	}

	p := m.ws.Hovered()
	var v *flow.SubView
	if p != nil {
		v = p.Focused()
	}

	switch cmd.Kind {
	// Flow
	case command.GoUp:
		if p != nil {
			p.GoUp()
		}
	case command.AddPane:
		if p != nil {
			np := p.Lane().AddPane()
			m.ws.SetHovered(np)
		}
	case command.RemovePane:
		if p != nil {
			p.Lane().RemovePane(p)
		}
	case command.SplitLane:
		if l := m.ws.SplitActiveLane(); l != nil {
			m.ws.SetHovered(l.First())
		}
	case command.ToggleHidden:
		withPane(p, (*flow.Pane).ToggleHidden)
	case command.ToggleCompact:
		withPane(p, (*flow.Pane).ToggleCompact)
	case command.CycleMode:
		withPane(p, (*flow.Pane).CycleDisplayMode)
	case command.PopView:
		withPane(p, (*flow.Pane).PopActiveView)
	case command.SortName:
		m.sortBy(p, projection.SortName)
	case command.SortSize:
		m.sortBy(p, projection.SortSize)
	case command.SortType:
		m.sortBy(p, projection.SortType)
	case command.SortModified:
		m.sortBy(p, projection.SortModified)
	case command.ToggleMark:
		if p != nil {
			for _, path := range m.subjects(cmd) {
				p.ToggleMark(path)
			}
		}
	case command.MarkSelected, command.UnmarkSelected:
		if p != nil {
			p.MarkSelected(m.subjects(cmd), cmd.Kind == command.MarkSelected)
		}
	case command.ClearMarks:
		withPane(p, (*flow.Pane).ClearMarks)
	case command.ClearSelection:
		withPane(p, (*flow.Pane).ClearSelection)
	case command.OpenSelected:
		if len(cmd.Paths) > 0 {
			return m.openPaths(cmd.Paths)
		}
		if v != nil {
			return m.openCursor(p, v)
		}
	case command.Reveal:
		if paths := m.subjects(cmd); len(paths) > 0 {
			m.report(m.shell.Reveal(paths[0]))
		} else if v != nil {
			m.report(m.shell.Open(v.Path()))
		}
	case command.Search:
		if p != nil {
			m.focus = focusSearch
			m.searchInput.SetValue(p.Search())
			m.searchInput.CursorEnd()
			return m.searchInput.Focus()
		}
	case command.QuickLook:
		m.toggleQuickLook(p)
	case command.Refresh:
		if m.fs != nil {
			m.fs.Invalidate(m.ws.Folders()...)
		}
		m.ws.Refresh()
		return loadDrivesCmd(m.listDrive, m.logger)

	// Cursor and focus
	case command.CursorUp, command.CursorDown, command.CursorTop, command.CursorBottom,
		command.PageUp, command.PageDown:
		if v != nil {
			m.moveCursor(p, v, cmd.Kind)
		}
	case command.ToggleSelect:
		if v != nil {
			if row, ok := v.CurrentRow(); ok {
				p.ToggleSelection(v, row.Path)
			}
		}
	case command.NextView:
		if p != nil && len(p.Views()) > 0 {
			idx := 0
			for i, sv := range p.Views() {
				if sv == v {
					idx = i
				}
			}
			p.FocusIndex((idx + 1) % len(p.Views()))
		}
	case command.PrevPane, command.NextPane:
		m.stepPane(p, cmd.Kind == command.NextPane)
	case command.PrevLane, command.NextLane:
		m.stepLane(p, cmd.Kind == command.NextLane)

	// File operations
	case command.Cut, command.Copy:
		m.toClipboard(p, cmd)
	case command.Paste:
		return m.paste(v, cmd)
	case command.Rename:
		if paths := m.subjects(cmd); len(paths) > 0 {
			return m.openPrompt(promptRename, filepath.Base(paths[0]), paths[:1])
		}
	case command.NewFolder:
		if dir := m.targetDir(v, cmd); dir != "" {
			return m.openPrompt(promptNewFolder, "New Folder", []string{dir})
		}
	case command.Zip:
		if paths := m.subjects(cmd); len(paths) > 0 {
			return m.openPrompt(promptZip, fileops.DefaultZipName(paths), paths)
		}
	case command.Unzip, command.CreateShortcut, command.ConvertPDF:
		return m.perform(command.WithPaths(cmd.Kind, m.subjects(cmd)...))
	case command.Properties:
		if paths := m.subjects(cmd); len(paths) > 0 {
			m.showProperties(paths[0])
		}
	case command.Terminal:
		fallback := m.workDir()
		if v != nil {
			fallback = v.Path()
		}
		m.report(m.shell.Terminal(shell.TerminalDir(cmd.Paths, fallback)))
	case command.CopyPath:
		if paths := m.subjects(cmd); len(paths) > 0 {
			if _, err := m.shell.CopyPaths(paths, shell.PathFormat(cmd.Index)); err != nil {
				m.ShowError(err)
			} else {
				m.ShowToast("copied "+plural(len(paths), "path"), 2*time.Second)
			}
		}
	case command.AddFavorite:
		m.addFavorites(v, cmd)
	case command.ContextMenu:
		if p != nil {
			m.openMenu(p)
		}

	// Tabs and chrome
	case command.NewTab:
		m.ws.AddTab("")
	case command.CloseTab:
		m.ws.CloseTab(m.ws.ActiveIndex())
	case command.DuplicateTab:
		m.ws.DuplicateTab(m.ws.ActiveIndex())
	case command.RenameTab:
		if t := m.ws.ActiveTab(); t != nil {
			return m.openPrompt(promptRenameTab, t.Title, nil)
		}
	case command.NextTab, command.PrevTab:
		n := len(m.ws.Tabs())
		step := 1
		if cmd.Kind == command.PrevTab {
			step = n - 1
		}
		m.ws.SetActive((m.ws.ActiveIndex() + step) % n)
	case command.FocusAddress:
		return m.focusAddress()
	case command.ToggleSidebar:
		m.showSidebar = !m.showSidebar
		if !m.showSidebar && m.focus == focusFavorites {
			m.focus = focusPanes
		}
	case command.FocusFavorites:
		if m.focus == focusFavorites {
			m.focus = focusPanes
		} else {
			m.showSidebar = true
			m.focus = focusFavorites
		}
	case command.JumpFavorite:
		m.jumpFavorite(cmd.Index)
	case command.Help:
		m.showHelp = !m.showHelp
	case command.Quit:
		if err := m.SaveSession(); err != nil {
			m.logger.Warn("session save failed", "path", m.cfg.Session.Path, "error", err)
		}
		m.Close()
		m.quitting = true
	}
	return nil
}

func withPane(p *flow.Pane, fn func(*flow.Pane)) {
	if p != nil {
		fn(p)
	}
}

func (m *Model) sortBy(p *flow.Pane, col projection.SortColumn) {
	if p != nil {
		p.ToggleSort(col)
	}
}

func (m *Model) report(err error) {
	if err != nil {
		m.ShowError(err)
	}
}

// subjects are the paths a file command acts on: its own payload, else
// the pane's selection, else the row under the cursor.
func (m *Model) subjects(cmd command.Command) []string {
	if len(cmd.Paths) > 0 {
		return cmd.Paths
	}
	p := m.ws.Hovered()
	if p == nil {
		return nil
	}
	if sel := p.SelectedPaths(); len(sel) > 0 {
		return sel
	}
	if v := p.Focused(); v != nil {
		if row, ok := v.CurrentRow(); ok {
			return []string{row.Path}
		}
	}
	return nil
}

// targetDir is the folder new items go into.
func (m *Model) targetDir(v *flow.SubView, cmd command.Command) string {
	if len(cmd.Paths) > 0 {
		return cmd.Paths[0]
	}
	if v != nil {
		return v.Path()
	}
	return ""
}

func (m *Model) moveCursor(p *flow.Pane, v *flow.SubView, kind command.Kind) {
	page := max(1, m.viewRows[v.ID()])
	cur := v.Cursor()
	switch kind {
	case command.CursorUp:
		cur--
	case command.CursorDown:
		cur++
	case command.CursorTop:
		cur = 0
	case command.CursorBottom:
		cur = len(v.Rows()) - 1
	case command.PageUp:
		cur -= page
	case command.PageDown:
		cur += page
	}
	v.SetCursor(cur)
	scrollToCursor(v, page)
	p.SelectCursor(v)
}

// scrollToCursor adjusts the offset so the cursor row is within rows.
func scrollToCursor(v *flow.SubView, rows int) {
	cur, off := v.Cursor(), v.Offset()
	switch {
	case cur < off:
		v.SetOffset(cur)
	case rows > 0 && cur >= off+rows:
		v.SetOffset(cur - rows + 1)
	}
}

func (m *Model) stepPane(p *flow.Pane, forward bool) {
	if p == nil {
		return
	}
	panes := p.Lane().Panes()
	i := p.Index()
	if forward {
		i++
	} else {
		i--
	}
	if i >= 0 && i < len(panes) {
		m.ws.SetHovered(panes[i])
	}
}

func (m *Model) stepLane(p *flow.Pane, forward bool) {
	if p == nil {
		return
	}
	lanes := m.ws.ActiveArea().Lanes()
	i := -1
	for j, l := range lanes {
		if l == p.Lane() {
			i = j
		}
	}
	if forward {
		i++
	} else {
		i--
	}
	if i >= 0 && i < len(lanes) {
		m.ws.SetHovered(lanes[i].First())
	}
}

// openCursor enters the folder under the cursor or opens the file with
// its default application.
func (m *Model) openCursor(p *flow.Pane, v *flow.SubView) tea.Cmd {
	if file, ok := p.Open(v); ok {
		m.report(m.shell.Open(file))
	}
	return nil
}

func (m *Model) openPaths(paths []string) tea.Cmd {
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			m.report(m.ws.ResetFlowFrom(path))
			continue
		}
		m.report(m.shell.Open(path))
	}
	return nil
}

func (m *Model) toggleQuickLook(p *flow.Pane) {
	if m.quick.Visible() {
		m.quick.Close()
		return
	}
	if p == nil {
		return
	}
	if path, ok := p.PreviewTarget(); ok {
		m.qlScroll = 0
		m.quick.Open(path)
	}
}

// executeQuickLook handles keys while the preview is open.
func (m *Model) executeQuickLook(cmd command.Command) (bool, tea.Cmd) {
	page := max(1, m.bodyHeight()-3)
	switch cmd.Kind {
	case command.CursorUp:
		m.qlScroll = max(0, m.qlScroll-1)
	case command.CursorDown:
		m.qlScroll++
	case command.PageUp:
		m.qlScroll = max(0, m.qlScroll-page)
	case command.PageDown:
		m.qlScroll += page
	case command.CursorTop:
		m.qlScroll = 0
	case command.CursorBottom:
		m.qlScroll = len(m.quick.Lines(m.previewWidth()))
	case command.QuickLook:
		m.quick.Close()
	default:
		return false, nil
	}
	return true, nil
}

// toClipboard fills the internal clipboard from the marks and the
// selection. Marks that were consumed are cleared.
func (m *Model) toClipboard(p *flow.Pane, cmd command.Command) {
	var raw []string
	if len(cmd.Paths) > 0 {
		raw = cmd.Paths
	} else {
		raw = append(raw, m.ws.ActiveArea().Marks().Paths()...)
		raw = append(raw, m.subjects(cmd)...)
	}
	paths := fileops.Aggregate(raw)
	if len(paths) == 0 {
		return
	}
	mode := workspace.ClipCopy
	if cmd.Kind == command.Cut {
		mode = workspace.ClipCut
	}
	m.ws.SetClipboard(paths, mode)
	if p != nil {
		p.MarkSelected(raw, false)
	}
	m.ShowToast(fmt.Sprintf("%s: %s on clipboard", mode, plural(len(paths), "item")), 2*time.Second)
}

func (m *Model) paste(v *flow.SubView, cmd command.Command) tea.Cmd {
	clip := m.ws.Clipboard()
	if clip.Empty() {
		return nil
	}
	dest := m.targetDir(v, cmd)
	if dest == "" {
		return nil
	}
	mode := fileops.Copy
	dirs := []string{dest}
	if clip.Mode == workspace.ClipCut {
		mode = fileops.Move
		for _, src := range clip.Paths {
			dirs = append(dirs, filepath.Dir(src))
		}
	}
	src, logger := clip.Paths, m.logger
	return m.runOp("paste", dirs, clip.Mode == workspace.ClipCut, func() fileops.Result {
		return fileops.Paste(src, dest, mode, logger)
	})
}

// perform runs a file command that needs no further input.
func (m *Model) perform(cmd command.Command) tea.Cmd {
	paths := cmd.Paths
	if len(paths) == 0 || m.opBlocked() {
		return nil
	}
	logger := m.logger
	dirs := parents(paths)
	switch cmd.Kind {
	case command.Delete:
		if p := m.ws.Hovered(); p != nil {
			p.MarkSelected(paths, false)
		}
		return m.runOp("delete", dirs, false, func() fileops.Result {
			return fileops.Delete(paths, logger)
		})
	case command.Unzip:
		return m.runOp("extract", dirs, false, func() fileops.Result {
			return fileops.Unzip(paths, logger)
		})
	case command.CreateShortcut:
		return m.runOp("shortcut", dirs, false, func() fileops.Result {
			return fileops.CreateShortcut(paths, logger)
		})
	case command.ConvertPDF:
		office := command.OfficeFiles(paths)
		if len(office) == 0 {
			m.ShowError(fmt.Errorf("no office documents selected"))
			return nil
		}
		conv := m.convert
		return m.runOp("convert", parents(office), false, func() fileops.Result {
			return conv.ConvertToPDF(context.Background(), office)
		})
	}
	return nil
}

func parents(paths []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range paths {
		d := filepath.Dir(p)
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

func (m *Model) showProperties(path string) {
	info, err := shell.Properties(path)
	if err != nil {
		m.ShowError(err)
		return
	}
	kind := "File"
	if info.IsDir {
		kind = "Folder"
	}
	m.info = []string{
		"Name:     " + filepath.Base(info.Path),
		"Location: " + filepath.Dir(info.Path),
		"Type:     " + kind,
		"Size:     " + preview.FormatSize(info.Size),
		"Mode:     " + info.Mode.String(),
		"Modified: " + info.ModTime.Format("2006-01-02 15:04"),
	}
	if info.IsDir {
		m.info = append(m.info, fmt.Sprintf("Contains: %d files, %d folders", info.Files, info.Dirs))
	}
	if info.Target != "" {
		m.info = append(m.info, "Target:   "+info.Target)
	}
}

// openMenu builds the context menu for p's selection.
func (m *Model) openMenu(p *flow.Pane) {
	area := m.ws.ActiveArea()
	bucket := area.Marks()
	ctx := command.MenuContext{
		Selected:      existing(p.SelectedPaths()),
		Marked:        existing(bucket.Paths()),
		IsMarked:      bucket.IsMarked,
		ClipboardFull: !m.ws.Clipboard().Empty(),
	}
	if v := p.Focused(); v != nil {
		ctx.PasteDir = v.Path()
	}
	m.menuItems = command.Menu(ctx)
	if len(m.menuItems) == 0 {
		return
	}
	m.menuOpen = true
	m.menuCursor = -1
	m.moveMenu(1)
}

func existing(paths []string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Lstat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// Favorites

func (m *Model) favoriteMatches() []favorites.Match {
	return m.favs.Filter(m.favQuery)
}

// jumpFavorite resets the active flow to favorite i. A negative index
// uses the sidebar cursor.
func (m *Model) jumpFavorite(i int) {
	if i < 0 {
		matches := m.favoriteMatches()
		if m.favCursor < 0 || m.favCursor >= len(matches) {
			return
		}
		i = matches[m.favCursor].Index
	}
	path, ok := m.favs.At(i)
	if !ok {
		return
	}
	if err := m.ws.ResetFlowFrom(path); err != nil {
		m.ShowError(err)
		return
	}
	m.focus = focusPanes
}

func (m *Model) addFavorites(v *flow.SubView, cmd command.Command) {
	var dirs []string
	for _, path := range m.subjects(cmd) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			dirs = append(dirs, path)
		}
	}
	if len(dirs) == 0 && v != nil {
		dirs = []string{v.Path()}
	}
	for _, d := range dirs {
		if err := m.favs.Add(d); err != nil {
			m.ShowError(err)
			return
		}
	}
	if len(dirs) > 0 {
		m.ShowToast("added "+plural(len(dirs), "favorite"), 2*time.Second)
	}
}

// executeFavorites handles commands while the sidebar has focus.
func (m *Model) executeFavorites(cmd command.Command) (bool, tea.Cmd) {
	matches := m.favoriteMatches()
	cur := -1
	if m.favCursor >= 0 && m.favCursor < len(matches) {
		cur = matches[m.favCursor].Index
	}
	switch cmd.Kind {
	case command.CursorUp:
		m.favCursor = max(0, m.favCursor-1)
	case command.CursorDown:
		m.favCursor = max(0, min(m.favCursor+1, len(matches)-1))
	case command.RemoveFavorite:
		if cur >= 0 {
			m.report(m.favs.Remove(cur))
			m.favCursor = max(0, min(m.favCursor, len(m.favoriteMatches())-1))
		}
	case command.MoveFavoriteUp, command.MoveFavoriteDown:
		if cur < 0 || m.favQuery != "" {
			return true, nil
		}
		delta := 1
		if cmd.Kind == command.MoveFavoriteUp {
			delta = -1
		}
		j, err := m.favs.Move(cur, delta)
		m.report(err)
		m.favCursor = j
	case command.Search:
		m.focus = focusFavoritesFilter
		m.searchInput.SetValue(m.favQuery)
		m.searchInput.CursorEnd()
		return true, m.searchInput.Focus()
	case command.AddFavorite:
		p := m.ws.Hovered()
		if p != nil && p.Focused() != nil {
			m.report(m.favs.Add(p.Focused().Path()))
		}
	default:
		return false, nil
	}
	return true, nil
}

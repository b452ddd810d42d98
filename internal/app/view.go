package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/wilbur182/flowfiler/internal/command"
	"github.com/wilbur182/flowfiler/internal/favorites"
	"github.com/wilbur182/flowfiler/internal/flow"
	"github.com/wilbur182/flowfiler/internal/input"
	"github.com/wilbur182/flowfiler/internal/preview"
	"github.com/wilbur182/flowfiler/internal/projection"
	"github.com/wilbur182/flowfiler/internal/styles"
	"github.com/wilbur182/flowfiler/internal/ui"
)

const (
	// chromeRows are the tab bar, the address bar and the footer.
	chromeRows    = 3
	minLaneHeight = 4
	sizeColWidth  = 10
	dateColWidth  = 17
	// metaMinWidth is the narrowest row that still shows size and date.
	metaMinWidth = 44
)

// View renders the model. It also rebuilds the hit map the router tests
// pointer events against.
func (m Model) View() string {
	if m.quitting || m.width <= 0 || m.height <= 0 {
		return ""
	}
	m.mouse.HitMap.Clear()

	bodyH := m.bodyHeight()
	lines := make([]string, 0, m.height)
	lines = append(lines, m.renderTabs(), m.renderAddress())

	var cols []string
	x := 0
	if m.showSidebar {
		cols = append(cols, m.renderSidebar(2, bodyH), m.renderSidebarEdge(2, bodyH))
		x = m.sidebarWidth + 1
	}
	cols = append(cols, block(m.renderArea(x, 2, m.areaWidth(), bodyH), m.areaWidth(), bodyH))
	if m.quick.Visible() {
		cols = append(cols, m.renderQuickLook(x+m.areaWidth(), 2, m.previewWidth(), bodyH))
	}
	if bodyH > 0 {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	}
	lines = append(lines, m.renderFooter())
	screen := strings.Join(lines, "\n")

	switch {
	case m.menuOpen:
		screen = m.renderMenu(screen)
	case m.info != nil:
		screen = ui.OverlayModal(screen, m.renderInfo(), m.width, m.height)
	case m.showHelp:
		screen = ui.OverlayModal(screen, m.renderHelp(), m.width, m.height)
	}
	return screen
}

// Layout

func (m *Model) bodyHeight() int {
	return max(0, m.height-chromeRows)
}

// contentWidth is the width right of the sidebar.
func (m *Model) contentWidth() int {
	w := m.width
	if m.showSidebar {
		w -= m.sidebarWidth + 1
	}
	return max(0, w)
}

func (m *Model) previewWidth() int {
	if !m.quick.Visible() {
		return 0
	}
	return m.contentWidth() / 2
}

// areaWidth is the width of the flow area.
func (m *Model) areaWidth() int {
	return m.contentWidth() - m.previewWidth()
}

// splitWeights divides total cells among weights. The last slot takes
// the rounding remainder.
func splitWeights(total int, weights []int) []int {
	out := make([]int, len(weights))
	if len(weights) == 0 {
		return out
	}
	sum := 0
	for _, w := range weights {
		sum += max(0, w)
	}
	used := 0
	for i, w := range weights {
		if sum == 0 {
			out[i] = total / len(weights)
		} else {
			out[i] = total * max(0, w) / sum
		}
		used += out[i]
	}
	out[len(out)-1] += total - used
	return out
}

// block pads or cuts lines to exactly w x h cells.
func block(lines []string, w, h int) string {
	out := make([]string, h)
	for i := range out {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		out[i] = fit(line, w)
	}
	return strings.Join(out, "\n")
}

// fit truncates or pads a styled line to w cells.
func fit(line string, w int) string {
	if w <= 0 {
		return ""
	}
	line = ansi.Truncate(line, w, "…")
	if pad := w - ansi.StringWidth(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return line
}

// Chrome

func (m *Model) renderTabs() string {
	var b strings.Builder
	x := 0
	for i, t := range m.ws.Tabs() {
		style := styles.TabInactive
		if i == m.ws.ActiveIndex() {
			style = styles.TabActive
		}
		tab := style.Render(t.Title)
		w := lipgloss.Width(tab)
		m.mouse.HitMap.AddRect(input.RegionTab, x, 0, w, 1, i)
		b.WriteString(tab)
		x += w
	}
	return fit(b.String(), m.width)
}

func (m *Model) renderAddress() string {
	m.mouse.HitMap.AddRect(input.RegionAddress, 0, 1, m.width, 1, nil)
	var text string
	if m.focus == focusAddress {
		text = m.addressInput.View()
	} else {
		text = m.addressInput.Value()
	}
	style := styles.Address
	if m.addressErr != "" {
		style = styles.AddressError
	}
	line := style.Render(" " + text + " ")
	if m.suggestion != "" {
		line += styles.Suggestion.Render("  → " + m.suggestion + "  (tab)")
	}
	return fit(line, m.width)
}

func (m *Model) renderSidebar(y0, h int) string {
	w := m.sidebarWidth
	lines := []string{styles.SidebarTitle.Render("FAVORITES")}
	if m.focus == focusFavoritesFilter {
		lines = append(lines, styles.SearchPrompt.Render("/ ")+m.searchInput.View())
	} else if m.favQuery != "" {
		lines = append(lines, styles.SearchPrompt.Render("/ ")+m.favQuery)
	}
	for i, match := range m.favoriteMatches() {
		style := styles.SidebarItem
		if i == m.favCursor && (m.focus == focusFavorites || m.focus == focusFavoritesFilter) {
			style = styles.SidebarFocused
		}
		m.mouse.HitMap.AddRect(input.RegionFavorite, 0, y0+len(lines), w, 1, match.Index)
		lines = append(lines, style.Render(fit(favorites.Label(match.Index, match.Path), w-2)))
	}
	if len(m.drives) > 0 {
		lines = append(lines, "", styles.SidebarTitle.Render("DRIVES"))
		for _, d := range m.drives {
			m.mouse.HitMap.AddRect(input.RegionDrive, 0, y0+len(lines), w, 1, d.Mountpoint)
			lines = append(lines, styles.SidebarItem.Render(fit(d.Label(), w-2)))
		}
	}
	return block(lines, w, h)
}

func (m *Model) renderSidebarEdge(y0, h int) string {
	m.mouse.HitMap.AddRect(input.RegionSidebarEdge, m.sidebarWidth, y0, 1, h, nil)
	lines := make([]string, h)
	for i := range lines {
		lines[i] = styles.Separator.Render("│")
	}
	return strings.Join(lines, "\n")
}

// Flow area

// renderArea draws the active area's lanes top to bottom. Each lane is
// followed by its separator rule.
func (m *Model) renderArea(x0, y0, w, h int) []string {
	area := m.ws.ActiveArea()
	if area == nil || w <= 0 {
		return nil
	}
	lanes := area.Lanes()
	weights := make([]int, len(lanes))
	for i, l := range lanes {
		weights[i] = l.Weight()
	}
	hovered := m.ws.Hovered()

	var out []string
	y := y0
	for i, lh := range splitWeights(h, weights) {
		if lh <= 0 {
			continue
		}
		l := lanes[i]
		paneH := lh - 1
		out = append(out, m.renderLane(l, x0, y, w, paneH, hovered)...)
		m.mouse.HitMap.AddRect(input.RegionSeparator, x0, y+paneH, w, 1, input.SeparatorHit{LaneID: l.ID()})
		label := ""
		if len(lanes) > 1 {
			label = fmt.Sprintf("LANE %d", i+1)
		}
		out = append(out, ui.RenderSeparator(w, label, l.ID() == m.litLane))
		y += lh
	}
	return out
}

func (m *Model) renderLane(l *flow.Lane, x0, y, w, h int, hovered *flow.Pane) []string {
	if h <= 0 {
		return nil
	}
	panes := l.Panes()
	weights := make([]int, len(panes))
	for i, p := range panes {
		weights[i] = p.Weight()
	}
	rows := make([]string, h)
	x := x0
	for i, pw := range splitWeights(w, weights) {
		box := m.renderPane(panes[i], x, y, pw, h, panes[i] == hovered)
		for r, line := range strings.Split(box, "\n") {
			if r < h {
				rows[r] += line
			}
		}
		x += pw
	}
	return rows
}

// renderPane draws a bordered pane and registers its hit regions.
func (m *Model) renderPane(p *flow.Pane, x, y, w, h int, active bool) string {
	if w < 4 || h < 3 {
		return block(nil, max(0, w), h)
	}
	m.mouse.HitMap.AddRect(input.RegionPane, x, y, w, h, input.PaneHit{PaneID: p.ID(), LaneID: p.Lane().ID()})

	iw, ih := w-2, h-2
	lines := []string{styles.PaneTitle.Render(p.Title()) + " " + styles.PaneHeader.Render(p.Header())}

	views := p.Views()
	if len(views) == 0 {
		for len(lines) < ih/2 {
			lines = append(lines, "")
		}
		pad := max(0, (iw-runewidth.StringWidth(flow.WaitingText))/2)
		lines = append(lines, strings.Repeat(" ", pad)+styles.PaneWaiting.Render(flow.WaitingText))
	} else {
		if active && m.focus == focusSearch {
			lines = append(lines, styles.SearchPrompt.Render("/ ")+m.searchInput.View())
		} else if s := p.Search(); s != "" {
			lines = append(lines, styles.SearchPrompt.Render("/ ")+s)
		}
		focused := p.Focused()
		heights := splitWeights(max(0, ih-len(lines)), make([]int, len(views)))
		cy := y + 1 + len(lines)
		for i, v := range views {
			lines = append(lines, m.renderView(p, v, x+1, cy, iw, heights[i], active && v == focused)...)
			cy += heights[i]
		}
	}

	style := styles.PaneInactive
	if active {
		style = styles.PaneActive
	}
	return style.Width(iw).Height(ih).Render(block(lines, iw, ih))
}

// renderView draws one SubView into exactly h lines.
func (m *Model) renderView(p *flow.Pane, v *flow.SubView, x, y, w, h int, cursor bool) []string {
	if h <= 0 {
		return nil
	}
	m.mouse.HitMap.AddRect(input.RegionPane, x-1, y, w+2, h, input.PaneHit{PaneID: p.ID(), LaneID: p.Lane().ID(), ViewID: v.ID()})

	var lines []string
	if label := v.Label(); label != "" {
		lines = append(lines, styles.ViewLabel.Render(label))
	}
	nameW := w - 1
	meta := nameW >= metaMinWidth
	if v.ShowHeader() && len(lines) < h {
		lines = append(lines, styles.PaneHeader.Render(columnHeader(p.Sort(), nameW, meta)))
	}
	if err := v.Err(); err != nil && len(lines) < h {
		lines = append(lines, styles.AddressError.Render(err.Error()))
	}

	rowsH := h - len(lines)
	if rowsH <= 0 {
		return lines[:h]
	}
	m.viewRows[v.ID()] = rowsH

	rows := v.Rows()
	if maxOff := max(0, len(rows)-rowsH); v.Offset() > maxOff {
		v.SetOffset(maxOff)
	}
	off := v.Offset()
	bar := ui.ScrollbarLines(ui.ScrollbarParams{
		TotalItems:   len(rows),
		ScrollOffset: off,
		VisibleItems: rowsH,
		TrackHeight:  rowsH,
	})
	top := y + len(lines)
	for i := 0; i < rowsH; i++ {
		idx := off + i
		text := ""
		if idx < len(rows) {
			r := rows[idx]
			m.mouse.HitMap.AddRect(input.RegionRow, x, top+i, nameW, 1, input.RowHit{PaneID: p.ID(), ViewID: v.ID(), Path: r.Path})
			text = formatRow(r, nameW, meta, rowStyle(r, v, cursor && idx == v.Cursor()))
		}
		lines = append(lines, fit(text, nameW)+bar[i])
	}
	return lines
}

func rowStyle(r projection.Row, v *flow.SubView, cursor bool) lipgloss.Style {
	switch {
	case cursor:
		return styles.RowCursor
	case v.IsSelected(r.Path):
		return styles.RowSelected
	case r.Marked:
		return styles.RowMarked
	case strings.HasPrefix(r.Name, "."):
		return styles.RowHidden
	case r.IsDir:
		return styles.RowDir
	}
	return styles.RowFile
}

// formatRow lays out mark, name and optionally size and date columns.
func formatRow(r projection.Row, w int, meta bool, style lipgloss.Style) string {
	mark := "  "
	if r.Marked {
		mark = "● "
	}
	name := r.Name
	if r.IsDir {
		name += "/"
	}
	nameW := w - 2
	if meta {
		nameW -= sizeColWidth + dateColWidth
	}
	text := mark + runewidth.FillRight(runewidth.Truncate(name, max(1, nameW), "…"), max(1, nameW))
	if meta {
		size := ""
		if !r.IsDir {
			size = preview.FormatSize(r.Size)
		}
		text += fmt.Sprintf("%*s", sizeColWidth, size) + " " + r.ModTime.Format("2006-01-02 15:04")
	}
	return style.Render(runewidth.FillRight(text, w))
}

func columnHeader(s projection.Sort, w int, meta bool) string {
	arrow := "▲"
	if s.Order == projection.Descending {
		arrow = "▼"
	}
	col := func(c projection.SortColumn, title string) string {
		if s.Column == c {
			return title + " " + arrow
		}
		return title
	}
	nameW := w - 2
	if !meta {
		return "  " + col(projection.SortName, "Name")
	}
	nameW -= sizeColWidth + dateColWidth
	return "  " + runewidth.FillRight(col(projection.SortName, "Name"), max(1, nameW)) +
		fmt.Sprintf("%*s", sizeColWidth, col(projection.SortSize, "Size")) + " " +
		col(projection.SortModified, "Modified")
}

// Quick look

func (m *Model) renderQuickLook(x, y, w, h int) string {
	if w < 4 || h < 3 {
		return block(nil, max(0, w), h)
	}
	m.mouse.HitMap.AddRect(input.RegionQuickLook, x, y, w, h, nil)
	iw, ih := w-2, h-2
	body := m.quick.Lines(iw)
	start := min(m.qlScroll, max(0, len(body)-(ih-1)))
	lines := []string{styles.PaneTitle.Render(m.quick.Title())}
	lines = append(lines, body[start:]...)
	return styles.PaneActive.Width(iw).Height(ih).Render(block(lines, iw, ih))
}

// Footer

func (m *Model) renderFooter() string {
	var line string
	switch {
	case m.prompt != promptNone:
		line = styles.KeyHint.Render(promptLabel(m.prompt)) + " " + m.promptInput.View()
	case m.confirm != nil:
		line = styles.ToastError.Render(fmt.Sprintf("Delete %s? [y/N]", plural(len(m.confirm.Paths), "item")))
	case m.statusMsg != "":
		if m.statusIsError {
			line = styles.ToastError.Render(m.statusMsg)
		} else {
			line = styles.ToastSuccess.Render(m.statusMsg)
		}
	default:
		line = m.keyHints()
	}

	status := m.statusLine()
	gap := m.width - ansi.StringWidth(line) - ansi.StringWidth(status)
	if gap < 1 {
		return fit(line, m.width)
	}
	return styles.Footer.Render(line + strings.Repeat(" ", gap) + status)
}

func promptLabel(k promptKind) string {
	switch k {
	case promptRename:
		return "Rename:"
	case promptNewFolder:
		return "New folder:"
	case promptZip:
		return "Archive name:"
	case promptRenameTab:
		return "Tab name:"
	}
	return ""
}

var footerHints = []struct {
	kind command.Kind
	desc string
}{
	{command.OpenSelected, "open"},
	{command.GoUp, "up"},
	{command.AddPane, "pane"},
	{command.SplitLane, "lane"},
	{command.ToggleMark, "mark"},
	{command.ContextMenu, "menu"},
	{command.QuickLook, "preview"},
	{command.Help, "help"},
}

func (m *Model) keyHints() string {
	var parts []string
	for _, h := range footerHints {
		keys := m.keys.KeysFor(h.kind, input.ContextPane)
		if len(keys) == 0 {
			continue
		}
		parts = append(parts, styles.KeyHint.Render(keys[0])+styles.Muted.Render(" "+h.desc))
	}
	return strings.Join(parts, "  ")
}

// statusLine summarizes marks and the clipboard.
func (m *Model) statusLine() string {
	var parts []string
	if m.busy != "" {
		parts = append(parts, styles.Muted.Render(m.busy+"…"))
	}
	if a := m.ws.ActiveArea(); a != nil {
		if n := a.Marks().Len(); n > 0 {
			parts = append(parts, styles.MarkCount.Render(fmt.Sprintf("● %d marked", n)))
		}
	}
	if clip := m.ws.Clipboard(); !clip.Empty() {
		parts = append(parts, styles.Muted.Render(fmt.Sprintf("%s: %d", clip.Mode, len(clip.Paths))))
	}
	return strings.Join(parts, "  ")
}

// Overlays

func (m *Model) renderMenu(screen string) string {
	width := 0
	for _, it := range m.menuItems {
		width = max(width, runewidth.StringWidth(it.Label)+4)
	}
	lines := make([]string, len(m.menuItems))
	for i, it := range m.menuItems {
		switch {
		case it.Header:
			lines[i] = styles.Muted.Render(fit(it.Label, width))
		case i == m.menuCursor:
			lines[i] = styles.RowCursor.Render(fit("  "+it.Label, width))
		default:
			lines[i] = fit("  "+it.Label, width)
		}
	}
	box := styles.ModalBox.Render(strings.Join(lines, "\n"))
	x, y := ui.Centered(box, m.width, m.height)

	left := x + styles.ModalBox.GetBorderLeftSize() + styles.ModalBox.GetPaddingLeft()
	top := y + styles.ModalBox.GetBorderTopSize() + styles.ModalBox.GetPaddingTop()
	for i, it := range m.menuItems {
		if !it.Header {
			m.mouse.HitMap.AddRect(input.RegionMenuItem, left, top+i, width, 1, i)
		}
	}
	return ui.Overlay(screen, box, x, y)
}

func (m *Model) renderInfo() string {
	var b strings.Builder
	b.WriteString(styles.ModalTitle.Render("Properties"))
	b.WriteString("\n")
	b.WriteString(strings.Join(m.info, "\n"))
	b.WriteString("\n\n")
	b.WriteString(styles.Muted.Render("any key to close"))
	return styles.ModalBox.Render(b.String())
}

// renderHelp lists the bindings of the pane and global contexts, split
// into columns that fit the screen.
func (m *Model) renderHelp() string {
	type entry struct {
		kind command.Kind
		keys []string
	}
	var entries []entry
	index := make(map[command.Kind]int)
	for _, ctx := range []string{input.ContextGlobal, input.ContextPane} {
		for _, b := range m.keys.BindingsForContext(ctx) {
			if i, ok := index[b.Command.Kind]; ok {
				entries[i].keys = append(entries[i].keys, b.Key)
				continue
			}
			index[b.Command.Kind] = len(entries)
			entries = append(entries, entry{kind: b.Command.Kind, keys: []string{b.Key}})
		}
	}

	perCol := max(1, m.height-10)
	var cols []string
	for start := 0; start < len(entries); start += perCol {
		var lines []string
		for _, e := range entries[start:min(start+perCol, len(entries))] {
			keys := strings.Join(e.keys, ", ")
			lines = append(lines, styles.KeyHint.Render(runewidth.FillRight(runewidth.Truncate(keys, 18, "…"), 18))+" "+e.kind.String())
		}
		cols = append(cols, lipgloss.NewStyle().MarginRight(3).Render(strings.Join(lines, "\n")))
	}
	return styles.ModalBox.Render(styles.ModalTitle.Render("Keys") + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, cols...))
}

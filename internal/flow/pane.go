package flow

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/wilbur182/flowfiler/internal/marks"
	"github.com/wilbur182/flowfiler/internal/projection"
)

// WaitingText is shown by a pane that has no folders yet.
const WaitingText = "...waiting for flow"

// Pane is one position of a lane. It shows one or more folders side by
// side in SubViews that share sort, filter and compact settings.
type Pane struct {
	id   string
	lane *Lane
	env  *Env

	views   []*SubView
	focused *SubView

	sort       projection.Sort
	mode       projection.DisplayMode
	showHidden bool
	compact    bool
	search     string

	lastSelected []string
	seq          uint64
	weight       int
}

func newPane(l *Lane, env *Env) *Pane {
	return &Pane{
		id:         uuid.NewString(),
		lane:       l,
		env:        env,
		mode:       env.DefaultMode,
		showHidden: env.DefaultShowHidden,
		weight:     defaultWeight,
	}
}

// ID returns the pane's stable identifier.
func (p *Pane) ID() string { return p.id }

// Lane returns the owning lane.
func (p *Pane) Lane() *Lane { return p.lane }

// Views returns the pane's SubViews in display order.
func (p *Pane) Views() []*SubView { return p.views }

// Paths returns the bound folders in display order.
func (p *Pane) Paths() []string {
	out := make([]string, len(p.views))
	for i, v := range p.views {
		out[i] = v.path
	}
	return out
}

// Sort returns the shared sort setting.
func (p *Pane) Sort() projection.Sort { return p.sort }

// Mode returns the display mode.
func (p *Pane) Mode() projection.DisplayMode { return p.mode }

// ShowHidden reports whether dot entries are shown.
func (p *Pane) ShowHidden() bool { return p.showHidden }

// Compact reports whether separators and extra headers are suppressed.
func (p *Pane) Compact() bool { return p.compact }

// Search returns the active search text.
func (p *Pane) Search() string { return p.search }

// Weight returns the pane's share of the lane width.
func (p *Pane) Weight() int { return p.weight }

// LastSelected returns the continuity-ordered directory selection.
func (p *Pane) LastSelected() []string {
	return append([]string(nil), p.lastSelected...)
}

// Index returns the pane's position in its lane, or -1 once detached.
func (p *Pane) Index() int {
	if p.lane == nil {
		return -1
	}
	return p.lane.Index(p)
}

// Title is the pane caption, "FLOW n".
func (p *Pane) Title() string {
	return fmt.Sprintf("FLOW %d", p.Index()+1)
}

// Header describes the pane settings and shown folders, e.g.
// "[All +H | Name ASC] (COMPACT)  src + docs".
func (p *Pane) Header() string {
	if len(p.views) == 0 {
		return WaitingText
	}
	hidden := ""
	if p.showHidden {
		hidden = " +H"
	}
	tag := fmt.Sprintf("[%s%s | %s %s]", p.mode, hidden, p.sort.Column, p.sort.Order)
	if p.compact {
		tag += " (COMPACT)"
	}
	names := make([]string, len(p.views))
	for i, v := range p.views {
		names[i] = baseName(v.path)
	}
	return tag + "  " + strings.Join(names, " + ")
}

// Focused returns the focused view, falling back to the first one.
func (p *Pane) Focused() *SubView {
	if p.focused != nil && p.has(p.focused) {
		return p.focused
	}
	if len(p.views) > 0 {
		return p.views[0]
	}
	return nil
}

// Focus makes v the focused view.
func (p *Pane) Focus(v *SubView) {
	if p.has(v) {
		p.focused = v
		p.env.addressChanged(v.path)
	}
}

// FocusIndex focuses the view at i, clamped.
func (p *Pane) FocusIndex(i int) {
	if len(p.views) == 0 {
		return
	}
	p.Focus(p.views[clamp(i, 0, len(p.views)-1)])
}

// View looks up a view by id.
func (p *Pane) View(id string) *SubView {
	for _, v := range p.views {
		if v.id == id {
			return v
		}
	}
	return nil
}

func (p *Pane) has(v *SubView) bool {
	return v != nil && slices.Contains(p.views, v)
}

func (p *Pane) marks() *marks.Bucket {
	if p.lane == nil || p.lane.area == nil {
		return nil
	}
	return p.lane.area.marks
}

// DisplayFolders reconciles the views to exactly paths. Existing views keep
// their selection and scroll state; paths that are not existing folders
// are skipped. An empty list clears the pane.
func (p *Pane) DisplayFolders(paths []string) {
	want := p.normalize(paths)

	existing := make(map[string]*SubView, len(p.views))
	for _, v := range p.views {
		if _, dup := existing[v.path]; !dup {
			existing[v.path] = v
		}
	}

	views := make([]*SubView, 0, len(want))
	for _, path := range want {
		if v, ok := existing[path]; ok {
			views = append(views, v)
			delete(existing, path)
			continue
		}
		views = append(views, newSubView(p, path))
	}
	p.views = views
	if !p.has(p.focused) {
		p.focused = nil
	}

	p.lastSelected = projection.Continuity(p.lastSelected, p.mergedSelection())
}

// supersede drops any propagation or preview this pane still has queued.
// Called when the pane's content is rewritten from outside: by a cascade,
// a flow reset or a restore.
func (p *Pane) supersede() {
	p.seq++
}

func (p *Pane) normalize(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, raw := range paths {
		if raw == "" {
			continue
		}
		abs, err := filepath.Abs(raw)
		if err != nil {
			continue
		}
		abs = filepath.Clean(abs)
		if seen[abs] {
			continue
		}
		if p.env.Lister != nil && !p.env.Lister.IsDir(abs) {
			p.env.Logger.Debug("skipping stale folder", "path", abs, "error", ErrStaleReference)
			continue
		}
		seen[abs] = true
		out = append(out, abs)
	}
	return out
}

// NavigateTo rebinds v to path. Sibling views are not affected.
func (p *Pane) NavigateTo(v *SubView, path string) error {
	if !p.has(v) {
		return fmt.Errorf("navigate: view not in pane: %w", ErrStaleReference)
	}
	abs, err := filepath.Abs(path)
	if err != nil || (p.env.Lister != nil && !p.env.Lister.IsDir(abs)) {
		return fmt.Errorf("navigate %s: %w", path, ErrInvalidTarget)
	}
	p.navigate(v, filepath.Clean(abs), filepath.Clean(abs))
	return nil
}

// GoUp moves the focused (or first) view to its parent folder. The folder
// it came from stays visible and under the cursor.
func (p *Pane) GoUp() {
	v := p.Focused()
	if v == nil {
		return
	}
	parent := filepath.Dir(v.path)
	if parent == v.path {
		return
	}
	p.navigate(v, parent, v.path)
}

func (p *Pane) navigate(v *SubView, path, target string) {
	v.rebind(path, target)
	p.focused = v
	p.env.addressChanged(path)
	p.OnSelectionChanged()
}

// Open acts on the row under v's cursor: folders are entered in place and
// the path of anything else is returned for the shell to open.
func (p *Pane) Open(v *SubView) (file string, ok bool) {
	row, found := v.CurrentRow()
	if !found {
		return "", false
	}
	if row.IsDir {
		if err := p.NavigateTo(v, row.Path); err != nil {
			p.env.Logger.Debug("open folder failed", "path", row.Path, "error", err)
		}
		return "", false
	}
	return row.Path, true
}

// SetSelection replaces v's selection with the visible members of paths.
func (p *Pane) SetSelection(v *SubView, paths ...string) {
	if !p.has(v) {
		return
	}
	v.selection = v.selection[:0]
	for _, path := range paths {
		if v.rowIndex(path) >= 0 && !v.IsSelected(path) {
			v.selection = append(v.selection, path)
		}
	}
	p.focused = v
	p.OnSelectionChanged()
}

// ToggleSelection adds or removes path from v's selection.
func (p *Pane) ToggleSelection(v *SubView, path string) {
	if !p.has(v) || v.rowIndex(path) < 0 {
		return
	}
	if i := slices.Index(v.selection, path); i >= 0 {
		v.selection = slices.Delete(v.selection, i, i+1)
	} else {
		v.selection = append(v.selection, path)
	}
	p.focused = v
	p.OnSelectionChanged()
}

// SelectCursor selects only the row under v's cursor.
func (p *Pane) SelectCursor(v *SubView) {
	row, ok := v.CurrentRow()
	if !ok {
		p.SetSelection(v)
		return
	}
	p.SetSelection(v, row.Path)
}

// ClearSelection empties the selection of every view.
func (p *Pane) ClearSelection() {
	for _, v := range p.views {
		v.selection = nil
	}
	p.OnSelectionChanged()
}

// SelectedPaths returns every selected path of every view, files included.
func (p *Pane) SelectedPaths() []string {
	var out []string
	for _, v := range p.views {
		out = append(out, v.selectedAll()...)
	}
	return out
}

func (p *Pane) mergedSelection() []string {
	var out []string
	for _, v := range p.views {
		out = append(out, v.selectedDirs()...)
	}
	return out
}

// OnSelectionChanged recomputes the continuity-ordered selection and, when
// it is not empty, schedules downstream propagation for the next idle tick.
// A newer change supersedes a propagation that has not run yet.
func (p *Pane) OnSelectionChanged() {
	p.lastSelected = projection.Continuity(p.lastSelected, p.mergedSelection())
	p.seq++
	seq := p.seq

	if n := len(p.lastSelected); n > 0 {
		p.env.addressChanged(p.lastSelected[n-1])
		p.env.schedule(func() {
			if p.seq != seq || p.lane == nil {
				return
			}
			if err := p.lane.UpdateDownstream(p, p.LastSelected()); err != nil {
				p.env.Logger.Debug("propagation skipped", "pane", p.id, "error", err)
			}
		})
	}

	if p.env.Preview != nil {
		p.env.schedule(func() {
			if p.seq != seq || p.lane == nil || !p.env.Preview.Visible() {
				return
			}
			if path, ok := p.settledSingle(); ok {
				p.env.Preview.ShowArtifact(path)
			}
		})
	}
}

// settledSingle returns the one selected path of the focused view.
func (p *Pane) settledSingle() (string, bool) {
	v := p.Focused()
	if v == nil {
		return "", false
	}
	sel := v.selectedAll()
	if len(sel) != 1 {
		return "", false
	}
	return sel[0], true
}

// PreviewTarget is the path quick look should show for this pane: the
// single selection, else the row under the cursor.
func (p *Pane) PreviewTarget() (string, bool) {
	if path, ok := p.settledSingle(); ok {
		return path, true
	}
	if v := p.Focused(); v != nil {
		if row, ok := v.CurrentRow(); ok {
			return row.Path, true
		}
	}
	return "", false
}

// ToggleSort flips direction when col is already active, otherwise
// switches to col ascending.
func (p *Pane) ToggleSort(col projection.SortColumn) {
	if p.sort.Column == col {
		p.sort.Order = p.sort.Order.Flip()
	} else {
		p.sort = projection.Sort{Column: col, Order: projection.Ascending}
	}
	p.reproject()
}

// CycleDisplayMode rotates All, DirsOnly, FilesOnly.
func (p *Pane) CycleDisplayMode() {
	p.mode = p.mode.Next()
	p.reproject()
}

// ToggleHidden flips whether dot entries are shown.
func (p *Pane) ToggleHidden() {
	p.showHidden = !p.showHidden
	p.reproject()
}

// ToggleCompact flips compact layout.
func (p *Pane) ToggleCompact() {
	p.compact = !p.compact
}

// SetSearch filters every view by text.
func (p *Pane) SetSearch(text string) {
	if text == p.search {
		return
	}
	p.search = text
	p.reproject()
}

// Refresh re-lists every view, dropping views whose folder disappeared.
// If dirs is non-empty only views bound to those folders are re-listed.
func (p *Pane) Refresh(dirs ...string) {
	only := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		only[d] = true
	}

	before := p.mergedSelection()
	stale := false
	for _, v := range p.views {
		if len(only) > 0 && !only[v.path] {
			continue
		}
		if p.env.Lister != nil && !p.env.Lister.IsDir(v.path) {
			stale = true
			continue
		}
		v.refresh()
	}
	if stale {
		p.DisplayFolders(p.Paths())
	}
	if !slices.Equal(before, p.mergedSelection()) {
		p.OnSelectionChanged()
	}
}

func (p *Pane) reproject() {
	before := p.mergedSelection()
	for _, v := range p.views {
		v.refresh()
	}
	if !slices.Equal(before, p.mergedSelection()) {
		p.OnSelectionChanged()
	}
}

func (p *Pane) repaint() {
	for _, v := range p.views {
		v.annotate()
	}
}

// MarkSelected adds (mark) or removes paths from the area's mark bucket.
// Every view in the area repaints through the bucket subscription.
func (p *Pane) MarkSelected(paths []string, mark bool) {
	b := p.marks()
	if b == nil {
		return
	}
	abs := make([]string, 0, len(paths))
	for _, path := range paths {
		if a, err := filepath.Abs(path); err == nil {
			abs = append(abs, a)
		}
	}
	if mark {
		b.Mark(abs...)
	} else {
		b.Unmark(abs...)
	}
}

// ToggleMark flips the mark of path.
func (p *Pane) ToggleMark(path string) {
	if b := p.marks(); b != nil {
		b.Toggle(path)
	}
}

// ClearMarks empties the area's bucket.
func (p *Pane) ClearMarks() {
	if b := p.marks(); b != nil {
		b.Clear()
	}
}

// PopActiveView removes the focused view, or the last one if none is
// focused, as long as more than one remains. Focus moves to the nearest
// remaining view.
func (p *Pane) PopActiveView() {
	if len(p.views) <= 1 {
		return
	}
	idx := len(p.views) - 1
	if p.focused != nil {
		if i := slices.Index(p.views, p.focused); i >= 0 {
			idx = i
		}
	}
	paths := p.Paths()
	paths = slices.Delete(paths, idx, idx+1)
	before := p.mergedSelection()
	p.focused = nil
	p.DisplayFolders(paths)
	if len(p.views) > 0 {
		p.FocusIndex(min(idx, len(p.views)-1))
	}
	if !slices.Equal(before, p.mergedSelection()) {
		p.OnSelectionChanged()
	}
}

// GetState snapshots the pane. Folders that no longer exist are left out.
func (p *Pane) GetState() PaneState {
	paths := make([]string, 0, len(p.views))
	for _, v := range p.views {
		if p.env.Lister == nil || p.env.Lister.IsDir(v.path) {
			paths = append(paths, v.path)
		}
	}
	return PaneState{
		Paths:       paths,
		DisplayMode: int(p.mode),
		ShowHidden:  p.showHidden,
		SortCol:     int(p.sort.Column),
		SortOrder:   int(p.sort.Order),
		IsCompact:   p.compact,
	}
}

// RestoreState applies s. Missing folders are dropped and an empty result
// falls back to the working directory. Out-of-range values reset to
// defaults.
func (p *Pane) RestoreState(s PaneState) {
	p.mode = projection.DisplayMode(s.DisplayMode)
	if !p.mode.Valid() {
		p.mode = projection.ModeAll
	}
	p.showHidden = s.ShowHidden
	p.sort = projection.Sort{
		Column: projection.SortColumn(s.SortCol),
		Order:  projection.SortOrder(s.SortOrder),
	}
	if !p.sort.Column.Valid() {
		p.sort.Column = projection.SortName
	}
	if p.sort.Order != projection.Descending {
		p.sort.Order = projection.Ascending
	}
	p.compact = s.IsCompact

	paths := p.normalize(s.Paths)
	if len(paths) == 0 {
		paths = []string{p.env.WorkDir}
	}
	p.supersede()
	p.lastSelected = nil
	// Settings changed; rebuild every view from scratch.
	p.views = nil
	p.DisplayFolders(paths)
}

// rowIndex returns the row position of path, or -1.
func (v *SubView) rowIndex(path string) int {
	for i, r := range v.rows {
		if r.Path == path {
			return i
		}
	}
	return -1
}

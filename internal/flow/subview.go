package flow

import (
	"path/filepath"

	"github.com/google/uuid"
	"github.com/wilbur182/flowfiler/internal/projection"
)

// SubView is one folder listing inside a pane.
type SubView struct {
	id     string
	pane   *Pane
	path   string
	target string

	rows      []projection.Row
	selection []string
	cursor    int
	offset    int
	err       error
}

func newSubView(p *Pane, path string) *SubView {
	v := &SubView{
		id:     uuid.NewString(),
		pane:   p,
		path:   path,
		target: path,
	}
	v.refresh()
	return v
}

// ID returns the view's stable identifier.
func (v *SubView) ID() string { return v.id }

// Pane returns the owning pane.
func (v *SubView) Pane() *Pane { return v.pane }

// Path returns the bound folder.
func (v *SubView) Path() string { return v.path }

// Rows returns the current projection.
func (v *SubView) Rows() []projection.Row { return v.rows }

// Err returns the last listing error, if any.
func (v *SubView) Err() error { return v.err }

// Selection returns the selected paths in selection order.
func (v *SubView) Selection() []string {
	return append([]string(nil), v.selection...)
}

// IsSelected reports whether path is selected in this view.
func (v *SubView) IsSelected(path string) bool {
	for _, s := range v.selection {
		if s == path {
			return true
		}
	}
	return false
}

// Cursor returns the cursor row index.
func (v *SubView) Cursor() int { return v.cursor }

// Offset returns the first visible row index.
func (v *SubView) Offset() int { return v.offset }

// SetOffset sets the scroll offset, clamped to the rows.
func (v *SubView) SetOffset(n int) {
	v.offset = clamp(n, 0, max(0, len(v.rows)-1))
}

// SetCursor moves the cursor, clamped to the rows.
func (v *SubView) SetCursor(i int) {
	v.cursor = clamp(i, 0, max(0, len(v.rows)-1))
}

// CurrentRow returns the row under the cursor.
func (v *SubView) CurrentRow() (projection.Row, bool) {
	if v.cursor < 0 || v.cursor >= len(v.rows) {
		return projection.Row{}, false
	}
	return v.rows[v.cursor], true
}

// Label is the separator text. It is empty unless the pane holds two or
// more views and is not compact.
func (v *SubView) Label() string {
	if v.pane == nil || len(v.pane.views) < 2 || v.pane.compact {
		return ""
	}
	return " ■ " + baseName(v.path)
}

// ShowHeader reports whether the column header is drawn for this view.
// Compact panes keep only the first view's header.
func (v *SubView) ShowHeader() bool {
	if v.pane == nil || !v.pane.compact {
		return true
	}
	return len(v.pane.views) > 0 && v.pane.views[0] == v
}

func (v *SubView) config() projection.Config {
	p := v.pane
	cfg := projection.Config{
		Mode:        p.mode,
		ShowHidden:  p.showHidden,
		SearchText:  p.search,
		TargetRoot:  v.target,
		Sort:        p.sort,
		SearchDepth: p.env.SearchDepth,
	}
	if m := p.marks(); m != nil {
		cfg.Marks = m
	}
	return cfg
}

// refresh re-lists the folder, reprojects it and prunes selection and
// cursor to what is still visible.
func (v *SubView) refresh() {
	env := v.pane.env
	var entries []projection.Entry
	if env.Lister != nil {
		entries, v.err = env.Lister.List(v.path)
		if v.err != nil {
			env.Logger.Debug("listing failed", "path", v.path, "error", v.err)
		}
	}

	var cursorPath string
	if row, ok := v.CurrentRow(); ok {
		cursorPath = row.Path
	}

	v.rows = projection.Project(v.path, entries, v.config(), childLister{env})

	visible := make(map[string]int, len(v.rows))
	for i, r := range v.rows {
		visible[r.Path] = i
	}
	kept := v.selection[:0]
	for _, s := range v.selection {
		if _, ok := visible[s]; ok {
			kept = append(kept, s)
		}
	}
	v.selection = kept

	if i, ok := visible[cursorPath]; ok {
		v.cursor = i
	} else {
		v.SetCursor(v.cursor)
	}
	v.SetOffset(v.offset)
}

// annotate refreshes mark flags only.
func (v *SubView) annotate() {
	projection.Annotate(v.rows, v.pane.marks())
}

// rebind points the view at a new folder, keeping target visible.
func (v *SubView) rebind(path, target string) {
	v.path = path
	v.target = target
	v.selection = nil
	v.cursor = 0
	v.offset = 0
	v.refresh()
	if target != path {
		for i, r := range v.rows {
			if r.Path == target {
				v.cursor = i
				break
			}
		}
	}
}

// selectedDirs returns selected directories in projection order.
func (v *SubView) selectedDirs() []string {
	var out []string
	for _, r := range v.rows {
		if r.IsDir && v.IsSelected(r.Path) {
			out = append(out, r.Path)
		}
	}
	return out
}

// selectedAll returns every selected path in projection order.
func (v *SubView) selectedAll() []string {
	var out []string
	for _, r := range v.rows {
		if v.IsSelected(r.Path) {
			out = append(out, r.Path)
		}
	}
	return out
}

type childLister struct{ env *Env }

func (c childLister) List(path string) ([]projection.Entry, error) {
	if c.env.Lister == nil {
		return nil, nil
	}
	return c.env.Lister.List(path)
}

func baseName(p string) string {
	if b := filepath.Base(p); b != "" && b != string(filepath.Separator) && b != "." {
		return b
	}
	return p
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

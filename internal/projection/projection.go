// Package projection computes the visible, ordered rows of a directory
// listing for a SubView: hidden/mode/search filtering, target-path rescue,
// directories-first sorting and mark annotation.
package projection

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry is one raw item of a directory listing.
type Entry struct {
	Path    string
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Ext returns the lowercased extension without the dot.
func (e Entry) Ext() string {
	if e.IsDir {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(e.Name)), ".")
}

// DisplayMode selects which kinds of entries are shown.
type DisplayMode int

const (
	ModeAll DisplayMode = iota
	ModeDirsOnly
	ModeFilesOnly
)

// Next rotates All -> DirsOnly -> FilesOnly -> All.
func (m DisplayMode) Next() DisplayMode {
	return (m + 1) % 3
}

// Valid reports whether m is one of the defined modes.
func (m DisplayMode) Valid() bool {
	return m >= ModeAll && m <= ModeFilesOnly
}

func (m DisplayMode) String() string {
	switch m {
	case ModeDirsOnly:
		return "Dirs"
	case ModeFilesOnly:
		return "Files"
	default:
		return "All"
	}
}

// SortColumn identifies the active sort key. The numeric values are the
// persisted sort_col values.
type SortColumn int

const (
	SortName     SortColumn = 0
	SortSize     SortColumn = 1
	SortType     SortColumn = 2
	SortModified SortColumn = 3
)

// Valid reports whether c is a known column.
func (c SortColumn) Valid() bool {
	return c >= SortName && c <= SortModified
}

func (c SortColumn) String() string {
	switch c {
	case SortSize:
		return "Size"
	case SortType:
		return "Type"
	case SortModified:
		return "Date"
	default:
		return "Name"
	}
}

// SortOrder is the sort direction; 0 ascending, 1 descending as persisted.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// Flip returns the opposite direction.
func (o SortOrder) Flip() SortOrder {
	if o == Ascending {
		return Descending
	}
	return Ascending
}

func (o SortOrder) String() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

// Sort is the pane-wide sort setting.
type Sort struct {
	Column SortColumn
	Order  SortOrder
}

// MarkSet is the read side of a mark bucket.
type MarkSet interface {
	IsMarked(path string) bool
}

// ChildLister lists a directory's children. Recursive search uses it to
// look below the projection root.
type ChildLister interface {
	List(path string) ([]Entry, error)
}

// DefaultSearchDepth bounds how far below a directory entry the recursive
// search looks for a match.
const DefaultSearchDepth = 8

// Config is everything that determines a projection besides the listing.
type Config struct {
	Mode        DisplayMode
	ShowHidden  bool
	SearchText  string
	TargetRoot  string
	Marks       MarkSet
	Sort        Sort
	SearchDepth int
}

// Row is a projected entry.
type Row struct {
	Entry
	Marked bool
}

// Project filters and sorts entries, the children of root, under cfg.
// children may be nil when no search is active.
func Project(root string, entries []Entry, cfg Config, children ChildLister) []Row {
	s := &searcher{
		needle:   strings.ToLower(cfg.SearchText),
		children: children,
		depth:    cfg.SearchDepth,
		memo:     make(map[string]bool),
	}
	if s.depth <= 0 {
		s.depth = DefaultSearchDepth
	}

	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		if !visible(root, e, cfg, s) {
			continue
		}
		rows = append(rows, Row{Entry: e})
	}

	SortRows(rows, cfg.Sort)
	Annotate(rows, cfg.Marks)
	return rows
}

// Annotate refreshes the Marked flag of every row without refiltering.
func Annotate(rows []Row, marks MarkSet) {
	for i := range rows {
		rows[i].Marked = marks != nil && marks.IsMarked(rows[i].Path)
	}
}

func visible(root string, e Entry, cfg Config, s *searcher) bool {
	if e.Name == "." || e.Name == ".." {
		return false
	}
	if OnTargetPath(root, cfg.TargetRoot, e.Path) {
		return true
	}
	if s.needle != "" && !s.matches(e, 0) {
		return false
	}
	if IsHidden(e.Name) && !cfg.ShowHidden {
		return false
	}
	switch cfg.Mode {
	case ModeDirsOnly:
		return e.IsDir
	case ModeFilesOnly:
		return !e.IsDir
	}
	return true
}

// IsHidden reports whether name is a dot entry other than "." and "..".
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// OnTargetPath reports whether path is target itself or one of its
// ancestors strictly below root. Comparison is case-insensitive.
func OnTargetPath(root, target, path string) bool {
	if target == "" || path == "" {
		return false
	}
	t := strings.ToLower(filepath.Clean(target))
	p := strings.ToLower(filepath.Clean(path))
	r := strings.ToLower(filepath.Clean(root))
	if p == r {
		return false
	}
	if t == p {
		return true
	}
	sep := string(filepath.Separator)
	if !strings.HasSuffix(p, sep) {
		p += sep
	}
	return strings.HasPrefix(t, p)
}

type searcher struct {
	needle   string
	children ChildLister
	depth    int
	memo     map[string]bool
}

// matches reports whether e or any descendant has a name containing the
// needle.
func (s *searcher) matches(e Entry, level int) bool {
	if strings.Contains(strings.ToLower(e.Name), s.needle) {
		return true
	}
	if !e.IsDir || s.children == nil || level >= s.depth {
		return false
	}
	if hit, ok := s.memo[e.Path]; ok {
		return hit
	}
	s.memo[e.Path] = false
	kids, err := s.children.List(e.Path)
	if err != nil {
		return false
	}
	for _, k := range kids {
		if s.matches(k, level+1) {
			s.memo[e.Path] = true
			return true
		}
	}
	return false
}

// SortRows orders rows directories-first, then by the active column and
// direction, then by ascending name.
func SortRows(rows []Row, s Sort) {
	sort.SliceStable(rows, func(i, j int) bool {
		return Less(rows[i].Entry, rows[j].Entry, s)
	})
}

// Less is the projection ordering.
func Less(a, b Entry, s Sort) bool {
	if a.IsDir != b.IsDir {
		return a.IsDir
	}
	if c := compareColumn(a, b, s.Column); c != 0 {
		if s.Order == Descending {
			return c > 0
		}
		return c < 0
	}
	return compareName(a, b) < 0
}

func compareColumn(a, b Entry, col SortColumn) int {
	switch col {
	case SortSize:
		return compareInt64(a.Size, b.Size)
	case SortModified:
		return a.ModTime.Compare(b.ModTime)
	case SortType:
		return strings.Compare(a.Ext(), b.Ext())
	default:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
}

// compareName breaks ties deterministically.
func compareName(a, b Entry) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.Path, b.Path)
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

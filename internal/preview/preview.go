// Package preview is the quick look surface. The flow core only calls
// ShowArtifact with the settled single selection; everything about how a
// file is shown lives here.
package preview

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/cellbuf"

	"github.com/wilbur182/flowfiler/internal/dirmodel"
	"github.com/wilbur182/flowfiler/internal/styles"
)

const (
	// DefaultMaxBytes caps how much of a file is read for preview.
	DefaultMaxBytes = 500 * 1024
	maxPreviewLines = 10000
	maxDirEntries   = 200
)

// Kind classifies an artifact.
type Kind int

const (
	KindNone Kind = iota
	KindText
	KindMarkdown
	KindDirectory
	KindImage
	KindBinary
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMarkdown:
		return "markdown"
	case KindDirectory:
		return "directory"
	case KindImage:
		return "image"
	case KindBinary:
		return "binary"
	case KindError:
		return "error"
	}
	return "none"
}

// Artifact is a loaded preview, independent of the display width.
type Artifact struct {
	Path      string
	Kind      Kind
	Content   string
	Lines     []string // highlighted for text, names for directories
	Size      int64
	ModTime   time.Time
	Mode      os.FileMode
	Dirs      int
	Files     int
	Truncated bool
	Err       error
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".webp": true, ".ico": true, ".tiff": true,
}

var markdownExts = map[string]bool{".md": true, ".markdown": true, ".mdown": true}

// Load reads path into an Artifact. Directories are listed through lister.
func Load(path string, maxBytes int64, lister dirmodel.Lister) Artifact {
	a := Artifact{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		a.Kind, a.Err = KindError, err
		return a
	}
	a.Size, a.ModTime, a.Mode = info.Size(), info.ModTime(), info.Mode()

	if info.IsDir() {
		a.Kind = KindDirectory
		if lister == nil {
			a.Kind, a.Err = KindError, fmt.Errorf("no lister for %s", path)
			return a
		}
		entries, err := lister.List(path)
		if err != nil {
			a.Kind, a.Err = KindError, err
			return a
		}
		for _, e := range entries {
			if e.IsDir {
				a.Dirs++
			} else {
				a.Files++
			}
			if len(a.Lines) < maxDirEntries {
				name := e.Name
				if e.IsDir {
					name += string(filepath.Separator)
				}
				a.Lines = append(a.Lines, name)
			}
		}
		a.Truncated = len(entries) > maxDirEntries
		return a
	}

	ext := strings.ToLower(filepath.Ext(path))
	if imageExts[ext] {
		a.Kind = KindImage
		return a
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	readSize := info.Size()
	if readSize > maxBytes {
		readSize = maxBytes
		a.Truncated = true
	}
	f, err := os.Open(path)
	if err != nil {
		a.Kind, a.Err = KindError, err
		return a
	}
	defer f.Close()

	data := make([]byte, readSize)
	n, _ := f.Read(data)
	data = data[:n]

	if isBinary(data) {
		a.Kind = KindBinary
		return a
	}

	a.Content = string(data)
	if markdownExts[ext] {
		a.Kind = KindMarkdown
		return a
	}

	a.Kind = KindText
	raw := strings.Split(a.Content, "\n")
	if highlighted, err := Highlight(a.Content, filepath.Base(path), styles.GetSyntaxTheme()); err == nil {
		a.Lines = strings.Split(highlighted, "\n")
	} else {
		a.Lines = raw
	}
	if len(a.Lines) > maxPreviewLines {
		a.Lines = a.Lines[:maxPreviewLines]
		a.Truncated = true
	}
	return a
}

// Highlight returns a syntax highlighted string. The lexer is picked from
// the file name.
func Highlight(content, name, syntaxTheme string) (string, error) {
	buf := new(bytes.Buffer)
	if err := quick.Highlight(buf, content, name, "terminal256", syntaxTheme); err != nil {
		return "", fmt.Errorf("highlight: %w", err)
	}
	return buf.String(), nil
}

// isBinary checks if data contains null bytes in first 512 bytes.
func isBinary(data []byte) bool {
	checkLen := 512
	if len(data) < checkLen {
		checkLen = len(data)
	}
	return bytes.Contains(data[:checkLen], []byte{0})
}

// QuickLook is the preview surface shown over the active lane.
type QuickLook struct {
	visible  bool
	artifact Artifact
	maxBytes int64
	lister   dirmodel.Lister
	markdown *MarkdownRenderer
	logger   *slog.Logger
}

// NewQuickLook creates a hidden quick look.
func NewQuickLook(lister dirmodel.Lister, maxBytes int64, logger *slog.Logger) *QuickLook {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuickLook{
		maxBytes: maxBytes,
		lister:   lister,
		markdown: NewMarkdownRenderer(logger),
		logger:   logger,
	}
}

// Visible reports whether the surface is open.
func (q *QuickLook) Visible() bool { return q.visible }

// ShowArtifact loads path into the surface.
func (q *QuickLook) ShowArtifact(path string) {
	if q.artifact.Path == path && q.artifact.Kind != KindError && !q.stale() {
		return
	}
	q.artifact = Load(path, q.maxBytes, q.lister)
	if q.artifact.Err != nil {
		q.logger.Debug("preview load failed", "path", path, "error", q.artifact.Err)
	}
}

// stale reports whether the loaded file changed on disk.
func (q *QuickLook) stale() bool {
	info, err := os.Stat(q.artifact.Path)
	if err != nil {
		return true
	}
	return !info.ModTime().Equal(q.artifact.ModTime) || info.Size() != q.artifact.Size
}

// Open shows the surface with path.
func (q *QuickLook) Open(path string) {
	q.visible = true
	q.ShowArtifact(path)
}

// Close hides the surface.
func (q *QuickLook) Close() { q.visible = false }

// Artifact returns the loaded artifact.
func (q *QuickLook) Artifact() Artifact { return q.artifact }

// Title is the header line of the surface.
func (q *QuickLook) Title() string {
	a := q.artifact
	if a.Path == "" {
		return "Quick Look"
	}
	name := filepath.Base(a.Path)
	switch a.Kind {
	case KindDirectory:
		return fmt.Sprintf("%s  %d folders, %d files", name, a.Dirs, a.Files)
	case KindError:
		return name
	}
	return fmt.Sprintf("%s  %s  %s", name, FormatSize(a.Size), a.ModTime.Format("2006-01-02 15:04"))
}

// Lines renders the artifact for a surface width columns wide.
func (q *QuickLook) Lines(width int) []string {
	if width < 1 {
		return nil
	}
	a := q.artifact
	var lines []string
	switch a.Kind {
	case KindNone:
		return []string{styles.Muted.Render("Nothing selected")}
	case KindError:
		return []string{styles.ToastError.Render("Cannot preview"), ansi.Truncate(a.Err.Error(), width, "…")}
	case KindBinary:
		return []string{styles.Muted.Render(fmt.Sprintf("Binary file, %s", FormatSize(a.Size)))}
	case KindImage:
		return []string{
			styles.Muted.Render("Image"),
			fmt.Sprintf("%s  %s", FormatSize(a.Size), a.Mode),
			a.ModTime.Format(time.RFC1123),
		}
	case KindMarkdown:
		lines = q.markdown.Render(a.Content, width)
	case KindDirectory:
		for _, name := range a.Lines {
			lines = append(lines, ansi.Truncate(name, width, "…"))
		}
	case KindText:
		for _, l := range a.Lines {
			lines = append(lines, wrapLine(l, width)...)
		}
	}
	if a.Truncated {
		lines = append(lines, styles.Muted.Render("(truncated)"))
	}
	return lines
}

// wrapLine soft-wraps one possibly styled line to width. cellbuf keeps
// the escape sequences intact across breaks.
func wrapLine(line string, width int) []string {
	line = strings.ReplaceAll(line, "\t", "    ")
	if ansi.StringWidth(line) <= width {
		return []string{line}
	}
	return strings.Split(cellbuf.Wrap(line, width, ""), "\n")
}

// FormatSize renders a byte count in binary units.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

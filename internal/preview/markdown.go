package preview

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/glamour"

	"github.com/wilbur182/flowfiler/internal/styles"
)

const (
	// minMarkdownWidth is the narrowest quick look glamour renders into;
	// below it the source is shown wrapped.
	minMarkdownWidth = 30

	maxRenderedDocs = 64
)

// MarkdownRenderer renders markdown documents for the quick look panel.
// Output is cached by document, width and glamour style.
type MarkdownRenderer struct {
	mu        sync.Mutex
	term      *glamour.TermRenderer
	termStyle string
	termWidth int
	rendered  map[uint64][]string
	logger    *slog.Logger
}

func NewMarkdownRenderer(logger *slog.Logger) *MarkdownRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarkdownRenderer{rendered: make(map[uint64][]string), logger: logger}
}

// Render returns doc as styled lines no wider than width.
func (r *MarkdownRenderer) Render(doc string, width int) []string {
	if doc == "" {
		return nil
	}
	if width < minMarkdownWidth {
		return sourceLines(doc, width)
	}

	style := styles.GetMarkdownTheme()
	key := docKey(doc, style, width)

	r.mu.Lock()
	defer r.mu.Unlock()
	if lines, ok := r.rendered[key]; ok {
		return lines
	}

	term, err := r.termFor(style, width)
	if err != nil {
		r.logger.Warn("markdown renderer unavailable", "style", style, "error", err)
		return sourceLines(doc, width)
	}
	out, err := term.Render(doc)
	if err != nil {
		r.logger.Warn("markdown render failed", "error", err)
		return sourceLines(doc, width)
	}

	lines := strings.Split(strings.TrimRight(out, "\n\r\t "), "\n")
	if len(r.rendered) >= maxRenderedDocs {
		clear(r.rendered)
	}
	r.rendered[key] = lines
	return lines
}

// termFor reuses the glamour renderer while style and width are unchanged.
// Callers hold r.mu.
func (r *MarkdownRenderer) termFor(style string, width int) (*glamour.TermRenderer, error) {
	if r.term != nil && r.termStyle == style && r.termWidth == width {
		return r.term, nil
	}
	term, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.term, r.termStyle, r.termWidth = term, style, width
	return term, nil
}

func docKey(doc, style string, width int) uint64 {
	d := xxhash.New()
	d.WriteString(style)
	d.Write([]byte{0, byte(width >> 8), byte(width)})
	d.WriteString(doc)
	return d.Sum64()
}

// sourceLines wraps the raw document line by line.
func sourceLines(doc string, width int) []string {
	var lines []string
	for _, l := range strings.Split(doc, "\n") {
		lines = append(lines, wrapLine(l, max(width, 1))...)
	}
	return lines
}

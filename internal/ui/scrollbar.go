package ui

import "github.com/wilbur182/flowfiler/internal/styles"

// ScrollbarParams configures a vertical scrollbar rendering.
type ScrollbarParams struct {
	TotalItems   int // rows in the listing
	ScrollOffset int // first visible row
	VisibleItems int // rows that fit
	TrackHeight  int // track height in terminal rows
}

// ScrollbarLines returns TrackHeight one-cell strings. When everything
// fits the track is blank so the column width stays reserved.
func ScrollbarLines(params ScrollbarParams) []string {
	if params.TrackHeight < 1 {
		return nil
	}
	lines := make([]string, params.TrackHeight)

	if params.TotalItems <= params.VisibleItems {
		for i := range lines {
			lines[i] = " "
		}
		return lines
	}

	thumbPos, thumbSize := ThumbRange(params)

	trackChar := styles.ScrollTrack.Render("│")
	thumbChar := styles.ScrollThumb.Render("┃")

	for i := range lines {
		if i >= thumbPos && i < thumbPos+thumbSize {
			lines[i] = thumbChar
		} else {
			lines[i] = trackChar
		}
	}
	return lines
}

// ThumbRange returns the thumb's first row and size, for tests and hit
// testing. size is 0 when no scrollbar is needed.
func ThumbRange(params ScrollbarParams) (pos, size int) {
	if params.TrackHeight < 1 || params.TotalItems <= params.VisibleItems {
		return 0, 0
	}
	size = max(1, min((params.VisibleItems*params.TrackHeight)/params.TotalItems, params.TrackHeight))
	maxOffset := max(1, params.TotalItems-params.VisibleItems)
	pos = max(0, min((params.ScrollOffset*(params.TrackHeight-size))/maxOffset, params.TrackHeight-size))
	return pos, size
}

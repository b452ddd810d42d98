package command

import (
	"fmt"
	"os"
	"strings"
)

// Item is one context menu entry. Header items are section titles and
// carry no command.
type Item struct {
	Label   string
	Command Command
	Header  bool
}

// MenuContext is what the context menu is built from.
type MenuContext struct {
	// Selected are the existing paths selected across the pane's views.
	Selected []string
	// Marked are the existing paths in the tab's mark bucket.
	Marked []string
	// IsMarked reports bucket membership for Selected.
	IsMarked func(path string) bool
	// ClipboardFull is true when a paste would do something.
	ClipboardFull bool
	// PasteDir is the folder under the pointer, or the focused folder.
	PasteDir string
}

var officeExts = []string{".docx", ".doc", ".xlsx", ".xls"}

// IsOffice reports whether path looks like a convertible office document.
func IsOffice(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range officeExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// OfficeFiles filters paths to office documents that are not folders.
func OfficeFiles(paths []string) []string {
	var out []string
	for _, p := range paths {
		if IsOffice(p) && !isDir(p) {
			out = append(out, p)
		}
	}
	return out
}

// Menu builds the context menu for a selection.
func Menu(ctx MenuContext) []Item {
	var items []Item
	paths := ctx.Selected

	if n := len(ctx.Marked); n > 0 {
		items = append(items, Item{Label: fmt.Sprintf("★ Batch Actions (%d marked)", n), Header: true})
		if office := OfficeFiles(ctx.Marked); len(office) > 0 {
			items = append(items, Item{
				Label:   fmt.Sprintf("Convert %d marked office files to PDF", len(office)),
				Command: WithPaths(ConvertPDF, office...),
			})
		}
		items = append(items,
			Item{Label: fmt.Sprintf("Copy %d marked items", n), Command: WithPaths(Copy, ctx.Marked...)},
			Item{Label: fmt.Sprintf("Cut/Move %d marked items", n), Command: WithPaths(Cut, ctx.Marked...)},
			Item{Label: "Clear All Marks", Command: New(ClearMarks)},
			Item{Label: "", Header: true},
		)
	}

	if len(paths) > 0 {
		var marked, unmarked bool
		for _, p := range paths {
			if ctx.IsMarked != nil && ctx.IsMarked(p) {
				marked = true
			} else {
				unmarked = true
			}
		}
		if unmarked {
			items = append(items, Item{Label: "Mark Selected (Add to Bucket)", Command: WithPaths(MarkSelected, paths...)})
		}
		if marked {
			items = append(items, Item{Label: "Unmark Selected (Remove from Bucket)", Command: WithPaths(UnmarkSelected, paths...)})
		}

		items = append(items,
			Item{Label: "Create Shortcut", Command: WithPaths(CreateShortcut, paths...)},
			Item{Label: "Open", Command: WithPaths(OpenSelected, paths...)},
		)
		if office := OfficeFiles(paths); len(office) > 0 {
			label := "Convert to PDF"
			if len(office) > 1 {
				label = fmt.Sprintf("Convert %d files to PDF", len(office))
			}
			items = append(items, Item{Label: label, Command: WithPaths(ConvertPDF, office...)})
		}
		items = append(items, Item{Label: "Reveal in File Manager", Command: WithPaths(Reveal, paths[0])})
		if len(paths) == 1 {
			items = append(items, Item{Label: "Properties", Command: WithPaths(Properties, paths[0])})
		}
		items = append(items,
			Item{Label: "Copy Full Path", Command: Command{Kind: CopyPath, Paths: paths, Index: 0}},
			Item{Label: "Copy Name", Command: Command{Kind: CopyPath, Paths: paths, Index: 1}},
			Item{Label: "Copy Parent Folder", Command: Command{Kind: CopyPath, Paths: paths, Index: 2}},
			Item{Label: `Copy as "Path"`, Command: Command{Kind: CopyPath, Paths: paths, Index: 3}},
			Item{Label: "Terminal Here", Command: WithPaths(Terminal, paths[0])},
			Item{Label: "Compress to ZIP...", Command: WithPaths(Zip, paths...)},
		)
		if zips := zipFiles(paths); len(zips) > 0 {
			items = append(items, Item{Label: "Extract Here (Smart)", Command: WithPaths(Unzip, zips...)})
		}
	}

	items = append(items, Item{Label: "New Folder", Command: New(NewFolder)})

	if len(paths) > 0 {
		suffix := countSuffix(paths)
		items = append(items,
			Item{Label: "Cut" + suffix, Command: WithPaths(Cut, paths...)},
			Item{Label: "Copy" + suffix, Command: WithPaths(Copy, paths...)},
		)
	}
	if ctx.ClipboardFull {
		items = append(items, Item{Label: "Paste", Command: WithPaths(Paste, ctx.PasteDir)})
	}
	if len(paths) > 0 {
		allDirs := true
		for _, p := range paths {
			if !isDir(p) {
				allDirs = false
				break
			}
		}
		if allDirs {
			items = append(items, Item{Label: "Add to Favorites", Command: WithPaths(AddFavorite, paths...)})
		}
		items = append(items,
			Item{Label: "Rename", Command: WithPaths(Rename, paths[0])},
			Item{Label: "Delete", Command: WithPaths(Delete, paths...)},
		)
	}
	return items
}

// countSuffix labels a multi-selection, e.g. " (2 files, 1 dirs)".
func countSuffix(paths []string) string {
	if len(paths) < 2 {
		return ""
	}
	var files, dirs int
	for _, p := range paths {
		if isDir(p) {
			dirs++
		} else {
			files++
		}
	}
	var parts []string
	if files > 0 {
		parts = append(parts, fmt.Sprintf("%d files", files))
	}
	if dirs > 0 {
		parts = append(parts, fmt.Sprintf("%d dirs", dirs))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func zipFiles(paths []string) []string {
	var out []string
	for _, p := range paths {
		if strings.HasSuffix(strings.ToLower(p), ".zip") && !isDir(p) {
			out = append(out, p)
		}
	}
	return out
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

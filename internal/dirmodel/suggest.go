package dirmodel

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest returns the existing directory closest to a mistyped path: the
// deepest existing ancestor is kept and the first missing component is
// matched against that ancestor's subdirectories by edit distance. It
// returns "" when nothing is close enough.
func Suggest(path string) string {
	path = filepath.Clean(path)
	missing := ""
	parent := path
	for !Exists(parent) {
		next := filepath.Dir(parent)
		if next == parent {
			return ""
		}
		missing = filepath.Base(parent)
		parent = next
	}
	if missing == "" {
		return ""
	}

	des, err := os.ReadDir(parent)
	if err != nil {
		return ""
	}

	want := strings.ToLower(missing)
	limit := max(2, len(want)/3)
	best, bestDist := "", limit+1
	for _, de := range des {
		if !de.IsDir() {
			continue
		}
		d := levenshtein.ComputeDistance(want, strings.ToLower(de.Name()))
		if d < bestDist {
			best, bestDist = de.Name(), d
		}
	}
	if best == "" {
		return ""
	}
	return filepath.Join(parent, best)
}

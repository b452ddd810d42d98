package projection

// Continuity orders a new selection so that paths already present in the
// previous selection keep their previous relative order and come first,
// followed by newly selected paths in the order given by current.
func Continuity(previous, current []string) []string {
	inCurrent := make(map[string]bool, len(current))
	for _, p := range current {
		inCurrent[p] = true
	}

	out := make([]string, 0, len(current))
	seen := make(map[string]bool, len(current))
	for _, p := range previous {
		if inCurrent[p] && !seen[p] {
			out = append(out, p)
			seen[p] = true
		}
	}
	for _, p := range current {
		if !seen[p] {
			out = append(out, p)
			seen[p] = true
		}
	}
	return out
}

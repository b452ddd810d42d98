// Package marks holds the tab-scoped bucket of marked paths.
package marks

import (
	"path/filepath"
	"sort"
)

// Bucket is a set of absolute paths with change subscribers. It is owned by
// one flow area and used from the UI goroutine only.
type Bucket struct {
	paths map[string]struct{}
	subs  map[int]func()
	next  int
}

// NewBucket returns an empty bucket.
func NewBucket() *Bucket {
	return &Bucket{
		paths: make(map[string]struct{}),
		subs:  make(map[int]func()),
	}
}

// Mark adds paths and notifies subscribers once if anything changed.
func (b *Bucket) Mark(paths ...string) {
	changed := false
	for _, p := range paths {
		p = normalize(p)
		if p == "" {
			continue
		}
		if _, ok := b.paths[p]; !ok {
			b.paths[p] = struct{}{}
			changed = true
		}
	}
	if changed {
		b.notify()
	}
}

// Unmark removes paths and notifies subscribers once if anything changed.
func (b *Bucket) Unmark(paths ...string) {
	changed := false
	for _, p := range paths {
		p = normalize(p)
		if _, ok := b.paths[p]; ok {
			delete(b.paths, p)
			changed = true
		}
	}
	if changed {
		b.notify()
	}
}

// Toggle flips every path: marked ones are unmarked and the rest marked.
func (b *Bucket) Toggle(paths ...string) {
	changed := false
	for _, p := range paths {
		p = normalize(p)
		if p == "" {
			continue
		}
		if _, ok := b.paths[p]; ok {
			delete(b.paths, p)
		} else {
			b.paths[p] = struct{}{}
		}
		changed = true
	}
	if changed {
		b.notify()
	}
}

// IsMarked reports whether path is in the bucket.
func (b *Bucket) IsMarked(path string) bool {
	if b == nil {
		return false
	}
	_, ok := b.paths[normalize(path)]
	return ok
}

// Clear empties the bucket.
func (b *Bucket) Clear() {
	if len(b.paths) == 0 {
		return
	}
	b.paths = make(map[string]struct{})
	b.notify()
}

// Len returns the number of marked paths.
func (b *Bucket) Len() int {
	if b == nil {
		return 0
	}
	return len(b.paths)
}

// Paths returns the marked paths sorted.
func (b *Bucket) Paths() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.paths))
	for p := range b.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Subscribe registers fn to run after every change and returns a function
// that removes it.
func (b *Bucket) Subscribe(fn func()) (unsubscribe func()) {
	id := b.next
	b.next++
	b.subs[id] = fn
	return func() { delete(b.subs, id) }
}

func (b *Bucket) notify() {
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := b.subs[id]; ok {
			fn()
		}
	}
}

func normalize(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

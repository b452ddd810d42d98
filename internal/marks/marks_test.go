package marks

import (
	"reflect"
	"testing"
)

func TestBucketMarkUnmark(t *testing.T) {
	b := NewBucket()
	calls := 0
	unsub := b.Subscribe(func() { calls++ })

	b.Mark("/a", "/b", "/a")
	if calls != 1 {
		t.Errorf("calls after Mark = %d, want 1", calls)
	}
	if !b.IsMarked("/a") || !b.IsMarked("/b/") {
		t.Error("expected /a and /b marked")
	}

	b.Mark("/a")
	if calls != 1 {
		t.Errorf("no-op Mark notified, calls = %d", calls)
	}

	b.Unmark("/a", "/missing")
	if calls != 2 || b.IsMarked("/a") {
		t.Errorf("Unmark: calls = %d, marked = %v", calls, b.IsMarked("/a"))
	}

	b.Toggle("/b", "/c")
	if !reflect.DeepEqual(b.Paths(), []string{"/c"}) {
		t.Errorf("Paths = %v", b.Paths())
	}

	unsub()
	b.Clear()
	if calls != 3 {
		t.Errorf("unsubscribed callback ran, calls = %d", calls)
	}
	if b.Len() != 0 {
		t.Errorf("Len = %d after Clear", b.Len())
	}
}

func TestBucketsAreIndependent(t *testing.T) {
	a, b := NewBucket(), NewBucket()
	a.Mark("/shared")
	if b.IsMarked("/shared") {
		t.Error("mark leaked into another bucket")
	}
	var nilBucket *Bucket
	if nilBucket.IsMarked("/shared") || nilBucket.Len() != 0 {
		t.Error("nil bucket should be empty")
	}
}

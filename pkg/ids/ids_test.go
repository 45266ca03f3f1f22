package ids

import (
	"testing"
	"time"
)

func TestNewCarriesPrefix(t *testing.T) {
	id := New(Shift)
	if !HasPrefix(id, Shift) {
		t.Fatalf("expected %q to carry shift prefix", id)
	}
	if HasPrefix(id, Project) {
		t.Fatalf("expected %q not to carry project prefix", id)
	}
	if len(id) != len(Shift)+26 {
		t.Fatalf("unexpected id length %d", len(id))
	}
}

func TestNewFromTimeSortsByTime(t *testing.T) {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	first := NewFromTime(Screenshot, base)
	second := NewFromTime(Screenshot, base.Add(time.Second))
	if first >= second {
		t.Fatalf("expected %q < %q", first, second)
	}
}

package dynamo

import "testing"

func TestRing_EvictsOldest(t *testing.T) {
	r := NewRing[int](3)
	for i := 1; i <= 5; i++ {
		r.Push(i)
	}

	if r.Len() != 3 {
		t.Fatalf("expected len 3, got %d", r.Len())
	}

	got := r.Slice()
	want := []int{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Slice()[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if first, _ := r.First(); first != 3 {
		t.Errorf("First() = %d, want 3", first)
	}
	if last, _ := r.Last(); last != 5 {
		t.Errorf("Last() = %d, want 5", last)
	}
}

func TestRing_Empty(t *testing.T) {
	r := NewRing[float64](2)
	if _, ok := r.First(); ok {
		t.Error("expected no first element")
	}
	if _, ok := r.Last(); ok {
		t.Error("expected no last element")
	}

	r.Push(1)
	r.Clear()
	if r.Len() != 0 {
		t.Errorf("expected empty ring after Clear, got %d", r.Len())
	}
}

func TestRing_CloneIndependent(t *testing.T) {
	r := NewRing[int](2)
	r.Push(1)
	c := r.Clone()
	c.Push(2)
	c.Push(3)

	if r.Len() != 1 {
		t.Errorf("clone mutated original: len %d", r.Len())
	}
	if v := c.At(0); v != 2 {
		t.Errorf("clone At(0) = %d, want 2", v)
	}
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(1.5)
	c.Advance(0.25)
	if c.Now() != 1.75 {
		t.Errorf("Now() = %v, want 1.75", c.Now())
	}
	if d := TimeOf(2).Sub(TimeOf(1.5)); d.Seconds() != 0.5 {
		t.Errorf("TimeOf delta = %v, want 0.5s", d)
	}
}

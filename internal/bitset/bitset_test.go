package bitset

import "testing"

func TestFirstClear(t *testing.T) {
	s := New[uint32](32)
	for want := 0; want < 32; want++ {
		got, ok := s.Take()
		if !ok {
			t.Fatalf("Take() failed at %d", want)
		}
		if got != want {
			t.Errorf("Expected index %d, got %d", want, got)
		}
	}
	if _, ok := s.FirstClear(); ok {
		t.Error("Expected full set to report no clear bit")
	}
	if s.Len() != 32 {
		t.Errorf("Expected 32 members, got %d", s.Len())
	}

	s.Remove(7)
	if i, ok := s.FirstClear(); !ok || i != 7 {
		t.Errorf("Expected 7 after removal, got %d (%v)", i, ok)
	}
}

func TestCapacityBound(t *testing.T) {
	s := New[uint64](10)
	if s.Add(10) {
		t.Error("Add(10) should be out of range for capacity 10")
	}
	if s.Has(10) {
		t.Error("Has(10) should be false")
	}
	if ok := s.AddRange(0, 9); !ok {
		t.Error("AddRange(0, 9) should fit")
	}
	if _, ok := s.FirstClear(); ok {
		t.Error("Expected no clear bit below capacity")
	}
}

func TestNewPanicsOnOversize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for capacity 33 on uint32")
		}
	}()
	_ = New[uint32](33)
}

func TestWidth(t *testing.T) {
	if w := Width[uint8](); w != 8 {
		t.Errorf("Width[uint8] = %d, want 8", w)
	}
	if w := Width[uint32](); w != 32 {
		t.Errorf("Width[uint32] = %d, want 32", w)
	}
}

package cache

import "testing"

func TestConnectionStates_Swap(t *testing.T) {
	s := NewConnectionStates()

	if _, known := s.Swap("7", false); known {
		t.Fatalf("first observation must not be known")
	}

	prev, known := s.Swap("7", true)
	if !known || prev {
		t.Fatalf("expected previous=false known=true, got %v %v", prev, known)
	}

	prev, known = s.Swap("7", true)
	if !known || !prev {
		t.Fatalf("expected previous=true known=true, got %v %v", prev, known)
	}

	if connected, known := s.Get("7"); !known || !connected {
		t.Fatalf("expected connected state")
	}
	if _, known := s.Get("8"); known {
		t.Fatalf("unexpected state for unseen tenant")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 tenant, got %d", s.Len())
	}
}

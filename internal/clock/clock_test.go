package clock

import (
	"testing"
	"time"
)

func TestFakeAdvance(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := NewFake(start)

	if !f.Now().Equal(start) {
		t.Fatalf("Expected %v, got %v", start, f.Now())
	}

	f.Advance(90 * time.Minute)
	if want := start.Add(90 * time.Minute); !f.Now().Equal(want) {
		t.Errorf("Expected %v after advance, got %v", want, f.Now())
	}

	f.Set(start)
	if !f.Now().Equal(start) {
		t.Errorf("Expected clock reset to %v, got %v", start, f.Now())
	}
}

func TestOrReal(t *testing.T) {
	if _, ok := OrReal(nil).(Real); !ok {
		t.Error("Expected nil clock to fall back to Real")
	}

	f := NewFake(time.Unix(0, 0))
	if OrReal(f) != Clock(f) {
		t.Error("Expected non-nil clock to be returned unchanged")
	}
}

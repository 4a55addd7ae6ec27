package clock

import (
	"testing"
	"time"
)

func TestToday(t *testing.T) {
	c := Fixed(time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC))
	if got := Today(c, time.UTC); got != "2024-01-01" {
		t.Errorf("expected 2024-01-01, got %s", got)
	}
	if got := Today(c, time.FixedZone("plus1", 3600)); got != "2024-01-02" {
		t.Errorf("expected 2024-01-02, got %s", got)
	}
}

func TestManualAdvance(t *testing.T) {
	start := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	m := NewManual(start)
	m.Advance(24 * time.Hour)
	if got := Today(m, nil); got != "2024-03-11" {
		t.Errorf("expected 2024-03-11 after advance, got %s", got)
	}
	m.Set(start)
	if !m.Now().Equal(start) {
		t.Errorf("expected %v after set, got %v", start, m.Now())
	}
}

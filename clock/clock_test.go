// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package clock

import (
	"testing"
	"time"
)

func TestSystemClockZone(t *testing.T) {
	c, err := System("")
	if err != nil {
		t.Fatalf("System failed: %v", err)
	}
	if c.Location().String() != DefaultZone {
		t.Errorf("Expected zone %q, got %q", DefaultZone, c.Location())
	}
	if c.Now().Location() != c.Location() {
		t.Error("Now() should report the clock's zone")
	}
}

func TestSystemClockBadZone(t *testing.T) {
	_, err := System("Not/AZone")
	if err == nil {
		t.Error("Expected error for unknown zone")
	}
}

func TestManualClock(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	m := NewManual(start)

	if !m.Now().Equal(start) {
		t.Errorf("Expected %v, got %v", start, m.Now())
	}

	m.Advance(2 * time.Hour)
	if !m.Now().Equal(start.Add(2 * time.Hour)) {
		t.Errorf("Advance did not move the clock: %v", m.Now())
	}

	later := start.AddDate(0, 1, 0)
	m.Set(later)
	if !m.Now().Equal(later) {
		t.Errorf("Set did not move the clock: %v", m.Now())
	}
}

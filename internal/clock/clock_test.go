package clock

import (
	"testing"
	"time"
)

func TestDayKey(t *testing.T) {
	ts := time.Date(2026, 8, 29, 23, 59, 59, 0, time.UTC)
	if got := DayKey(ts); got != "2026-08-29" {
		t.Fatalf("DayKey = %q, want 2026-08-29", got)
	}
}

func TestDayKeyFollowsLocation(t *testing.T) {
	// 23:30 in New York on the 29th is already the 30th in UTC. The key
	// must follow the clock's own location, not the Time's original one.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	ts := time.Date(2026, 8, 29, 23, 30, 0, 0, ny)
	if got := DayKey(ts); got != "2026-08-29" {
		t.Fatalf("DayKey = %q, want 2026-08-29", got)
	}
	if got := DayKey(ts.UTC()); got != "2026-08-30" {
		t.Fatalf("DayKey(UTC) = %q, want 2026-08-30", got)
	}
}

func TestParseDayKey(t *testing.T) {
	if _, err := ParseDayKey("2026-08-29"); err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}
	for _, bad := range []string{"", "29-08-2026", "2026-13-01", "2026-08-29T10:00:00Z"} {
		if _, err := ParseDayKey(bad); err == nil {
			t.Fatalf("ParseDayKey(%q) accepted", bad)
		}
	}
}

func TestNewSystemDefaultsToUTC(t *testing.T) {
	clk := NewSystem(nil)
	if loc := clk.Now().Location(); loc != time.UTC {
		t.Fatalf("location = %v, want UTC", loc)
	}
}

func TestFixed(t *testing.T) {
	ts := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	clk := Fixed{T: ts}
	if !clk.Now().Equal(ts) {
		t.Fatal("Fixed clock must return the frozen instant")
	}
}

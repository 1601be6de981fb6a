package markethours

import (
	"testing"
	"time"
)

func TestIsMarketOpen(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"tuesday mid-session", time.Date(2026, 8, 18, 11, 0, 0, 0, IST), true},
		{"session open", time.Date(2026, 8, 18, 9, 15, 0, 0, IST), true},
		{"before open", time.Date(2026, 8, 18, 9, 14, 0, 0, IST), false},
		{"session close", time.Date(2026, 8, 18, 15, 30, 0, 0, IST), false},
		{"last minute", time.Date(2026, 8, 18, 15, 29, 0, 0, IST), true},
		{"saturday", time.Date(2026, 8, 22, 11, 0, 0, 0, IST), false},
		{"sunday", time.Date(2026, 8, 23, 11, 0, 0, 0, IST), false},
		{"republic day", time.Date(2026, 1, 26, 11, 0, 0, 0, IST), false},
		{"utc conversion", time.Date(2026, 8, 18, 5, 30, 0, 0, time.UTC), true}, // 11:00 IST
	}
	for _, tt := range tests {
		if got := IsMarketOpen(tt.t); got != tt.want {
			t.Errorf("%s: IsMarketOpen = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsTradingDay(t *testing.T) {
	if IsTradingDay(time.Date(2026, 8, 22, 11, 0, 0, 0, IST)) {
		t.Error("saturday reported as trading day")
	}
	if IsTradingDay(time.Date(2026, 10, 2, 11, 0, 0, 0, IST)) {
		t.Error("Gandhi Jayanti reported as trading day")
	}
	if !IsTradingDay(time.Date(2026, 8, 18, 11, 0, 0, 0, IST)) {
		t.Error("ordinary tuesday not a trading day")
	}
}

func TestNextOpen(t *testing.T) {
	// Early Tuesday morning: opens the same day.
	got := NextOpen(time.Date(2026, 8, 18, 7, 0, 0, 0, IST))
	want := time.Date(2026, 8, 18, 9, 15, 0, 0, IST)
	if !got.Equal(want) {
		t.Errorf("NextOpen same day = %s, want %s", got, want)
	}

	// Friday after close: skips the weekend to Monday.
	got = NextOpen(time.Date(2026, 8, 21, 16, 0, 0, 0, IST))
	want = time.Date(2026, 8, 24, 9, 15, 0, 0, IST)
	if !got.Equal(want) {
		t.Errorf("NextOpen over weekend = %s, want %s", got, want)
	}
}

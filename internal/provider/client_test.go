package provider

import (
	"testing"
)

func TestParseCandles_DropsMalformedRows(t *testing.T) {
	body := []byte(`{
		"status": true,
		"data": [
			["2026-08-21T09:15:00Z", 100, 102, 99, 101, 5000],
			["not-a-timestamp", 100, 102, 99, 101, 5000],
			["2026-08-21T09:20:00Z", 101, 103, 100, "oops", 4000],
			["2026-08-21T09:25:00Z", 101, 103, 100, 102],
			["2026-08-21T09:30:00Z", 102, 101, 100, 103, 3000],
			["2026-08-21T09:20:00Z", 101, 103, 100, 102, 4000]
		]
	}`)
	// Rows: one good, bad timestamp, non-numeric close, too few fields,
	// high below close, one good.
	series, err := parseCandles("RELIANCE", body)
	if err != nil {
		t.Fatalf("parseCandles: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("got %d candles, want 2", len(series))
	}
	if series[0].Close != 101 || series[1].Close != 102 {
		t.Errorf("closes = %.0f, %.0f, want 101, 102", series[0].Close, series[1].Close)
	}
	if !series[0].TS.Before(series[1].TS) {
		t.Error("series not ascending")
	}
}

func TestParseCandles_OutOfOrderNormalized(t *testing.T) {
	body := []byte(`{
		"status": true,
		"data": [
			["2026-08-21T09:25:00Z", 102, 104, 101, 103, 3000],
			["2026-08-21T09:15:00Z", 100, 102, 99, 101, 5000],
			["2026-08-21T09:20:00Z", 101, 103, 100, 102, 4000]
		]
	}`)
	series, err := parseCandles("TCS", body)
	if err != nil {
		t.Fatalf("parseCandles: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("got %d candles, want 3", len(series))
	}
	for i := 1; i < len(series); i++ {
		if !series[i].TS.After(series[i-1].TS) {
			t.Fatalf("series not strictly ascending at %d", i)
		}
	}
}

func TestParseCandles_BadJSON(t *testing.T) {
	if _, err := parseCandles("INFY", []byte(`{"data": "nope"`)); err == nil {
		t.Fatal("expected decode error")
	}
}

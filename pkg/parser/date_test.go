package parser

import (
	"testing"
	"time"
)

func TestParseDateFormatsRoundTrip(t *testing.T) {
	want := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	inputs := []string{"02/01/2025", "02-01-2025", "2025-01-02"}
	for _, in := range inputs {
		got, ok := ParseDate(in)
		if !ok {
			t.Errorf("ParseDate(%q) failed", in)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseDateSerial(t *testing.T) {
	for _, serial := range []float64{1, 60, 25569, 45658} {
		got, ok := ParseDate(serial)
		if !ok {
			t.Fatalf("ParseDate(%v) failed", serial)
		}
		want := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(serial))
		if !got.Equal(want) {
			t.Errorf("ParseDate(%v) = %v, want %v", serial, got, want)
		}
	}

	// Serial 25569 is the Unix epoch.
	got, _ := ParseDate(float64(25569))
	if !got.Equal(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("serial 25569 = %v, want 1970-01-01", got)
	}
}

func TestParseDateSerialString(t *testing.T) {
	got, ok := ParseDate("45658")
	if !ok {
		t.Fatal("serial string rejected")
	}
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate(\"45658\") = %v, want %v", got, want)
	}
}

func TestParseDateTwoDigitYears(t *testing.T) {
	cases := map[string]time.Time{
		"02/01/25": time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		"02/01/49": time.Date(2049, 1, 2, 0, 0, 0, 0, time.UTC),
		"02/01/50": time.Date(1950, 1, 2, 0, 0, 0, 0, time.UTC),
		"02/01/99": time.Date(1999, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, ok := ParseDate(in)
		if !ok || !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v (ok=%v), want %v", in, got, ok, want)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []any{"", "not a date", "31/02/2025", "99/99/9999", float64(0), float64(-5), nil} {
		if _, ok := ParseDate(in); ok {
			t.Errorf("ParseDate(%v) unexpectedly succeeded", in)
		}
	}
}

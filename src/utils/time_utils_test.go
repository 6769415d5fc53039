package utils

import (
	"testing"
	"time"
)

func TestIsMarketOpen(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load timezone: %v", err)
	}

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"mid session", time.Date(2025, 3, 4, 12, 0, 0, 0, ist), true},
		{"exact open", time.Date(2025, 3, 4, 9, 15, 0, 0, ist), true},
		{"exact close", time.Date(2025, 3, 4, 15, 30, 0, 0, ist), true},
		{"one minute before open", time.Date(2025, 3, 4, 9, 14, 0, 0, ist), false},
		{"one minute after close", time.Date(2025, 3, 4, 15, 31, 0, 0, ist), false},
		{"saturday", time.Date(2025, 3, 8, 12, 0, 0, 0, ist), false},
		{"sunday", time.Date(2025, 3, 9, 12, 0, 0, 0, ist), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsMarketOpen(tc.at); got != tc.want {
				t.Fatalf("IsMarketOpen(%v)=%v want=%v", tc.at, got, tc.want)
			}
		})
	}
}

func TestNextMidnight(t *testing.T) {
	ist, _ := time.LoadLocation("Asia/Kolkata")
	at := time.Date(2025, 3, 4, 23, 59, 0, 0, ist)

	got := NextMidnight(at)
	want := time.Date(2025, 3, 5, 0, 0, 0, 0, ist)
	if !got.Equal(want) {
		t.Fatalf("NextMidnight mismatch. got=%v want=%v", got, want)
	}
	if got.Location() != ist {
		t.Fatal("location must be preserved")
	}
}

func TestStartOfDay(t *testing.T) {
	at := time.Date(2025, 3, 4, 13, 45, 12, 999, time.UTC)
	want := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	if got := StartOfDay(at); !got.Equal(want) {
		t.Fatalf("StartOfDay mismatch. got=%v want=%v", got, want)
	}
}

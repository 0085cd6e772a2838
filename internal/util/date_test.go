package util

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTruncateToDay(t *testing.T) {
	in := time.Date(2024, 6, 15, 23, 59, 58, 999, time.UTC)
	if got := TruncateToDay(in); !got.Equal(date(2024, 6, 15)) {
		t.Errorf("TruncateToDay = %s", got)
	}
}

func TestMonthStart(t *testing.T) {
	if got := MonthStart(date(2024, 6, 30)); !got.Equal(date(2024, 6, 1)) {
		t.Errorf("MonthStart = %s", got)
	}
	if got := MonthStart(date(2024, 6, 1)); !got.Equal(date(2024, 6, 1)) {
		t.Errorf("MonthStart of month start = %s", got)
	}
}

func TestSameMonth(t *testing.T) {
	if !SameMonth(date(2024, 6, 1), date(2024, 6, 30)) {
		t.Error("expected same month")
	}
	if SameMonth(date(2023, 6, 15), date(2024, 6, 15)) {
		t.Error("same month in different years must not match")
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b time.Time
		want int
	}{
		{date(2024, 1, 1), date(2024, 6, 15), 166}, // leap February
		{date(2023, 1, 1), date(2023, 6, 15), 165},
		{date(2024, 6, 15), date(2024, 6, 15), 0},
		{date(2024, 6, 15), date(2024, 6, 14), -1},
	}
	for _, tt := range tests {
		if got := DaysBetween(tt.a, tt.b); got != tt.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestWholeMonthsBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", date(2024, 1, 1), date(2024, 1, 1), 0},
		{"mid month", date(2024, 1, 1), date(2024, 6, 15), 5},
		{"anniversary counts", date(2024, 1, 15), date(2024, 3, 15), 2},
		{"day before anniversary", date(2024, 1, 15), date(2024, 3, 14), 1},
		{"across year boundary", date(2023, 11, 1), date(2024, 2, 1), 3},
		{"b before a floors at zero", date(2024, 6, 1), date(2024, 1, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WholeMonthsBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("WholeMonthsBetween = %d, want %d", got, tt.want)
			}
		})
	}
}

package timeutil

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddYearsLeapDay(t *testing.T) {
	tests := []struct {
		in   time.Time
		n    int
		want time.Time
	}{
		{date(2024, time.February, 29), 1, date(2025, time.February, 28)},
		{date(2024, time.February, 29), 4, date(2028, time.February, 29)},
		{date(2023, time.January, 10), 1, date(2024, time.January, 10)},
		{date(2023, time.March, 1), 1, date(2024, time.March, 1)},
	}
	for _, tt := range tests {
		if got := AddYears(tt.in, tt.n); !got.Equal(tt.want) {
			t.Errorf("AddYears(%s, %d) = %s, want %s", FormatDate(tt.in), tt.n, FormatDate(got), FormatDate(tt.want))
		}
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b time.Time
		want int
	}{
		{date(2024, time.January, 5), date(2024, time.January, 10), 5},
		{date(2024, time.February, 15), date(2024, time.January, 10), -36},
		{date(2024, time.March, 9), date(2024, time.March, 11), 2},
		{date(2024, time.January, 10), date(2024, time.January, 10), 0},
		{date(2024, time.January, 1), date(2500, time.January, 1), 173856},
		{date(2024, time.January, 1), date(1700, time.January, 1), -118338},
		{date(2024, time.January, 1), date(9999, time.December, 31), 2913173},
	}
	for _, tt := range tests {
		if got := DaysBetween(tt.a, tt.b); got != tt.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d", FormatDate(tt.a), FormatDate(tt.b), got, tt.want)
		}
	}
}

func TestDateOfUsesClubLocation(t *testing.T) {
	// 03:00 UTC on the 2nd is still the 1st in Denver
	ts := time.Date(2024, time.June, 2, 3, 0, 0, 0, time.UTC)
	if got := DateOf(ts); !got.Equal(date(2024, time.June, 1)) {
		t.Errorf("DateOf = %s, want 2024-06-01", FormatDate(got))
	}
}

func TestDaysLeftInMonth(t *testing.T) {
	if got := DaysLeftInMonth(date(2024, time.February, 10)); got != 19 {
		t.Errorf("got %d, want 19", got)
	}
	if got := DaysLeftInMonth(date(2023, time.December, 31)); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, err := ParseDate("2024-13-40"); err == nil {
		t.Fatal("expected error")
	}
	d, err := ParseDate("2025-06-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(date(2025, time.June, 1)) {
		t.Errorf("got %s", FormatDate(d))
	}
}

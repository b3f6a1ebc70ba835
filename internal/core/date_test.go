package core

import (
	"testing"
	"time"
)

func TestDateAddMonthsOverflow(t *testing.T) {
	cases := []struct {
		from Date
		n    int
		want Date
	}{
		{NewDate(2024, time.July, 28), 1, NewDate(2024, time.August, 28)},
		{NewDate(2024, time.January, 31), 1, NewDate(2024, time.March, 2)},
		{NewDate(2023, time.January, 31), 1, NewDate(2023, time.March, 3)},
		{NewDate(2024, time.November, 15), 2, NewDate(2025, time.January, 15)},
	}
	for _, tc := range cases {
		if got := tc.from.AddMonths(tc.n); !got.Equal(tc.want.Time) {
			t.Errorf("%s + %d months = %s, want %s", tc.from, tc.n, got, tc.want)
		}
	}
}

func TestPeriod(t *testing.T) {
	p := Period{Year: 2024, Month: time.December}
	if n := p.Next(); n != (Period{Year: 2025, Month: time.January}) {
		t.Fatalf("Next = %v", n)
	}
	if !p.Contains(NewDate(2024, time.December, 31)) || p.Contains(NewDate(2025, time.December, 1)) {
		t.Fatalf("Contains mismatch")
	}
	if got := (Period{Year: 2024, Month: time.February}).DateClamped(31); !got.Equal(NewDate(2024, time.February, 29).Time) {
		t.Fatalf("DateClamped = %s", got)
	}
	if p.String() != "2024-12" {
		t.Fatalf("String = %s", p)
	}
	parsed, err := ParsePeriod("2024-07")
	if err != nil || parsed != (Period{Year: 2024, Month: time.July}) {
		t.Fatalf("ParsePeriod = %v, %v", parsed, err)
	}
	if _, err := NewPeriod(2024, 13); err == nil {
		t.Fatalf("expected invalid month")
	}
}

func TestDateOfIgnoresClock(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	got := DateOf(time.Date(2024, time.July, 31, 23, 30, 0, 0, loc))
	if got.String() != "2024-07-31" {
		t.Fatalf("DateOf = %s", got)
	}
}

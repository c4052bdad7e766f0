package calendar

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "2024-03-15"},
		{name: "leap day", input: "2024-02-29"},
		{name: "not a leap year", input: "2023-02-29", wantErr: true},
		{name: "timestamp", input: "2024-03-15T10:00:00Z", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := ParseDay(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDay(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && string(day) != tt.input {
				t.Errorf("ParseDay(%q) = %q", tt.input, day)
			}
		})
	}
}

func TestDayAddDays(t *testing.T) {
	tests := []struct {
		day  Day
		n    int
		want Day
	}{
		{"2024-03-15", 1, "2024-03-16"},
		{"2024-03-15", -1, "2024-03-14"},
		{"2024-02-28", 1, "2024-02-29"},
		{"2024-12-31", 1, "2025-01-01"},
		{"2025-01-01", -3, "2024-12-29"},
		{"2024-03-10", 0, "2024-03-10"},
	}

	for _, tt := range tests {
		t.Run(string(tt.day), func(t *testing.T) {
			if got := tt.day.AddDays(tt.n); got != tt.want {
				t.Errorf("%s.AddDays(%d) = %s, want %s", tt.day, tt.n, got, tt.want)
			}
		})
	}
}

func TestDayOfUsesLocation(t *testing.T) {
	// 03:30 UTC on the 16th is still the 15th in New York.
	instant := time.Date(2024, 3, 16, 3, 30, 0, 0, time.UTC)
	ny, err := LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	if got := DayOf(instant, time.UTC); got != "2024-03-16" {
		t.Errorf("DayOf(UTC) = %s, want 2024-03-16", got)
	}
	if got := DayOf(instant, ny); got != "2024-03-15" {
		t.Errorf("DayOf(New York) = %s, want 2024-03-15", got)
	}
}

func TestDayBounds(t *testing.T) {
	start, end := Day("2024-03-15").Bounds(time.UTC)
	if !start.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if end.Sub(start) != 24*time.Hour {
		t.Errorf("bounds span = %v, want 24h", end.Sub(start))
	}
}

func TestLoadLocation(t *testing.T) {
	for _, name := range []string{"", "Local"} {
		loc, err := LoadLocation(name)
		if err != nil || loc != time.Local {
			t.Errorf("LoadLocation(%q) = %v, %v; want time.Local", name, loc, err)
		}
	}
	if _, err := LoadLocation("Mars/Olympus_Mons"); err == nil {
		t.Error("LoadLocation() accepted an unknown zone")
	}
	if ValidateTimezone("Mars/Olympus_Mons") {
		t.Error("ValidateTimezone() = true for an unknown zone")
	}
}

func TestFixedClock(t *testing.T) {
	clock := Fixed(time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC))
	if clock.Today() != "2024-03-15" {
		t.Errorf("Today() = %s", clock.Today())
	}

	clock.Advance(2 * time.Minute)
	if clock.Today() != "2024-03-16" {
		t.Errorf("Today() after midnight = %s", clock.Today())
	}

	clock.Set(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	if clock.Today() != "2024-01-01" {
		t.Errorf("Today() after Set = %s", clock.Today())
	}
}

func TestSystemClockToday(t *testing.T) {
	clock := System(time.UTC)
	want := DayOf(time.Now(), time.UTC)
	got := clock.Today()
	// Tolerate a midnight rollover between the two reads.
	if got != want && got != want.AddDays(1) {
		t.Errorf("Today() = %s, want %s", got, want)
	}
	if clock.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", clock.Location())
	}
}

package i18n

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func TestRelativeTime(t *testing.T) {
	Init("en")
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		since time.Time
		want  string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-90 * time.Second), "1 min ago"},
		{now.Add(-5 * time.Minute), "5 mins ago"},
		{now.Add(-90 * time.Minute), "1 hour ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-36 * time.Hour), "1 day ago"},
		{now.Add(-72 * time.Hour), "3 days ago"},
	}
	for _, tt := range tests {
		got := RelativeTimeAt(tt.since, now)
		if got != tt.want {
			t.Errorf("RelativeTimeAt(%v ago) = %q, want %q", now.Sub(tt.since), got, tt.want)
		}
	}
}

func TestRelativeTimeShort(t *testing.T) {
	Init("en")
	now := time.Now()
	tests := []struct {
		since time.Time
		want  string
	}{
		{time.Time{}, ""},
		{now.Add(-3 * time.Hour), "today"},
		{now.Add(-36 * time.Hour), "1d ago"},
		{now.Add(-5 * 24 * time.Hour), "5d ago"},
		{now.Add(-60 * 24 * time.Hour), "2mo ago"},
		{now.Add(-400 * 24 * time.Hour), "1y ago"},
	}
	for _, tt := range tests {
		got := RelativeTimeShort(tt.since)
		if got != tt.want {
			t.Errorf("RelativeTimeShort(%v ago) = %q, want %q", now.Sub(tt.since), got, tt.want)
		}
	}
}

func TestDayLabel(t *testing.T) {
	Init("en")
	now := time.Date(2024, 1, 5, 18, 30, 0, 0, time.UTC)
	tests := []struct {
		day  string
		want string
	}{
		{"2024-01-05", "Today"},
		{"2024-01-04", "Yesterday"},
		{"2024-01-01", "Mon 1 Jan 2024"},
		{"not-a-day", "not-a-day"},
	}
	for _, tt := range tests {
		if got := DayLabel(tt.day, now); got != tt.want {
			t.Errorf("DayLabel(%q) = %q, want %q", tt.day, got, tt.want)
		}
	}

	Init("de")
	if got := DayLabel("2024-01-05", now); got != "Heute" {
		t.Errorf("German DayLabel = %q, want Heute", got)
	}
	Init("en")
}

func TestDayLabelAcrossDSTChange(t *testing.T) {
	Init("en")
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		now  time.Time
		day  string
		want string
	}{
		// 25 hour day: clocks go back on 2026-10-25.
		{time.Date(2026, 10, 26, 9, 0, 0, 0, berlin), "2026-10-25", "Yesterday"},
		// 23 hour day: clocks go forward on 2026-03-29.
		{time.Date(2026, 3, 30, 9, 0, 0, 0, berlin), "2026-03-29", "Yesterday"},
		{time.Date(2026, 3, 29, 23, 0, 0, 0, berlin), "2026-03-29", "Today"},
	}
	for _, tt := range tests {
		if got := DayLabel(tt.day, tt.now); got != tt.want {
			t.Errorf("DayLabel(%q) at %v = %q, want %q", tt.day, tt.now, got, tt.want)
		}
	}
}

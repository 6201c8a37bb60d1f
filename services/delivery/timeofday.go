package delivery

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time expressed in minutes from midnight (e.g. 420 for 7:00 AM).
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (or "H:MM") into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(mm) != 2 || len(hh) == 0 || len(hh) > 2 || !allDigits(hh) || !allDigits(mm) {
		return 0, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// optionalTimeOfDay parses s, reporting false for empty or malformed values.
func optionalTimeOfDay(s string) (TimeOfDay, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}
	t, err := ParseTimeOfDay(s)
	if err != nil {
		return 0, false
	}
	return t, true
}

// TimeOfDayOf returns the wall-clock minute of t in t's location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return int(t)
}

// Before reports whether t is strictly earlier in the day than u.
func (t TimeOfDay) Before(u TimeOfDay) bool {
	return t < u
}

// After reports whether t is strictly later in the day than u.
func (t TimeOfDay) After(u TimeOfDay) bool {
	return t > u
}

func (t TimeOfDay) String() string {
	m := int(t) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatCountdown renders a minute count as "Xh Ym", or "Ym" under an hour.
func FormatCountdown(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Tomorrow returns midnight of the calendar day after now.
func Tomorrow(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// DayAfterTomorrow returns midnight two calendar days after now.
func DayAfterTomorrow(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+2, 0, 0, 0, 0, now.Location())
}

// DeliveryLabel is "Tomorrow" when day is tomorrow, otherwise e.g. "Mon, Jan 2".
func DeliveryLabel(day, tomorrow time.Time) string {
	if sameDate(day, tomorrow) {
		return "Tomorrow"
	}
	return day.Format("Mon, Jan 2")
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// allowsWeekday reports whether day falls on one of days; an empty set allows every day.
func allowsWeekday(days []int, day time.Time) bool {
	if len(days) == 0 {
		return true
	}
	wd := int(day.Weekday())
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}

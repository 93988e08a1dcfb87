package course

import (
	"sort"
	"strings"
	"time"
)

// Weekday is the lowercase day tag stored in CourseLevel.AttendanceDays.
type Weekday string

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

// WeekdayOf returns the tag of t's calendar weekday, in t's own location.
func WeekdayOf(t time.Time) Weekday {
	return weekdayFromStd(t.Weekday())
}

func weekdayFromStd(d time.Weekday) Weekday {
	switch d {
	case time.Sunday:
		return Sunday
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	}
	return ""
}

// ParseWeekday accepts any casing and surrounding whitespace.
func ParseWeekday(s string) (Weekday, error) {
	d := Weekday(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", ErrInvalidWeekday
	}
	return d, nil
}

// Std returns the time.Weekday for d, or -1 when d is not a valid tag.
func (d Weekday) Std() time.Weekday {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if weekdayFromStd(wd) == d {
			return wd
		}
	}
	return -1
}

func (d Weekday) IsValid() bool {
	return d.Std() >= 0
}

// Label is the display name, e.g. "Saturday".
func (d Weekday) Label() string {
	if !d.IsValid() {
		return string(d)
	}
	return d.Std().String()
}

type Weekdays []Weekday

func (ws Weekdays) Contains(d Weekday) bool {
	for _, w := range ws {
		if w == d {
			return true
		}
	}
	return false
}

// Normalize drops duplicates and sorts the days Sunday first.
func (ws Weekdays) Normalize() Weekdays {
	seen := make(map[Weekday]bool, len(ws))
	days := make(Weekdays, 0, len(ws))
	for _, d := range ws {
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Std() < days[j].Std() })
	return days
}

// Labels joins the display names: "Monday, Wednesday".
func (ws Weekdays) Labels() string {
	labels := make([]string, 0, len(ws))
	for _, d := range ws {
		labels = append(labels, d.Label())
	}
	return strings.Join(labels, ", ")
}

// Strings is used by storage to persist the set as a text array.
func (ws Weekdays) Strings() []string {
	ss := make([]string, 0, len(ws))
	for _, d := range ws {
		ss = append(ss, string(d))
	}
	return ss
}

func WeekdaysFromStrings(ss []string) Weekdays {
	ws := make(Weekdays, 0, len(ss))
	for _, s := range ss {
		ws = append(ws, Weekday(s))
	}
	return ws
}

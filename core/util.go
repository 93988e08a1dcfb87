package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DateLayout is the only accepted shape for attendance dates: "YYYY-MM-DD".
const DateLayout = "2006-01-02"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// ParseDate parses a "YYYY-MM-DD" string as local midnight in `loc`.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

// DateOnly keeps the calendar components of `t` and moves them to midnight in `loc`.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayBounds returns the first and last millisecond of the calendar day of `t` in `loc`.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := DateOnly(t, loc)
	end := time.Date(start.Year(), start.Month(), start.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end
}

// Getwd walks up from the working directory until it finds the module root (the dir holding go.mod).
// go test runs inside the package directory, so this keeps config lookups stable.
// Falls back to the working directory when no go.mod is found (e.g. a deployed binary).
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}

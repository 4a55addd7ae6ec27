package model

import (
	"strings"
	"time"
)

// DayKeyLayout is the time layout of a DayKey.
const DayKeyLayout = "2006-01-02"

// DayKey formats t as a YYYY-MM-DD key in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayKeyLayout)
}

// ValidDayKey reports whether s is a real calendar date in YYYY-MM-DD form.
func ValidDayKey(s string) bool {
	if len(s) != len(DayKeyLayout) {
		return false
	}
	t, err := time.Parse(DayKeyLayout, s)
	return err == nil && t.Format(DayKeyLayout) == s
}

// CheckDayKey returns a ValidationError if s is missing or malformed.
func CheckDayKey(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return &ValidationError{Field: field, Reason: "date parameter required"}
	}
	if !ValidDayKey(s) {
		return &ValidationError{Field: field, Reason: "date must be YYYY-MM-DD, got " + s}
	}
	return nil
}

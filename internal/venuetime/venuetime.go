// Package venuetime converts between civil "HH:MM" venue schedules and
// absolute instants. All clubs share one fixed offset zone with no DST,
// so every conversion is pure wall-clock arithmetic on instants.
package venuetime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Window struct {
	Open  time.Time
	Close time.Time
}

// Contains reports whether t falls inside [Open, Close).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Open) && t.Before(w.Close)
}

// Location builds the fixed venue zone for the given UTC offset.
func Location(offsetHours int) *time.Location {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return time.FixedZone(name, offsetHours*3600)
}

// ParseClock parses an "HH:MM" civil time string.
func ParseClock(hhmm string) (hour, minute int, err error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("venuetime: invalid clock value %q", hhmm)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("venuetime: invalid hour in %q", hhmm)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("venuetime: invalid minute in %q", hhmm)
	}
	return hour, minute, nil
}

// Combine anchors an "HH:MM" wall-clock value on the civil day of date,
// producing an absolute instant in loc.
func Combine(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	h, m, err := ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, loc), nil
}

// ResolveWindow turns an {open, close} pair on a civil date into two
// absolute instants. A close numerically at or before open rolls to the
// next civil day (cross-midnight venues).
func ResolveWindow(date time.Time, open, close string, loc *time.Location) (Window, error) {
	openAt, err := Combine(date, open, loc)
	if err != nil {
		return Window{}, err
	}
	closeAt, err := Combine(date, close, loc)
	if err != nil {
		return Window{}, err
	}
	if !closeAt.After(openAt) {
		closeAt = closeAt.AddDate(0, 0, 1)
	}
	return Window{Open: openAt, Close: closeAt}, nil
}

// NoonAnchor reinterprets a date-only timestamp as noon in the venue
// zone. Date-only values are serialized as UTC midnight, so the civil
// date is read in UTC; viewing UTC midnight through a negative offset
// would land on the previous day.
func NoonAnchor(date time.Time, loc *time.Location) time.Time {
	d := date.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc)
}

// SameCivilDay reports whether two instants fall on the same civil date
// in loc.
func SameCivilDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// MinutesUntil is the whole number of minutes from now to target,
// floored. Negative when target has passed.
func MinutesUntil(now, target time.Time) int {
	return int(math.Floor(target.Sub(now).Minutes()))
}

// HoursUntil is the whole number of hours from now to target, floored.
// Floor, not truncation: 2.5 hours after a target must read -3, not -2.
func HoursUntil(now, target time.Time) int {
	return int(math.Floor(target.Sub(now).Hours()))
}

// Weekday returns the English weekday name of date in loc, matching the
// values stored in club schedules.
func Weekday(date time.Time, loc *time.Location) string {
	return date.In(loc).Weekday().String()
}

// Package dateutil converts between calendar dates, stored epoch values and
// HH:mm clock strings. All functions are pure.
package dateutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
	"github.com/jmhodges/clock"
)

// LongDateLayout is the zh-TW long date style used for headings.
const LongDateLayout = "2006年1月2日"

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return now.With(t).BeginningOfDay()
}

// Today returns the start of the current day as seen by clk.
func Today(clk clock.Clock) time.Time {
	return StartOfDay(clk.Now())
}

// ToEpochStartOfDay converts a date to the millisecond instant of its midnight.
func ToEpochStartOfDay(date time.Time) int64 {
	return StartOfDay(date).UnixMilli()
}

// FromEpoch converts a stored millisecond instant back to a date in loc.
func FromEpoch(millis int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return StartOfDay(time.UnixMilli(millis).In(loc))
}

// ParseClock parses an HH:mm string. ok is false when the string does not have
// exactly two numeric fields or a field is out of range.
func ParseClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// NormalizeClock rewrites a valid clock string in zero padded HH:mm form.
func NormalizeClock(s string) (string, bool) {
	hour, minute, ok := ParseClock(s)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// Combine places the clock string on date. ok is false for malformed input.
func Combine(date time.Time, s string) (time.Time, bool) {
	hour, minute, ok := ParseClock(s)
	if !ok {
		return time.Time{}, false
	}
	d := StartOfDay(date)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location()), true
}

// Format renders date as a long localized heading.
func Format(date time.Time) string {
	return date.Format(LongDateLayout)
}

// ParseDate parses a YYYY-MM-DD date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), loc)
}

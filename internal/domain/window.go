package domain

import (
	"fmt"
	"time"
)

// Window is an absolute, inclusive time range used to select events.
// A zero Start means the range could not be resolved and selects nothing.
type Window struct {
	Start time.Time
	End   time.Time
}

// IsEmpty reports whether the window selects no events.
func (w Window) IsEmpty() bool {
	return w.Start.IsZero()
}

// UserZone returns a fixed zone for a UTC offset in hours.
func UserZone(utcOffset int) *time.Location {
	if utcOffset == 0 {
		return time.UTC
	}
	return time.FixedZone(fmt.Sprintf("UTC%+d", utcOffset), utcOffset*3600)
}

// TargetDate shifts the calendar date of now by dayOffset days.
// The date is taken in now's own location.
func TargetDate(now time.Time, dayOffset int) (y int, m time.Month, d int) {
	return now.AddDate(0, 0, dayOffset).Date()
}

// DayBounds returns [00:00:00, 23:59:59] of the target date in the user's zone.
func DayBounds(now time.Time, dayOffset, utcOffset int) Window {
	y, m, d := TargetDate(now, dayOffset)
	loc := UserZone(utcOffset)
	return Window{
		Start: time.Date(y, m, d, 0, 0, 0, 0, loc),
		End:   time.Date(y, m, d, 23, 59, 59, 0, loc),
	}
}

// NextDayStart returns midnight after the target date in the user's zone.
func NextDayStart(now time.Time, dayOffset, utcOffset int) time.Time {
	y, m, d := TargetDate(now, dayOffset)
	return time.Date(y, m, d+1, 0, 0, 0, 0, UserZone(utcOffset))
}

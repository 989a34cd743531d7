package mapping

import (
	"fmt"
	"time"
)

// Date is the abstract value of a sys.date parameter. Services report dates
// in different shapes (Dialogflow sends a full ISO datetime); the abstract
// value keeps only the calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate accepts a plain ISO date or a full ISO datetime and returns its
// date part.
func ParseDate(raw string) (Date, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return DateOf(t), nil
}

// Time is the abstract value of a sys.time parameter: a wall-clock time with
// the UTC offset the service reported, in seconds east of UTC.
type Time struct {
	Hour   int
	Minute int
	Second int
	Offset int
}

func (t Time) String() string {
	base := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.Offset == 0 {
		return base
	}
	sign := "+"
	offset := t.Offset
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s%s%02d:%02d", base, sign, offset/3600, offset%3600/60)
}

// TimeOf extracts the wall-clock time and offset of a time.Time.
func TimeOf(t time.Time) Time {
	_, offset := t.Zone()
	return Time{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Offset: offset}
}

// ParseTime accepts a bare time ("13:00:00"), a time with offset
// ("13:00:00+02:00") or a full ISO datetime and returns its time part.
func ParseTime(raw string) (Time, error) {
	for _, layout := range []string{"15:04:05Z07:00", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return TimeOf(t), nil
		}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return Time{}, fmt.Errorf("invalid time %q: %w", raw, err)
	}
	return TimeOf(t), nil
}

package alexa

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/parlancehq/parlance/internal/mapping"
)

// AMAZON.DATE reports specific days as plain ISO dates, but relative
// utterances ("next week", "this summer") come back as interval forms: ISO
// weeks ("2015-W49"), weekends ("2015-W49-WE"), months ("2018-09"), years
// ("2018"), decades ("197X") and seasons ("2021-WI").

var (
	dateWeekendRe = regexp.MustCompile(`^(\d{4})-W(\d{1,2})-WE$`)
	dateWeekRe    = regexp.MustCompile(`^(\d{4})-W(\d{1,2})$`)
	dateSeasonRe  = regexp.MustCompile(`^(\d{4})-(SP|SU|FA|WI)$`)
	dateMonthRe   = regexp.MustCompile(`^(\d{4})-(\d{1,2})(?:-XX)?$`)
	dateYearRe    = regexp.MustCompile(`^(\d{4})(?:-XX-XX)?$`)
	dateDecadeRe  = regexp.MustCompile(`^(\d{3})X$`)
)

// Northern-hemisphere season bounds. Winter runs into the next year.
var seasonBounds = map[string]struct {
	fromMonth time.Month
	fromDay   int
	toMonth   time.Month
	toDay     int
}{
	"SP": {time.March, 21, time.June, 21},
	"SU": {time.June, 22, time.September, 22},
	"FA": {time.September, 23, time.December, 21},
	"WI": {time.December, 22, time.March, 20},
}

// parseDate decodes an AMAZON.DATE slot value into the days it covers. A
// specific date returns a nil "to"; interval forms return both ends.
func parseDate(raw string) (mapping.Date, *mapping.Date, error) {
	if m := dateWeekendRe.FindStringSubmatch(raw); m != nil {
		monday := isoWeekStart(atoi(m[1]), atoi(m[2]))
		return dayOf(monday.AddDate(0, 0, 5)), dayPtr(monday.AddDate(0, 0, 6)), nil
	}
	if m := dateWeekRe.FindStringSubmatch(raw); m != nil {
		monday := isoWeekStart(atoi(m[1]), atoi(m[2]))
		return dayOf(monday), dayPtr(monday.AddDate(0, 0, 6)), nil
	}
	if m := dateSeasonRe.FindStringSubmatch(raw); m != nil {
		year, bounds := atoi(m[1]), seasonBounds[m[2]]
		toYear := year
		if m[2] == "WI" {
			toYear++
		}
		from := mapping.Date{Year: year, Month: bounds.fromMonth, Day: bounds.fromDay}
		return from, &mapping.Date{Year: toYear, Month: bounds.toMonth, Day: bounds.toDay}, nil
	}
	if m := dateYearRe.FindStringSubmatch(raw); m != nil {
		year := atoi(m[1])
		from := mapping.Date{Year: year, Month: time.January, Day: 1}
		return from, &mapping.Date{Year: year, Month: time.December, Day: 31}, nil
	}
	if m := dateMonthRe.FindStringSubmatch(raw); m != nil {
		year, month := atoi(m[1]), atoi(m[2])
		if month < 1 || month > 12 {
			return mapping.Date{}, nil, fmt.Errorf("month out of range in date %q", raw)
		}
		first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		return dayOf(first), dayPtr(first.AddDate(0, 1, -1)), nil
	}
	if m := dateDecadeRe.FindStringSubmatch(raw); m != nil {
		year := atoi(m[1]) * 10
		from := mapping.Date{Year: year, Month: time.January, Day: 1}
		return from, &mapping.Date{Year: year + 9, Month: time.December, Day: 31}, nil
	}
	d, err := mapping.ParseDate(raw)
	if err != nil {
		return mapping.Date{}, nil, fmt.Errorf("unrecognized AMAZON.DATE value %q", raw)
	}
	return d, nil, nil
}

// isoWeekStart returns the Monday of the given ISO 8601 week. January 4 is
// always part of week 1.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -((int(jan4.Weekday()) + 6) % 7))
	return monday.AddDate(0, 0, (week-1)*7)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func dayOf(t time.Time) mapping.Date { return mapping.DateOf(t) }

func dayPtr(t time.Time) *mapping.Date {
	d := mapping.DateOf(t)
	return &d
}

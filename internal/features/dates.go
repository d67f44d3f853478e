package features

import (
	"fmt"
	"time"
)

// DateFormat selects the textual layout ParseDate accepts.
type DateFormat int

const (
	// DayMonthYear is the DD.MM.YYYY layout used inside contract records.
	DayMonthYear DateFormat = 0
	// ISODate is the YYYY-MM-DD layout of the application date.
	ISODate DateFormat = 1
)

const dayMonthYearLayout = "2.1.2006"

// An ISO date may carry a time part; only the calendar date is kept.
var isoLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDate parses text in the given format and returns the calendar date at UTC midnight.
// The second result is false when text does not match the format. An unknown format is
// a programming error and panics.
func ParseDate(text string, format DateFormat) (time.Time, bool) {
	switch format {
	case DayMonthYear:
		parsed, err := time.Parse(dayMonthYearLayout, text)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	case ISODate:
		for _, layout := range isoLayouts {
			parsed, err := time.Parse(layout, text)
			if err == nil {
				return dateOnly(parsed), true
			}
		}
		return time.Time{}, false
	default:
		panic(fmt.Sprintf("features: invalid date format %d, use DayMonthYear (0) or ISODate (1)", format))
	}
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole days from 'from' to 'to'. Both are UTC midnights.
// Unix seconds are used because time.Duration saturates past ~292 years.
func daysBetween(from, to time.Time) int64 {
	return (to.Unix() - from.Unix()) / secondsPerDay
}

const secondsPerDay = 24 * 60 * 60

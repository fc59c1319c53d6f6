// Package week holds the calendar math for day buckets and display weeks.
// A day key is the calendar date rendered as YYYY-MM-DD in the configured
// timezone; two instants on the same local calendar day collapse to one key.
package week

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

const DayKeyLayout = "2006-01-02"

// DayKey formats the instant's calendar date in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyLayout)
}

// Monday returns midnight of the Monday of the week containing t's local
// calendar date. The week starts on Monday regardless of locale.
func Monday(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// DayKeys returns the seven day keys of the display week containing t,
// Monday through Sunday, in ascending order.
func DayKeys(t time.Time, loc *time.Location) [7]string {
	var keys [7]string
	monday := Monday(t, loc)
	for i := range keys {
		keys[i] = monday.AddDate(0, 0, i).Format(DayKeyLayout)
	}
	return keys
}

// ISOLabel renders the ISO-8601 week identifier (e.g. 2025-W01) for t's
// local calendar date. The label is Thursday-anchored per ISO week numbering
// and is computed independently of the Monday display week; the two can
// disagree near year boundaries.
func ISOLabel(t time.Time, loc *time.Location) string {
	y, m, d := t.In(loc).Date()
	isoYear, isoWeek := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).ISOWeek()
	return fmt.Sprintf("%d-W%02d", isoYear, isoWeek)
}

// ParseDay leniently resolves a user-supplied date token to a day key.
// Unparseable or empty tokens fall back to today's key, silently.
func ParseDay(token string, now time.Time, loc *time.Location) string {
	if token == "" {
		return DayKey(now, loc)
	}
	if t, err := time.ParseInLocation(DayKeyLayout, token, loc); err == nil {
		return t.Format(DayKeyLayout)
	}
	t, err := dateparse.ParseIn(token, loc)
	if err != nil {
		return DayKey(now, loc)
	}
	return DayKey(t, loc)
}

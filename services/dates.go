package services

import (
	"strconv"
	"strings"
	"time"

	"funda-scraper/models"
)

// Dutch month names that differ from their English spelling. March through
// December share enough letters that only these eight need mapping before
// the absolute-date parse.
var dutchMonths = map[string]string{
	"januari":  "January",
	"februari": "February",
	"maart":    "March",
	"mei":      "May",
	"juni":     "June",
	"juli":     "July",
	"augustus": "August",
	"oktober":  "October",
}

var dutchWeekdays = map[string]string{
	"maandag":   "monday",
	"dinsdag":   "tuesday",
	"woensdag":  "wednesday",
	"donderdag": "thursday",
	"vrijdag":   "friday",
	"zaterdag":  "saturday",
	"zondag":    "sunday",
}

// Monday-based weekday indices, matching the arithmetic the listing pages
// assume for "listed since <weekday>".
var weekdayIndex = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

var dutchDateNoise = strings.NewReplacer(
	"weken", "week",
	"maanden", "month",
	"Vandaag", "Today",
	"+", "",
)

// ParseDate resolves the listing-date text funda shows: a bare weekday name
// (Dutch or English) meaning the most recent occurrence of that weekday, a
// relative offset ("2 weken geleden", "6+ months ago", "Today"), or an
// absolute "30 juni 2023" date. Months count as exactly 30 days and weeks as
// exactly 7; the site only shows these phrases for rough recency, so the
// approximation is part of the format, not something to outsmart.
//
// The boolean is false when no branch matches; callers treat that as the
// record-level "date unknown" signal.
func ParseDate(v models.RawValue, now time.Time) (time.Time, bool) {
	if !v.IsPresent() {
		return time.Time{}, false
	}

	s := dutchDateNoise.Replace(v.Text())
	s = mapDutchMonths(s)

	if target, ok := weekdayIdx(s); ok {
		delta := mondayIdx(now.Weekday()) - target
		return now.AddDate(0, 0, -delta), true
	}

	switch {
	case strings.Contains(s, "month"):
		n, ok := leadingInt(strings.SplitN(s, "month", 2)[0])
		if !ok {
			return time.Time{}, false
		}
		return now.AddDate(0, 0, -n*30), true
	case strings.Contains(s, "week"):
		n, ok := leadingInt(strings.SplitN(s, "week", 2)[0])
		if !ok {
			return time.Time{}, false
		}
		return now.AddDate(0, 0, -n*7), true
	case strings.Contains(s, "Today"):
		return now, true
	case strings.Contains(s, "day"):
		n, ok := leadingInt(strings.SplitN(s, "day", 2)[0])
		if !ok {
			return time.Time{}, false
		}
		return now.AddDate(0, 0, -n), true
	default:
		t, err := time.Parse("2 January 2006", s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
}

// YearMonth truncates a date to the first day of its month, the bucket used
// for per-month aggregation columns.
func YearMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func mapDutchMonths(s string) string {
	for nl, en := range dutchMonths {
		if strings.Contains(s, nl) {
			s = strings.ReplaceAll(s, nl, en)
		}
	}
	return s
}

func weekdayIdx(s string) (int, bool) {
	name := strings.ToLower(s)
	if en, ok := dutchWeekdays[name]; ok {
		name = en
	}
	idx, ok := weekdayIndex[name]
	return idx, ok
}

// mondayIdx converts Go's Sunday-based weekday to the Monday-based index the
// weekday arithmetic expects.
func mondayIdx(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// leadingInt parses the digit run at the start of the trimmed string, so
// "2 geleden" yields 2 and "ago" yields nothing.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

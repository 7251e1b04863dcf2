package parser

import (
	"strconv"
	"strings"
	"time"
)

// Spreadsheet serials count days from 1899-12-30 (day 0), so that serial 1
// is 1899-12-31 and serial 60 lands where legacy spreadsheets expect it.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Serial-number strings are only trusted inside a plausible statement range,
// roughly 1954..2117, so account numbers don't get mistaken for dates.
const (
	minDateSerial = 20000
	maxDateSerial = 80000
)

var dateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
}

// Looser layouts tried only after the fixed patterns fail.
var fallbackLayouts = []string{
	"2006/01/02",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"2-Jan-2006",
	time.RFC3339,
}

// ParseDate converts a raw cell value into a calendar date. Numeric input is
// read as a spreadsheet date serial; strings are tried against the known
// statement formats. The second return is false when no interpretation
// yields a valid date.
func ParseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case float64:
		return fromSerial(v)
	case int:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	case string:
		return parseDateString(v)
	default:
		return time.Time{}, false
	}
}

func fromSerial(serial float64) (time.Time, bool) {
	if serial < 1 {
		return time.Time{}, false
	}
	ms := serial * 86400000
	d := serialEpoch.Add(time.Duration(ms) * time.Millisecond)
	return truncateToDay(d), true
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return truncateToDay(d), true
		}
	}

	// DD/MM/YY with the pivot at 50: years below map to 20xx, the rest to 19xx.
	if d, ok := parseTwoDigitYear(s); ok {
		return d, true
	}

	// Cells exported from spreadsheets sometimes carry the raw serial as text.
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n >= minDateSerial && n <= maxDateSerial {
			return fromSerial(n)
		}
		return time.Time{}, false
	}

	for _, layout := range fallbackLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return truncateToDay(d), true
		}
	}
	return time.Time{}, false
}

func parseTwoDigitYear(s string) (time.Time, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || len(parts[2]) != 2 {
		return time.Time{}, false
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if year < 50 {
		year += 2000
	} else {
		year += 1900
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. 31/02), which means the input was bogus.
	if d.Day() != day || d.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return d, true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

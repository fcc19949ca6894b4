package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order before falling back to regex
// extraction. Day-month layouts come before month-day layouts, so an
// ambiguous slash date resolves day-first.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"02-01-2006 15:04:05",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"02-01-2006 15:04",
	"02/01/2006 15:04",
	"01/02/2006 15:04",
	"20060102 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"01/02/2006",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05.999999Z",
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2})`), // ISO order
	regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{4})`), // day-month-year
	regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{2})`), // day-month-2digit-year
}

var timeFragmentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2}):(\d{2}):(\d{2})`),
	regexp.MustCompile(`(\d{1,2}):(\d{2})`),
}

// ParseTimestamp resolves a raw timestamp string. It tries the explicit
// layouts first, then regex-based date/time extraction. ok is false when
// no date could be recognized at all; the caller must then synthesize a
// timestamp inside the source's historical window.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}

	return extractTimestamp(raw)
}

// extractTimestamp pulls date and time fragments out of free-form text.
// A 4-digit first group means ISO order; a 4-digit last group means
// day-month-year; a 2-digit last group gets the century prefix 20.
// Missing time parts default to 00:00:00.
func extractTimestamp(raw string) (time.Time, bool) {
	var dateGroups []string
	for _, re := range datePatterns {
		if m := re.FindStringSubmatch(raw); m != nil {
			dateGroups = m[1:]
			break
		}
	}
	if dateGroups == nil {
		return time.Time{}, false
	}

	var year, month, day int
	if len(dateGroups[0]) == 4 {
		year = atoi(dateGroups[0])
		month = atoi(dateGroups[1])
		day = atoi(dateGroups[2])
	} else if len(dateGroups[2]) == 4 {
		day = atoi(dateGroups[0])
		month = atoi(dateGroups[1])
		year = atoi(dateGroups[2])
	} else {
		day = atoi(dateGroups[0])
		month = atoi(dateGroups[1])
		year = atoi("20" + dateGroups[2])
	}

	var hour, minute, second int
	for _, re := range timeFragmentPatterns {
		if m := re.FindStringSubmatch(raw); m != nil {
			hour = atoi(m[1])
			minute = atoi(m[2])
			if len(m) == 4 {
				second = atoi(m[3])
			}
			break
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	// time.Date normalizes out-of-range days (Feb 30 -> Mar 2); reject those.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

package feed

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/width"
)

var (
	fullDateJa    = regexp.MustCompile(`(\d{4})\s*年\s*(\d{1,2})\s*月\s*(\d{1,2})\s*日`)
	fullDateNum   = regexp.MustCompile(`(?:^|\D)(\d{4})[./-](\d{1,2})[./-](\d{1,2})(?:\D|$)`)
	monthDayJa    = regexp.MustCompile(`(?:^|\D)(\d{1,2})\s*月\s*(\d{1,2})\s*日`)
	monthDaySlash = regexp.MustCompile(`(?:^|[^\d/.])(\d{1,2})/(\d{1,2})(?:[^\d/]|$)`)
	monthNameDate = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
)

// yearInferenceWindow bounds how far before the reference date a date
// without a year may fall before it is taken to mean the following year.
const yearInferenceWindow = 6

// Fold converts full-width digits, letters and symbols to their ASCII forms.
func Fold(s string) string {
	return width.Fold.String(s)
}

// ExtractDate finds the first event date in text and returns it as
// YYYY-MM-DD. Dates without a year take it from ref.
func ExtractDate(text string, ref time.Time) string {
	text = Fold(text)
	if text == "" {
		return ""
	}

	if m := fullDateJa.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
			return d
		}
	}

	if m := fullDateNum.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
			return d
		}
	}

	if m := monthNameDate.FindStringSubmatch(text); m != nil {
		month := strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
		if t, err := dateparse.ParseIn(month+" "+m[2]+", "+m[3], time.UTC); err == nil {
			return t.Format(time.DateOnly)
		}
	}

	if m := monthDayJa.FindStringSubmatch(text); m != nil {
		if d, ok := inferYear(atoi(m[1]), atoi(m[2]), ref); ok {
			return d
		}
	}

	if m := monthDaySlash.FindStringSubmatch(text); m != nil {
		if d, ok := inferYear(atoi(m[1]), atoi(m[2]), ref); ok {
			return d
		}
	}

	return ""
}

func inferYear(month, day int, ref time.Time) (string, bool) {
	if ref.IsZero() {
		ref = time.Now()
	}
	ref = ref.In(time.Local)

	year := ref.Year()
	candidate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	switch {
	case candidate.Before(ref.AddDate(0, -yearInferenceWindow, 0)):
		year++
	case candidate.After(ref.AddDate(0, yearInferenceWindow, 0)):
		year--
	}
	return makeDate(year, month, day)
}

func makeDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(month) {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

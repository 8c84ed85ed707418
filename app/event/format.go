package event

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
)

const (
	NoTitle        = "No Title"
	linkDisplayMax = 20
)

var weekdaysJa = [...]string{"日曜日", "月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, true
	}
	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t.In(time.Local), true
}

// FormatDate renders a stored date as yyyy-MM-dd. Unparseable input is
// returned unchanged.
func FormatDate(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return s
	}
	return t.Format(time.DateOnly)
}

// FormatLongDate renders a date in Japanese long form with the weekday,
// e.g. 2023年12月31日日曜日.
func FormatLongDate(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return s
	}
	return fmt.Sprintf("%d年%d月%d日%s", t.Year(), int(t.Month()), t.Day(), weekdaysJa[t.Weekday()])
}

func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format("2006-01-02 15:04")
}

// TruncateLink shortens a link for table display.
func TruncateLink(link string) string {
	if utf8.RuneCountInString(link) <= linkDisplayMax {
		return link
	}
	return string([]rune(link)[:linkDisplayMax]) + "..."
}

func DisplayTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return NoTitle
	}
	return title
}

// JoinImageURLs builds the stored comma separated image list. Commas
// inside a URL are percent-encoded so the list splits back unchanged.
func JoinImageURLs(urls []string) string {
	escaped := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			escaped = append(escaped, strings.ReplaceAll(u, ",", "%2C"))
		}
	}
	return strings.Join(escaped, ",")
}

// ImageURLs splits a comma separated image list.
func ImageURLs(imageURL string) []string {
	var urls []string
	for _, u := range strings.Split(imageURL, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// NextImage advances the carousel index, wrapping around.
func NextImage(index, count int) int {
	if count <= 1 {
		return 0
	}
	return (clampIndex(index, count) + 1) % count
}

func PrevImage(index, count int) int {
	if count <= 1 {
		return 0
	}
	return (clampIndex(index, count) - 1 + count) % count
}

// ClampImage maps an arbitrary requested index onto the image list.
func ClampImage(index, count int) int {
	if count == 0 {
		return 0
	}
	return clampIndex(index, count)
}

func clampIndex(index, count int) int {
	if index < 0 || index >= count {
		return 0
	}
	return index
}

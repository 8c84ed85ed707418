package feed

import (
	"cmp"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	openTime  = regexp.MustCompile(`(?i)(?:open|開場)\s*[:：]?\s*(\d{1,2}[:：]\d{2})`)
	startTime = regexp.MustCompile(`(?i)(?:start|開演)\s*[:：]?\s*(\d{1,2}[:：]\d{2})`)
)

const maxDetailLine = 200

// Extractor recovers event details from a feed item.
type Extractor struct {
	now func() time.Time
}

func NewExtractor() *Extractor {
	return &Extractor{now: time.Now}
}

func (e *Extractor) Run(item Item, feedConfig *Config) Details {
	raw := cmp.Or(item.Content, item.Description)
	text := HTMLToText(raw)

	details := Details{
		Content: text,
		Images:  mergeImages(ImagesFromHTML(raw, item.Link), item.Images),
	}

	ref := e.now()
	if item.PublishedAt != nil {
		ref = *item.PublishedAt
	}

	if feedConfig != nil && feedConfig.Settings.DateFrom == DateFromPublished && item.PublishedAt != nil {
		details.Date = item.PublishedAt.In(time.Local).Format(time.DateOnly)
	} else {
		details.Date = cmp.Or(ExtractDate(item.Title, ref), ExtractDate(text, ref))
	}

	folded := Fold(text)
	details.Time = extractTime(folded)
	details.Fee = findLine(folded, func(line string) bool {
		return strings.Contains(line, "円") || strings.Contains(line, "¥")
	})
	details.Ticket = findLine(folded, func(line string) bool {
		return strings.Contains(line, "チケット") || strings.Contains(strings.ToUpper(line), "TICKET")
	})

	return details
}

func extractTime(text string) string {
	var parts []string
	if m := openTime.FindStringSubmatch(text); m != nil {
		parts = append(parts, "OPEN "+normalizeClock(m[1]))
	}
	if m := startTime.FindStringSubmatch(text); m != nil {
		parts = append(parts, "START "+normalizeClock(m[1]))
	}
	return strings.Join(parts, " / ")
}

func normalizeClock(s string) string {
	return strings.ReplaceAll(s, "：", ":")
}

func findLine(text string, match func(string) bool) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && match(line) {
			return truncateRunes(line, maxDetailLine)
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func mergeImages(lists ...[]string) []string {
	var merged []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, u := range list {
			if u != "" && !seen[u] {
				seen[u] = true
				merged = append(merged, u)
			}
		}
	}
	return merged
}

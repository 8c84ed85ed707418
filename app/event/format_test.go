package event

import (
	"slices"
	"testing"
	"time"
)

func useUTC(t *testing.T) {
	t.Helper()
	previous := time.Local
	time.Local = time.UTC
	t.Cleanup(func() { time.Local = previous })
}

func TestFormatDate(t *testing.T) {
	useUTC(t)

	tests := []struct {
		input    string
		expected string
	}{
		{"2025-08-24", "2025-08-24"},
		{"2025/08/24", "2025-08-24"},
		{"2023-12-31T10:00:00Z", "2023-12-31"},
		{"", ""},
		{"not a date", "not a date"},
	}

	for _, tt := range tests {
		if got := FormatDate(tt.input); got != tt.expected {
			t.Errorf("FormatDate(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestFormatLongDate(t *testing.T) {
	useUTC(t)

	tests := []struct {
		input    string
		expected string
	}{
		{"2023-12-31", "2023年12月31日日曜日"},
		{"2025-08-24", "2025年8月24日日曜日"},
		{"2025-01-01", "2025年1月1日水曜日"},
		{"", ""},
		{"garbage", "garbage"},
	}

	for _, tt := range tests {
		if got := FormatLongDate(tt.input); got != tt.expected {
			t.Errorf("FormatLongDate(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	useUTC(t)

	ts := time.Date(2025, 8, 24, 9, 5, 30, 0, time.UTC)
	if got := FormatTimestamp(ts); got != "2025-08-24 09:05" {
		t.Errorf("Expected 2025-08-24 09:05, got %s", got)
	}
	if got := FormatTimestamp(time.Time{}); got != "" {
		t.Errorf("Expected empty string for zero time, got %s", got)
	}
}

func TestTruncateLink(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://a.jp", "https://a.jp"},
		{"https://example.com/", "https://example.com/"},
		{"https://example.com/events/1", "https://example.com/..."},
		{"", ""},
	}

	for _, tt := range tests {
		if got := TruncateLink(tt.input); got != tt.expected {
			t.Errorf("TruncateLink(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := DisplayTitle(""); got != "No Title" {
		t.Errorf("Expected No Title, got %s", got)
	}
	if got := DisplayTitle("Live"); got != "Live" {
		t.Errorf("Expected Live, got %s", got)
	}
}

func TestImageURLs(t *testing.T) {
	got := ImageURLs(" a.jpg, ,b.jpg,, c.jpg ")
	expected := []string{"a.jpg", "b.jpg", "c.jpg"}
	if !slices.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	if got := ImageURLs(""); len(got) != 0 {
		t.Errorf("Expected no images, got %v", got)
	}
}

func TestJoinImageURLs(t *testing.T) {
	urls := []string{
		"https://cdn.example.com/w_800,h_600/flyer.jpg",
		" ",
		"https://example.com/b.jpg",
	}

	joined := JoinImageURLs(urls)
	if joined != "https://cdn.example.com/w_800%2Ch_600/flyer.jpg,https://example.com/b.jpg" {
		t.Errorf("Unexpected joined list: %s", joined)
	}

	got := ImageURLs(joined)
	expected := []string{"https://cdn.example.com/w_800%2Ch_600/flyer.jpg", "https://example.com/b.jpg"}
	if !slices.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	if got := JoinImageURLs(nil); got != "" {
		t.Errorf("Expected empty list, got %q", got)
	}
}

func TestImageCarousel(t *testing.T) {
	tests := []struct {
		name  string
		index int
		count int
		next  int
		prev  int
	}{
		{"single image stays", 0, 1, 0, 0},
		{"no images", 0, 0, 0, 0},
		{"first of three", 0, 3, 1, 2},
		{"last of three", 2, 3, 0, 1},
		{"out of range resets", 5, 3, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextImage(tt.index, tt.count); got != tt.next {
				t.Errorf("NextImage: expected %d, got %d", tt.next, got)
			}
			if got := PrevImage(tt.index, tt.count); got != tt.prev {
				t.Errorf("PrevImage: expected %d, got %d", tt.prev, got)
			}
		})
	}

	if got := ClampImage(-1, 3); got != 0 {
		t.Errorf("Expected clamp to 0, got %d", got)
	}
	if got := ClampImage(2, 3); got != 2 {
		t.Errorf("Expected clamp to keep 2, got %d", got)
	}
}

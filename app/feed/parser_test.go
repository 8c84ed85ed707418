package feed

import (
	"strings"
	"testing"
	"time"
)

const venueRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title> W Studio RED </title>
    <link>http://red.double-ustudio.com</link>
    <description>Live house in Matsuyama</description>
    <language>ja</language>
    <item>
      <title>8/24(日) Summer Session</title>
      <link>http://red.double-ustudio.com/?p=101</link>
      <guid>http://red.double-ustudio.com/?p=101</guid>
      <pubDate>Wed, 20 Aug 2025 10:00:00 +0900</pubDate>
      <author>staff@example.com (Staff)</author>
      <category>LIVE</category>
      <description>short</description>
      <content:encoded><![CDATA[<p>OPEN 18:30 / START 19:00</p>]]></content:encoded>
      <enclosure url="http://red.double-ustudio.com/flyer.jpg" type="image/jpeg" length="1234"/>
      <enclosure url="http://red.double-ustudio.com/teaser.mp3" type="audio/mpeg" length="1234"/>
    </item>
    <item>
      <title>No guid item</title>
      <link>http://red.double-ustudio.com/?p=102</link>
      <pubDate>2025年8月21日</pubDate>
    </item>
  </channel>
</rss>`

func TestParseVenueFeed(t *testing.T) {
	parser := NewParser()
	metadata, items, err := parser.Run([]byte(venueRSS))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if metadata.Title != "W Studio RED" {
		t.Errorf("Expected trimmed title 'W Studio RED', got: %q", metadata.Title)
	}
	if metadata.Language != "ja" {
		t.Errorf("Expected language 'ja', got: %s", metadata.Language)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	item := items[0]
	if item.GUID != "http://red.double-ustudio.com/?p=101" {
		t.Errorf("Unexpected GUID: %s", item.GUID)
	}
	if item.Content != "<p>OPEN 18:30 / START 19:00</p>" {
		t.Errorf("Unexpected content: %s", item.Content)
	}
	if item.PublishedAt == nil {
		t.Fatal("Expected published date")
	}
	expected := time.Date(2025, 8, 20, 1, 0, 0, 0, time.UTC)
	if !item.PublishedAt.Equal(expected) {
		t.Errorf("Expected published %v, got %v", expected, item.PublishedAt)
	}
	if item.PublishedAt.Location() != time.UTC {
		t.Errorf("Expected UTC published date, got %v", item.PublishedAt.Location())
	}
	if len(item.Authors) != 1 || item.Authors[0] != "staff@example.com (Staff)" {
		t.Errorf("Unexpected authors: %v", item.Authors)
	}
	if len(item.Images) != 1 || item.Images[0] != "http://red.double-ustudio.com/flyer.jpg" {
		t.Errorf("Expected only the image enclosure, got %v", item.Images)
	}
	if len(item.ContentHash) != 64 {
		t.Errorf("Expected sha256 content hash, got %q", item.ContentHash)
	}

	second := items[1]
	if second.GUID != "http://red.double-ustudio.com/?p=102" {
		t.Errorf("Expected GUID to fall back to link, got %s", second.GUID)
	}
}

func TestParseInvalidFeed(t *testing.T) {
	if _, _, err := NewParser().Run([]byte("not a feed")); err == nil {
		t.Error("Expected error for invalid feed")
	}
}

func TestParseDateFallback(t *testing.T) {
	parser := NewParser()

	if got := parser.parseDate(nil, ""); got != nil {
		t.Errorf("Expected nil for empty date, got %v", got)
	}
	if got := parser.parseDate(nil, "garbage"); got != nil {
		t.Errorf("Expected nil for unparseable date, got %v", got)
	}

	got := parser.parseDate(nil, "2025-08-20T10:00:00+09:00")
	if got == nil {
		t.Fatal("Expected dateparse fallback to parse date")
	}
	if !got.Equal(time.Date(2025, 8, 20, 1, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected fallback date: %v", got)
	}
}

func TestItemIdentity(t *testing.T) {
	item := Item{GUID: "guid-1", Title: "Live", ContentHash: "abc"}

	if got := item.Identity("red", IdentifyByGUID); got != "guid-1" {
		t.Errorf("Expected guid identity, got %s", got)
	}

	byTitle := item.Identity("red", IdentifyByTitle)
	if !strings.HasPrefix(byTitle, "title:") {
		t.Errorf("Expected title identity, got %s", byTitle)
	}
	if byTitle == item.Identity("other", IdentifyByTitle) {
		t.Error("Expected title identity to depend on feed name")
	}

	noGUID := Item{ContentHash: "abc"}
	if got := noGUID.Identity("red", IdentifyByGUID); got != "hash:abc" {
		t.Errorf("Expected hash identity, got %s", got)
	}
}

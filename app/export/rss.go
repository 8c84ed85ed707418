package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ehime-live/live-schedule/app/cfg"
	"github.com/ehime-live/live-schedule/app/database"
	"github.com/ehime-live/live-schedule/app/event"
)

const (
	channelTitle       = "愛媛ライブスケジュール"
	channelDescription = "Live music events at venues in Ehime"
)

type RSSGenerator struct {
	now func() time.Time
}

func NewRSSGenerator() *RSSGenerator {
	return &RSSGenerator{now: time.Now}
}

// Run renders events as an RSS 2.0 channel. selfPath is the request path
// (with query) the channel is served from.
func (g *RSSGenerator) Run(events []database.Event, selfPath string) (string, error) {
	var buf bytes.Buffer
	baseURL := cfg.Get().PublicURL()

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channelTitle, 4)
	g.writeElement(&buf, "link", baseURL+"/", 4)
	g.writeElement(&buf, "description", channelDescription, 4)

	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(baseURL+selfPath)))

	lastBuildDate := g.now().In(time.Local)
	if len(events) > 0 {
		lastBuildDate = publishedAt(events[0])
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Live-Schedule/%s", cfg.GetVersion()), 4)
	g.writeElement(&buf, "language", "ja", 4)

	for _, e := range events {
		g.writeItem(&buf, e, baseURL)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *RSSGenerator) writeItem(buf *bytes.Buffer, e database.Event, baseURL string) {
	buf.WriteString("    <item>\n")

	guid := e.GUID
	if guid == "" {
		guid = fmt.Sprintf("event-%d", e.ID)
	}
	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(guid)))
	xml.EscapeText(buf, []byte(guid))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", event.DisplayTitle(e.Title), 6)

	link := e.Link
	if link == "" {
		link = fmt.Sprintf("%s/events/%d", baseURL, e.ID)
	}
	g.writeElement(buf, "link", link, 6)

	g.writeElement(buf, "description", summary(e), 6)

	if e.Content != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(e.Content, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", publishedAt(e).Format(time.RFC1123Z), 6)

	if e.Venue != "" {
		g.writeElement(buf, "category", e.Venue, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *RSSGenerator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *RSSGenerator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func publishedAt(e database.Event) time.Time {
	if e.PubDate != nil {
		return *e.PubDate
	}
	return e.CreatedAt
}

// summary is the one-line event overview shared by both export formats.
func summary(e database.Event) string {
	var parts []string
	if e.Date != "" {
		parts = append(parts, event.FormatLongDate(e.Date))
	}
	for _, s := range []string{e.Venue, e.Time, e.Fee, e.Ticket} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " / ")
}

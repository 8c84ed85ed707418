package feed

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       strings.TrimSpace(feed.Title),
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		normalized := p.normalizeItem(item)
		normalized.ContentHash = p.generateContentHash(normalized)
		items = append(items, normalized)
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:        strings.TrimSpace(cmp.Or(item.GUID, item.Link)),
		Title:       strings.TrimSpace(item.Title),
		Link:        strings.TrimSpace(item.Link),
		Description: item.Description,
		Content:     item.Content,
		Categories:  item.Categories,
	}

	normalized.PublishedAt = p.parseDate(item.PublishedParsed, item.Published)
	normalized.UpdatedAt = p.parseDate(item.UpdatedParsed, item.Updated)
	normalized.Authors = p.extractAuthors(item)
	normalized.Images = p.extractImages(item)

	return normalized
}

// parseDate prefers gofeed's parsed value and falls back to dateparse for
// formats gofeed does not recognise.
func (p *Parser) parseDate(parsed *time.Time, raw string) *time.Time {
	if parsed != nil {
		t := parsed.UTC()
		return &t
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	t, err := dateparse.ParseIn(raw, time.Local)
	if err != nil {
		slog.Debug("Unparseable item date", "value", raw, "error", err)
		return nil
	}
	t = t.UTC()
	return &t
}

func (p *Parser) extractImages(item *gofeed.Item) []string {
	var images []string
	seen := make(map[string]bool)
	add := func(url string) {
		url = strings.TrimSpace(url)
		if url != "" && !seen[url] {
			seen[url] = true
			images = append(images, url)
		}
	}

	if item.Image != nil {
		add(item.Image.URL)
	}
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.HasPrefix(strings.ToLower(enclosure.Type), "image/") {
			add(enclosure.URL)
		}
	}

	return images
}

// generateContentHash identifies an item by its title and link.
func (p *Parser) generateContentHash(item Item) string {
	content := fmt.Sprintf("%s|%s",
		item.Title,
		item.Link)

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

func (p *Parser) extractAuthors(item *gofeed.Item) []string {
	var authors []string

	if len(item.Authors) > 0 {
		for _, author := range item.Authors {
			if author != nil {
				authorStr := p.formatAuthor(author.Name, author.Email)
				if authorStr != "" {
					authors = append(authors, authorStr)
				}
			}
		}
	} else if item.Author != nil {
		authorStr := p.formatAuthor(item.Author.Name, item.Author.Email)
		if authorStr != "" {
			authors = append(authors, authorStr)
		}
	}

	return authors
}

func (p *Parser) formatAuthor(name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name != "" && email != "" {
		return fmt.Sprintf("%s (%s)", email, name)
	} else if name != "" {
		return name
	} else if email != "" {
		return email
	}

	return ""
}

// Identity returns the key an item is stored under. Feeds that reissue
// GUIDs for the same post are identified by title instead.
func (i Item) Identity(feedName, identifyBy string) string {
	if identifyBy == IdentifyByTitle {
		hash := sha256.Sum256([]byte(feedName + "|" + i.Title))
		return "title:" + hex.EncodeToString(hash[:])
	}
	if i.GUID != "" {
		return i.GUID
	}
	return "hash:" + i.ContentHash
}

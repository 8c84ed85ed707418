package feed

import (
	"time"
)

// Feed processing types

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt *time.Time
	UpdatedAt   *time.Time
	Authors     []string // "email (name)" or "name"
	Categories  []string
	Images      []string // image enclosures and media thumbnails

	ContentHash  string
	IsFiltered   bool
	FilterReason string
}

// Details are the event fields recovered from a feed item.
type Details struct {
	Content string
	Images  []string
	Date    string // YYYY-MM-DD, empty when no date was found
	Time    string
	Fee     string
	Ticket  string
}

// Configuration types

const (
	IdentifyByGUID  = "guid"
	IdentifyByTitle = "title"

	DateFromContent   = "content"
	DateFromPublished = "published"
)

type Config struct {
	Name               string         // Derived from filename (without .yml extension)
	URL                string         `yaml:"url"`
	Venue              string         `yaml:"venue"`
	Settings           ConfigSettings `yaml:"settings"`
	Filters            []ConfigFilter `yaml:"filters"`
	SkipCategoriesOnly []string       `yaml:"skip_categories_only"`
}

type ConfigSettings struct {
	Enabled         bool   `yaml:"enabled"`
	RefreshInterval int    `yaml:"refresh_interval"` // seconds
	MaxItems        int    `yaml:"max_items"`
	Timeout         int    `yaml:"timeout"`         // seconds
	ExtractContent  bool   `yaml:"extract_content"` // fetch linked pages when an item has no content
	IdentifyBy      string `yaml:"identify_by"`     // guid | title
	DateFrom        string `yaml:"date_from"`       // content | published
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

func (s ConfigSettings) RefreshDuration() time.Duration {
	return time.Duration(s.RefreshInterval) * time.Second
}

func (s ConfigSettings) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

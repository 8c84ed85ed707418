package feed

import (
	"fmt"
	"slices"
	"strings"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run marks items excluded by the feed's rules. Items are returned in order
// with IsFiltered and FilterReason set.
func (f *Filterer) Run(items []Item, feedConfig *Config) []Item {
	if len(feedConfig.Filters) == 0 && len(feedConfig.SkipCategoriesOnly) == 0 {
		return items
	}

	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		isFiltered, filterReason := f.applyFilters(item, feedConfig.Filters)
		if !isFiltered {
			isFiltered, filterReason = f.applySkipCategories(item, feedConfig.SkipCategoriesOnly)
		}
		item.IsFiltered = isFiltered
		item.FilterReason = filterReason
		filtered = append(filtered, item)
	}

	return filtered
}

func (f *Filterer) applyFilters(item Item, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(item, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

// applySkipCategories drops items whose categories all belong to the skip
// list, e.g. announcement posts that are not events.
func (f *Filterer) applySkipCategories(item Item, skip []string) (bool, string) {
	if len(skip) == 0 || len(item.Categories) == 0 {
		return false, ""
	}

	for _, category := range item.Categories {
		if !slices.ContainsFunc(skip, func(s string) bool {
			return strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(category))
		}) {
			return false, ""
		}
	}

	return true, fmt.Sprintf("Skipped: only categories %v", item.Categories)
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(item Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "content":
		return item.Content
	case "authors":
		return strings.Join(item.Authors, " ")
	case "link":
		return item.Link
	case "categories":
		return strings.Join(item.Categories, " ")
	default:
		return ""
	}
}

package feed

import (
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockElements = "p, div, li, tr, h1, h2, h3, h4, h5, h6, blockquote, section, article, header, footer, dt, dd"

// HTMLToText renders HTML as plain text: entities decoded, whitespace
// collapsed within lines, line structure kept.
func HTMLToText(s string) string {
	if !strings.Contains(s, "<") {
		return normalizeText(html.UnescapeString(s))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return normalizeText(html.UnescapeString(s))
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockElements).Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	return normalizeText(doc.Text())
}

// normalizeText collapses runs of blanks within each line and drops empty
// lines.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

// ImagesFromHTML returns the image URLs referenced by <img> tags, resolved
// against base. srcset candidates are preferred over src.
func ImagesFromHTML(s, base string) []string {
	if !strings.Contains(s, "<img") && !strings.Contains(s, "<IMG") {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil
	}

	baseURL, _ := url.Parse(base)

	var images []string
	seen := make(map[string]bool)
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src := bestSrcset(sel.AttrOr("srcset", ""))
		if src == "" {
			src = strings.TrimSpace(sel.AttrOr("src", ""))
		}
		if src == "" {
			src = strings.TrimSpace(sel.AttrOr("data-src", ""))
		}
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}

		resolved := resolveURL(baseURL, src)
		if !seen[resolved] {
			seen[resolved] = true
			images = append(images, resolved)
		}
	})

	return images
}

// bestSrcset picks the widest candidate of a srcset attribute, or the first
// one when no width descriptors are given.
func bestSrcset(srcset string) string {
	best, bestWidth := "", -1
	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(candidate)
		if len(fields) == 0 {
			continue
		}

		width := 0
		if len(fields) > 1 && strings.HasSuffix(fields[1], "w") {
			width, _ = strconv.Atoi(strings.TrimSuffix(fields[1], "w"))
		}
		if width > bestWidth {
			best, bestWidth = fields[0], width
		}
	}
	return best
}

func resolveURL(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}

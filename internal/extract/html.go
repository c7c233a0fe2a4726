// Package extract gathers the text, links and dates of one candidate: the
// primary page, a matching listing row and a couple of followed links.
package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Elements that never carry notice text.
const noiseSelector = "script, style, noscript, nav, footer, header, iframe, svg, form, button"

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "li": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "ul": true, "ol": true, "dd": true, "dt": true,
	"blockquote": true, "pre": true, "hr": true, "main": true, "aside": true,
}

var (
	inlineSpace = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLines  = regexp.MustCompile(`\n\s*\n+`)
)

// ParseHTML parses body into a goquery document.
func ParseHTML(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// PageText returns the visible text of doc, one block element per line and
// capped at limit runes. doc is not modified.
func PageText(doc *goquery.Document, limit int) string {
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	root = root.Clone()
	root.Find(noiseSelector).Remove()

	var sb strings.Builder
	writeText(&sb, root)
	return Truncate(cleanText(sb.String()), limit)
}

// SelectionText returns the text of s with one block element per line.
func SelectionText(s *goquery.Selection) string {
	var sb strings.Builder
	writeText(&sb, s)
	return cleanText(sb.String())
}

func writeText(sb *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch {
		case name == "#text":
			sb.WriteString(c.Text())
		case name == "#comment":
		case blockElements[name]:
			sb.WriteByte('\n')
			writeText(sb, c)
			sb.WriteByte('\n')
		case name == "td" || name == "th":
			writeText(sb, c)
			sb.WriteString(" | ")
		default:
			writeText(sb, c)
		}
	})
}

func cleanText(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		l = inlineSpace.ReplaceAllString(l, " ")
		l = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(l), "|"))
		lines[i] = l
	}
	out := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n")
	return strings.TrimSpace(out)
}

// Truncate cuts s to at most limit runes. A non-positive limit disables it.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return strings.TrimSpace(s[:i])
		}
		n++
	}
	return s
}

package extract

import (
	"regexp"
	"strings"
)

// MaxDateHints bounds the date hints kept per candidate.
const MaxDateHints = 12

// labelWindow is how far before a date, on the same line, a label may sit.
const labelWindow = 60

const monthNames = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.](?:\d{4}|\d{2})\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+` + monthNames + `\.?,?\s+\d{4}\b`),
	regexp.MustCompile(`(?i)\b` + monthNames + `\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`),
}

// dateLabels maps label spellings to the label written into hints. Longer
// spellings come first so "last date for fee" wins over "last date".
var dateLabels = []struct{ match, label string }{
	{"last date for fee payment", "Last Date for Fee Payment"},
	{"fee payment last date", "Last Date for Fee Payment"},
	{"application begin", "Application Begin"},
	{"application start", "Application Begin"},
	{"starting date", "Start Date"},
	{"start date", "Start Date"},
	{"opening date", "Start Date"},
	{"closing date", "Last Date"},
	{"last date", "Last Date"},
	{"last day", "Last Date"},
	{"end date", "Last Date"},
	{"closing", "Last Date"},
	{"exam date", "Exam Date"},
	{"date of exam", "Exam Date"},
	{"examination date", "Exam Date"},
	{"admit card", "Admit Card"},
	{"result", "Result"},
	{"correction", "Correction"},
}

// Dates returns the date substrings of text, each prefixed with the label
// that precedes it on its line ("Last Date: 12/04/2026"). Hints are
// deduplicated and capped at limit.
func Dates(text string, limit int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		for _, span := range dateSpans(line) {
			hint := line[span[0]:span[1]]
			if label := labelBefore(line, span[0]); label != "" {
				hint = label + ": " + hint
			}
			if key := strings.ToLower(hint); !seen[key] {
				seen[key] = true
				out = append(out, hint)
				if limit > 0 && len(out) >= limit {
					return out
				}
			}
		}
	}
	return out
}

// dateSpans returns non-overlapping date matches of line in position order.
func dateSpans(line string) [][]int {
	var spans [][]int
	for _, p := range datePatterns {
		for _, m := range p.FindAllStringIndex(line, -1) {
			overlaps := false
			for _, s := range spans {
				if m[0] < s[1] && s[0] < m[1] {
					overlaps = true
					break
				}
			}
			if !overlaps {
				spans = append(spans, m)
			}
		}
	}
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j][0] < spans[j-1][0]; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}
	return spans
}

func labelBefore(line string, end int) string {
	start := end - labelWindow
	if start < 0 {
		start = 0
	}
	window := strings.ToLower(line[start:end])
	bestPos, best := -1, ""
	for _, l := range dateLabels {
		if i := strings.LastIndex(window, l.match); i > bestPos {
			bestPos, best = i, l.label
		}
	}
	return best
}

// MergeDates appends the hints of b not already in a, up to limit entries.
func MergeDates(a, b []string, limit int) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, d := range list {
			d = strings.TrimSpace(d)
			key := strings.ToLower(d)
			if d == "" || seen[key] {
				continue
			}
			if limit > 0 && len(out) >= limit {
				return out
			}
			seen[key] = true
			out = append(out, d)
		}
	}
	return out
}

package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"govjobs/harvester-service/internal/keywords"
	"govjobs/harvester-service/internal/model"
	"govjobs/harvester-service/internal/rank"
)

// A page is a listing when it has at least this many table rows, or this
// many link-bearing list items.
const (
	minListingRows  = 5
	minListingItems = 8
	minRowScore     = 2
)

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true, "this": true,
	"that": true, "are": true, "has": true, "have": true, "was": true, "will": true,
	"all": true, "you": true, "your": true, "its": true, "not": true, "can": true,
	"www": true, "http": true, "https": true, "com": true, "org": true, "gov": true, "nic": true,
}

// RowMatch is the listing row that best matches a candidate.
type RowMatch struct {
	Text  string
	Score int
	Link  *model.RankedLink
	Dates []string
}

// MatchTokens derives the row-matching tokens of a candidate: words of at
// least three characters from its title and snippet, minus stop words.
func MatchTokens(title, snippet string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range strings.Fields(keywords.Normalize(title + " " + snippet)) {
		if len([]rune(w)) < 3 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// IsListing reports whether the page under s looks like an index of notices.
func IsListing(s *goquery.Selection) bool {
	if s.Find("tr").Length() >= minListingRows {
		return true
	}
	items := 0
	s.Find("li").Each(func(_ int, li *goquery.Selection) {
		if li.Find("a[href]").Length() > 0 {
			items++
		}
	})
	return items >= minListingItems
}

// MatchRow scores every row of a listing page by how many tokens its text
// contains and returns the best row when it reaches the minimum score.
func MatchRow(s *goquery.Selection, base *url.URL, tokens []string, rules rank.Rules[rank.LinkCandidate]) (RowMatch, bool) {
	if len(tokens) == 0 || !IsListing(s) {
		return RowMatch{}, false
	}

	var best *goquery.Selection
	bestScore := 0
	s.Find("tr, li").Each(func(_ int, row *goquery.Selection) {
		if row.Find("tr, li").Length() > 0 {
			return // container row, its children are scored on their own
		}
		text := keywords.Normalize(row.Text())
		score := 0
		for _, t := range tokens {
			if strings.Contains(text, " "+t+" ") {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = row, score
		}
	})
	if best == nil || bestScore < minRowScore {
		return RowMatch{}, false
	}

	text := SelectionText(best)
	m := RowMatch{
		Text:  strings.Join(strings.Fields(text), " "),
		Score: bestScore,
		Dates: Dates(text, MaxDateHints),
	}
	if links := RankLinks(best, base, rules); len(links) > 0 {
		l := links[0]
		m.Link = &l
	}
	return m, true
}

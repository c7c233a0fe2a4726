package jobparse

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"govjobs/harvester-service/internal/extract"
	"govjobs/harvester-service/internal/keywords"
	"govjobs/harvester-service/internal/model"
	"govjobs/harvester-service/internal/stage"
)

// maxFallbackLinks bounds the links copied from the ranked candidate links.
const maxFallbackLinks = 6

var (
	feePattern      = regexp.MustCompile(`(?i)(?:₹|\brs\.?|\binr)\s*(\d[\d,]*)(?:\.\d+)?\s*(?:/-)?`)
	feeCategory     = regexp.MustCompile(`(?i)\b(general|gen|ur|obc|ews|sc|st|pwd|pwbd|ph|female|women|ex-?servicemen)\b`)
	ageRangePattern = regexp.MustCompile(`(?i)\bage\b[^0-9\n]{0,25}(\d{2})\s*(?:-|–|to)\s*(\d{2})\s*(?:years|yrs)?`)
	minAgePattern   = regexp.MustCompile(`(?i)\bmin(?:imum)?\.?\s*(?:age)?\s*(?:limit)?\s*[:\-]?\s*(\d{2})\b`)
	maxAgePattern   = regexp.MustCompile(`(?i)\bmax(?:imum)?\.?\s*(?:age)?\s*(?:limit)?\s*[:\-]?\s*(\d{2})\b`)
	postCount       = regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})+|\d+)\s*\+?\s*(?:posts?|vacanc(?:y|ies)|seats?)\b`)
)

// postStop ends the walk back from a post keyword when naming the post.
var postStop = map[string]bool{
	"for": true, "of": true, "the": true, "and": true, "in": true, "to": true, "on": true,
	"recruitment": true, "notification": true, "applications": true, "application": true,
	"invites": true, "invited": true, "various": true, "vacancy": true, "vacancies": true,
	"posts": true, "post": true, "online": true, "form": true, "apply": true, "new": true,
}

// Fallback derives a ParsedJob from the search result alone by pattern
// matching, plus the ranked links gathered for it. The result is always
// complete: every list is non-nil and there is exactly one vacancy row.
// Values the snippet does not state are model.Unknown.
func Fallback(c model.SearchResult, links []model.RankedLink) model.ParsedJob {
	snippet := strings.Join(strings.Fields(c.Snippet), " ")
	text := c.Title + "\n" + snippet

	p := model.ParsedJob{
		Title:          strings.TrimSpace(c.Title),
		Category:       stage.Classify(c.Title, snippet, c.Link),
		ShortInfo:      snippet,
		ImportantDates: orUnknown(extract.Dates(text, extract.MaxDateHints)),
		ApplicationFee: orUnknown(fees(snippet)),
		AgeLimit:       orUnknown(ages(snippet)),
		VacancyDetails: []model.VacancyDetail{{
			PostName:    unknownIfEmpty(postName(text)),
			TotalPost:   unknownIfEmpty(totalPosts(snippet)),
			Eligibility: unknownIfEmpty(strings.Join(keywords.Qualifications.Matches(snippet), ", ")),
		}},
		ImportantLinks: fallbackLinks(c, links),
	}
	p.Complete()
	return p
}

func fees(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range feePattern.FindAllStringSubmatchIndex(text, -1) {
		amount := strings.ReplaceAll(text[m[2]:m[3]], ",", "")
		fee := "Rs " + amount
		from := m[0] - 30
		if from < 0 {
			from = 0
		}
		if cats := feeCategory.FindAllString(text[from:m[0]], -1); len(cats) > 0 {
			fee = feeLabel(cats[len(cats)-1]) + ": " + fee
		}
		if !seen[fee] {
			seen[fee] = true
			out = append(out, fee)
		}
	}
	return out
}

func feeLabel(cat string) string {
	switch c := strings.ToLower(cat); c {
	case "gen", "general", "ur":
		return "General"
	case "female", "women":
		return "Female"
	case "obc", "ews", "sc", "st", "pwd", "pwbd", "ph":
		return strings.ToUpper(c)
	default:
		return "Ex-Servicemen"
	}
}

func ages(text string) []string {
	if m := ageRangePattern.FindStringSubmatch(text); m != nil {
		return []string{"Minimum: " + m[1] + " years", "Maximum: " + m[2] + " years"}
	}
	var out []string
	if m := minAgePattern.FindStringSubmatch(text); m != nil {
		out = append(out, "Minimum: "+m[1]+" years")
	}
	if m := maxAgePattern.FindStringSubmatch(text); m != nil {
		out = append(out, "Maximum: "+m[1]+" years")
	}
	return out
}

func totalPosts(text string) string {
	if m := postCount.FindStringSubmatch(text); m != nil {
		return strings.ReplaceAll(m[1], ",", "")
	}
	return ""
}

// postName returns the longest post keyword found in text together with up
// to two words in front of it ("review officer", "staff nurse").
func postName(text string) string {
	terms := keywords.Posts.Matches(text)
	if len(terms) == 0 {
		return ""
	}
	sort.SliceStable(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })

	norm := keywords.Normalize(text)
	term := strings.TrimSpace(keywords.Normalize(terms[0]))
	idx := strings.Index(norm, " "+term+" ")
	if idx < 0 {
		return titleCase(term)
	}
	before := strings.Fields(norm[:idx])
	var lead []string
	for i := len(before) - 1; i >= 0 && len(lead) < 2; i-- {
		w := before[i]
		if postStop[w] || !isWord(w) {
			break
		}
		lead = append([]string{w}, lead...)
	}
	return titleCase(strings.Join(append(lead, term), " "))
}

func isWord(w string) bool {
	for _, r := range w {
		if r >= '0' && r <= '9' {
			return false
		}
	}
	return len(w) > 1
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func fallbackLinks(c model.SearchResult, ranked []model.RankedLink) []model.Link {
	var out []model.Link
	seen := make(map[string]bool)
	for _, l := range ranked {
		if l.Score <= 0 || seen[l.URL] {
			continue
		}
		seen[l.URL] = true
		label := l.Label
		if label == "" {
			label = "Official Link"
		}
		out = append(out, model.Link{Label: label, URL: l.URL})
		if len(out) >= maxFallbackLinks {
			break
		}
	}
	if c.Link != "" && !seen[c.Link] {
		out = append(out, model.Link{Label: "Official Source", URL: c.Link})
	}
	return out
}

func orUnknown(list []string) []string {
	if len(list) == 0 {
		return []string{model.Unknown}
	}
	return list
}

func unknownIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return model.Unknown
	}
	return s
}

// Package titles holds the title routines shared by the pipeline and the read
// API: display normalization, exam keys and token similarity.
package titles

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is shown when nothing usable is left of a title.
const Fallback = "Government Job Notification"

var (
	urlPattern    = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	datedPattern  = regexp.MustCompile(`(?i)[\s,(]*\b(?:dated|dt\.?)\s*[:\-]?\s*\d{1,2}[./\-]\d{1,2}[./\-]\d{2,4}\)?`)
	emptyParens   = regexp.MustCompile(`\(\s*\)|\[\s*\]`)
	spacePattern  = regexp.MustCompile(`\s+`)
	yearPattern   = regexp.MustCompile(`^(?:19|20)\d{2}$`)
	brandSplitter = regexp.MustCompile(`\s+[|»]\s+|\s+[–—]\s+`)
)

// Display returns the title as it should be shown to readers: URLs, "dated"
// suffixes and site branding after a separator are removed and whitespace is
// collapsed. A title that ends up empty becomes Fallback.
func Display(title string) string {
	t := norm.NFKC.String(title)
	t = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, t)
	t = urlPattern.ReplaceAllString(t, " ")
	t = datedPattern.ReplaceAllString(t, " ")

	if parts := brandSplitter.Split(t, -1); len(parts) > 1 {
		if first := strings.TrimSpace(parts[0]); utf8.RuneCountInString(first) >= 8 {
			t = first
		}
	}

	t = emptyParens.ReplaceAllString(t, " ")
	t = spacePattern.ReplaceAllString(t, " ")
	t = strings.Trim(t, " -:|,.;")

	if t == "" {
		return Fallback
	}
	if strings.ToLower(t) == t {
		t = cases.Title(language.English).String(t)
	}
	return t
}

// Fold lowercases s and strips combining marks.
func Fold(s string) string {
	tr := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(tr, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// stageWords are dropped from exam keys: they describe the phase of a
// notification, not the exam itself.
var stageWords = map[string]bool{
	"notification": true, "notice": true, "recruitment": true, "online": true, "form": true,
	"forms": true, "apply": true, "application": true, "admit": true, "card": true,
	"result": true, "results": true, "answer": true, "key": true, "syllabus": true,
	"admission": true, "vacancy": true, "vacancies": true, "exam": true, "examination": true,
	"last": true, "date": true, "out": true, "released": true, "release": true,
	"download": true, "new": true, "latest": true, "advt": true, "advertisement": true,
	"official": true, "post": true, "posts": true, "job": true, "jobs": true, "check": true,
	"here": true, "now": true, "link": true, "pdf": true, "dated": true, "for": true,
	"the": true, "and": true, "pattern": true, "cut": true, "off": true, "merit": true,
	"list": true, "hall": true, "ticket": true, "registration": true, "begin": true,
	"begins": true, "started": true, "start": true,
}

// ExamKey reduces a title to the words identifying the exam: lowercased,
// without years, stage/action words or punctuation.
func ExamKey(title string) string {
	words := strings.FieldsFunc(Fold(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	kept := words[:0]
	for _, w := range words {
		if yearPattern.MatchString(w) || stageWords[w] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// Tokens splits an exam key into distinct tokens of at least three characters,
// in first-seen order.
func Tokens(key string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range strings.Fields(key) {
		if utf8.RuneCountInString(f) < 3 || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// Jaccard is |a∩b| / |a∪b| over token sets. Two empty sets score 0.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	inter, union := 0, len(set)
	seen := make(map[string]bool, len(b))
	for _, t := range b {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

// Similarity compares two raw titles by the Jaccard index of their exam keys.
func Similarity(a, b string) float64 {
	return Jaccard(Tokens(ExamKey(a)), Tokens(ExamKey(b)))
}

// Slug turns a title into a lowercase, dash-separated identifier prefix of at
// most 60 characters.
func Slug(title string) string {
	var sb strings.Builder
	dash := false
	for _, r := range Fold(title) {
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	s := strings.Trim(sb.String(), "-")
	if len(s) > 60 {
		s = strings.Trim(s[:60], "-")
	}
	if s == "" {
		return "job"
	}
	return s
}

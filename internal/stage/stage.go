// Package stage classifies a record's notification stage and drops new
// vacancies whose closing date has passed.
package stage

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"govjobs/harvester-service/internal/keywords"
)

// Stages. LatestJobs is the default new-vacancy stage.
const (
	AnswerKey  = "Answer Key"
	AdmitCard  = "Admit Card"
	Results    = "Results"
	Syllabus   = "Syllabus"
	Admission  = "Admission"
	LatestJobs = "Latest Jobs"
)

type rule struct {
	stage string
	words *keywords.Set
}

// Checked in priority order.
var rules = []rule{
	{AnswerKey, keywords.New("answer key", "answerkey", "answer sheet", "response sheet")},
	{AdmitCard, keywords.New("admit card", "admitcard", "hall ticket", "call letter", "e admit")},
	{Results, keywords.New("result", "results", "merit list", "cut off", "cutoff", "score card", "scorecard", "final selection")},
	{Syllabus, keywords.New("syllabus", "exam pattern")},
	{Admission, keywords.New("admission", "admissions", "entrance", "counselling", "counseling")},
}

// Classify returns the stage of a record from keyword presence in its title,
// summary and link.
func Classify(title, summary, link string) string {
	text := title + " " + summary + " " + link
	for _, r := range rules {
		if r.words.Contains(text) {
			return r.stage
		}
	}
	return LatestJobs
}

// IsDefault reports whether s is the plain new-vacancy stage.
func IsDefault(s string) bool {
	return s == "" || s == LatestJobs
}

var (
	closingWords = []string{"last date", "closing", "end date", "last day"}

	numericDate = regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})\b`)
	namedDate   = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)\.?,?\s+(\d{4})\b`)
)

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// ClosingDate returns the first closing date that parses, looking only at
// entries that mention one ("Last Date: 12/04/2026").
func ClosingDate(dates []string, loc *time.Location) (time.Time, bool) {
	for _, d := range dates {
		lower := strings.ToLower(d)
		closing := false
		for _, w := range closingWords {
			if strings.Contains(lower, w) {
				closing = true
				break
			}
		}
		if !closing {
			continue
		}
		if t, ok := ParseDate(d, loc); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate finds the first valid D/M/YYYY date in s, else the first valid
// "D Month YYYY" one.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	for _, m := range numericDate.FindAllStringSubmatch(s, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if t, ok := makeDate(year, time.Month(month), day, loc); ok {
			return t, true
		}
	}
	for _, m := range namedDate.FindAllStringSubmatch(s, -1) {
		month, ok := months[strings.ToLower(m[2])]
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		if t, ok := makeDate(year, month, day, loc); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func makeDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// Filter drops expired vacancies. Now is the evaluation clock.
type Filter struct {
	Now func() time.Time
}

// NewFilter returns a filter on the wall clock.
func NewFilter() *Filter {
	return &Filter{Now: time.Now}
}

// Expired reports whether a record of the given stage has a closing date
// strictly before today. Only new-vacancy and admission records expire.
func (f *Filter) Expired(stg string, dates []string) (bool, time.Time) {
	if !IsDefault(stg) && stg != Admission {
		return false, time.Time{}
	}
	now := f.Now()
	closing, ok := ClosingDate(dates, now.Location())
	if !ok {
		return false, time.Time{}
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return closing.Before(today), closing
}

// Package quality decides whether an extracted record is specific enough to
// publish. The same Gate runs when the pipeline creates a record and when the
// read API surfaces stored ones.
package quality

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"govjobs/harvester-service/internal/keywords"
	"govjobs/harvester-service/internal/model"
	"govjobs/harvester-service/internal/rank"
	"govjobs/harvester-service/internal/titles"
)

// Thresholds, in runes.
const (
	MinCoreTitle    = 8
	MinDisplayTitle = 12
	LongTitle       = 25
	LongSummary     = 60
)

// Rejection reasons.
const (
	ReasonShortTitle    = "title has no content beyond boilerplate"
	ReasonURLTitle      = "title or summary is a bare url"
	ReasonTrackingNoise = "title or summary contains tracking parameters"
	ReasonActionPhrase  = "title is a bare action phrase"
	ReasonAdminNotice   = "administrative notice unrelated to recruitment"
	ReasonGenericTitle  = "display title is generic or too short"
	ReasonVague         = "title and summary too vague"
	ReasonNoApplyLink   = "missing usable apply link"
)

// Subject is the part of a record the gate looks at. RawTitle is the title
// before display normalization; when empty, Title stands in for it.
type Subject struct {
	Title     string
	RawTitle  string
	ShortInfo string
	ApplyLink string
	Links     []model.Link
}

// SubjectOf returns the gate view of a parsed job.
func SubjectOf(p model.ParsedJob) Subject {
	return Subject{Title: p.Title, ShortInfo: p.ShortInfo, ApplyLink: p.ApplyLink, Links: p.ImportantLinks}
}

// Verdict is the outcome of a gate check. Reason is empty when OK.
type Verdict struct {
	OK     bool
	Reason string
}

// Gate is the clarity predicate.
type Gate struct {
	domains *rank.Domains
}

// NewGate returns a gate that treats links on d's trusted domains as
// evidence of an official source.
func NewGate(d *rank.Domains) *Gate {
	return &Gate{domains: d}
}

var (
	boilerplatePrefix = regexp.MustCompile(`(?i)^\s*(?:(?:latest\s+)?(?:recruitment|notification|vacancy|vacancies|jobs?|online\s+form|apply\s+online|advertisement|advt\.?|new)\b[\s:\-–|]*)+`)
	bareURL           = regexp.MustCompile(`(?i)^\s*(?:https?://|www\.)\S+\s*$`)
	trackingNoise     = regexp.MustCompile(`(?i)[?&](?:utm_[a-z]+|fbclid|gclid|mc_eid|ref|igshid)=`)
	noticeNumber      = regexp.MustCompile(`(?i)\b(?:circular|office\s+order|notice|memo|order)\s*(?:no\.?|number|#)\s*[:\-]?\s*[\w/.\-]*\d`)
	yearOrPunct       = regexp.MustCompile(`(?:19|20)\d{2}|[^\pL\pN]+`)
)

// actionPhrases are titles that name an action without saying what it is for.
var actionPhrases = map[string]bool{
	"online form": true, "apply online": true, "apply now": true, "apply here": true,
	"click here": true, "click here to apply": true, "registration": true, "login": true,
	"notification": true, "recruitment": true, "admit card": true, "result": true,
	"answer key": true, "syllabus": true, "download": true, "download notification": true,
	"view notification": true, "read more": true, "view details": true, "official website": true,
	"important links": true, "latest jobs": true,
}

// Check evaluates every rule in order and reports the first failure.
func (g *Gate) Check(s Subject) Verdict {
	title := strings.TrimSpace(s.Title)
	summary := strings.TrimSpace(s.ShortInfo)

	core := boilerplatePrefix.ReplaceAllString(title, "")
	if utf8.RuneCountInString(strings.TrimSpace(core)) < MinCoreTitle {
		return reject(ReasonShortTitle)
	}

	raw := strings.TrimSpace(s.RawTitle)
	if raw == "" {
		raw = title
	}
	if bareURL.MatchString(raw) || bareURL.MatchString(title) || bareURL.MatchString(summary) {
		return reject(ReasonURLTitle)
	}
	if trackingNoise.MatchString(raw) || trackingNoise.MatchString(title) || trackingNoise.MatchString(summary) {
		return reject(ReasonTrackingNoise)
	}

	display := titles.Display(title)
	if isActionPhrase(display) {
		return reject(ReasonActionPhrase)
	}

	text := title + " " + summary
	recruitment := keywords.Recruitment.Contains(text)
	if noticeNumber.MatchString(text) && !recruitment && !g.hasTrustedLink(s) {
		return reject(ReasonAdminNotice)
	}

	if display == titles.Fallback || utf8.RuneCountInString(display) < MinDisplayTitle {
		return reject(ReasonGenericTitle)
	}

	if utf8.RuneCountInString(title) < LongTitle && utf8.RuneCountInString(summary) < LongSummary && !recruitment {
		return reject(ReasonVague)
	}

	if !ValidLink(s.ApplyLink) {
		return reject(ReasonNoApplyLink)
	}
	return Verdict{OK: true}
}

// ValidLink reports whether raw is an absolute http(s) URL with a host.
func ValidLink(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (g *Gate) hasTrustedLink(s Subject) bool {
	if g.domains == nil {
		return false
	}
	if g.domains.Trusted(rank.Host(s.ApplyLink)) {
		return true
	}
	for _, l := range s.Links {
		if g.domains.Trusted(rank.Host(l.URL)) {
			return true
		}
	}
	return false
}

func isActionPhrase(display string) bool {
	key := strings.TrimSpace(yearOrPunct.ReplaceAllString(strings.ToLower(display), " "))
	key = strings.Join(strings.Fields(key), " ")
	return key == "" || actionPhrases[key]
}

func reject(reason string) Verdict { return Verdict{Reason: reason} }

// Package jobparse turns an extraction context into a ParsedJob, through the
// extraction service when one is configured and by pattern matching when it
// is not or when it fails.
package jobparse

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"govjobs/harvester-service/internal/extract"
	"govjobs/harvester-service/internal/keywords"
	"govjobs/harvester-service/internal/llm"
	"govjobs/harvester-service/internal/model"
	"govjobs/harvester-service/internal/quality"
	"govjobs/harvester-service/internal/rank"
	"govjobs/harvester-service/internal/titles"
)

// MaxDates caps the date list after service dates and harvested hints are merged.
const MaxDates = 15

// Sources of a parsed job.
const (
	SourceService  = "service"
	SourceFallback = "fallback"
)

// Outcome is one extraction. Err is the service error that sent the
// candidate to the fallback, nil otherwise.
type Outcome struct {
	Job model.ParsedJob
	// RawTitle is the title as the service or fallback produced it, before
	// display normalization replaced it in Job.
	RawTitle string
	Source   string
	Err      error
}

// Extractor produces ParsedJobs.
type Extractor struct {
	client  llm.Client
	domains *rank.Domains
	log     *zap.Logger
}

// New returns an Extractor. A nil client means fallback only.
func New(client llm.Client, domains *rank.Domains, log *zap.Logger) *Extractor {
	return &Extractor{client: client, domains: domains, log: log.Named("jobparse")}
}

// Extract parses one candidate. The service is called once; any error,
// including a malformed reply, falls back to pattern matching.
func (e *Extractor) Extract(ctx context.Context, c model.SearchResult, ec model.ExtractionContext) Outcome {
	if e.client != nil {
		job, err := e.client.ExtractJob(ctx, llm.Request{
			Title:     c.Title,
			Link:      c.Link,
			Snippet:   c.Snippet,
			Context:   ec.Text,
			DateHints: ec.DateHints,
		})
		if err == nil {
			return e.outcome(*job, c, ec, SourceService, nil)
		}
		e.log.Warn("extraction service failed, using fallback",
			zap.String("service", e.client.Name()),
			zap.String("link", c.Link),
			zap.Error(err),
		)
		return e.outcome(Fallback(c, ec.Links), c, ec, SourceFallback, err)
	}
	return e.outcome(Fallback(c, ec.Links), c, ec, SourceFallback, nil)
}

func (e *Extractor) outcome(p model.ParsedJob, c model.SearchResult, ec model.ExtractionContext, source string, err error) Outcome {
	return Outcome{
		Job:      e.finish(p, c, ec),
		RawTitle: strings.TrimSpace(p.Title),
		Source:   source,
		Err:      err,
	}
}

// finish is the post-processing shared by both paths.
func (e *Extractor) finish(p model.ParsedJob, c model.SearchResult, ec model.ExtractionContext) model.ParsedJob {
	p.Category = strings.TrimSpace(p.Category)
	p.ShortInfo = strings.Join(strings.Fields(p.ShortInfo), " ")
	if p.ShortInfo == "" {
		p.ShortInfo = strings.Join(strings.Fields(c.Snippet), " ")
	}

	p.ApplicationFee = dropPlaceholders(trimList(p.ApplicationFee))
	p.AgeLimit = dropPlaceholders(trimList(p.AgeLimit))
	p.ImportantDates = dropPlaceholders(extract.MergeDates(trimList(p.ImportantDates), ec.DateHints, MaxDates))
	p.VacancyDetails = cleanVacancies(p.VacancyDetails)
	p.ImportantLinks = sanitizeLinks(p.ImportantLinks)
	if len(p.ImportantLinks) == 0 {
		p.ImportantLinks = fallbackLinks(c, ec.Links)
	}

	p.Title = displayTitle(p, c)
	p.ApplyLink = e.applyLink(p, c, ec.Links)
	p.Complete()
	return p
}

// displayTitle normalizes the extracted title, falling back to the search
// title, and to the title joined with the post name, when it is too weak to
// show.
func displayTitle(p model.ParsedJob, c model.SearchResult) string {
	candidates := []string{p.Title, c.Title}
	if len(p.VacancyDetails) > 0 && p.VacancyDetails[0].PostName != model.Unknown {
		candidates = append(candidates, p.Title+" "+p.VacancyDetails[0].PostName+" Recruitment")
	}
	best := titles.Fallback
	for _, raw := range candidates {
		t := titles.Display(raw)
		if t == titles.Fallback {
			continue
		}
		if utf8.RuneCountInString(t) >= quality.MinDisplayTitle {
			return t
		}
		if best == titles.Fallback || utf8.RuneCountInString(t) > utf8.RuneCountInString(best) {
			best = t
		}
	}
	return best
}

// applyLink prefers a link labelled apply/registration, then any link on a
// trusted domain, then the candidate's own link.
func (e *Extractor) applyLink(p model.ParsedJob, c model.SearchResult, ranked []model.RankedLink) string {
	for _, l := range p.ImportantLinks {
		if keywords.ApplyLink.Contains(l.Label) {
			return l.URL
		}
	}
	for _, l := range ranked {
		if l.Score > 0 && keywords.ApplyLink.Contains(l.Label) && quality.ValidLink(l.URL) {
			return l.URL
		}
	}

	service := strings.TrimSpace(p.ApplyLink)
	if quality.ValidLink(service) && e.trusted(service) {
		return service
	}
	for _, l := range p.ImportantLinks {
		if e.trusted(l.URL) {
			return l.URL
		}
	}

	if quality.ValidLink(c.Link) {
		return c.Link
	}
	if quality.ValidLink(service) {
		return service
	}
	return ""
}

func (e *Extractor) trusted(rawURL string) bool {
	return e.domains != nil && e.domains.Trusted(rank.Host(rawURL))
}

func sanitizeLinks(in []model.Link) []model.Link {
	out := make([]model.Link, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, l := range in {
		l.URL = strings.TrimSpace(l.URL)
		if !quality.ValidLink(l.URL) || seen[l.URL] {
			continue
		}
		seen[l.URL] = true
		l.Label = strings.Join(strings.Fields(l.Label), " ")
		if l.Label == "" {
			l.Label = "Link"
		}
		out = append(out, l)
	}
	return out
}

func cleanVacancies(in []model.VacancyDetail) []model.VacancyDetail {
	out := make([]model.VacancyDetail, 0, len(in))
	for _, v := range in {
		v.PostName = strings.TrimSpace(v.PostName)
		v.TotalPost = strings.TrimSpace(v.TotalPost)
		v.Eligibility = strings.TrimSpace(v.Eligibility)
		if v.PostName == "" && v.TotalPost == "" && v.Eligibility == "" {
			continue
		}
		v.PostName = unknownIfEmpty(v.PostName)
		v.TotalPost = unknownIfEmpty(v.TotalPost)
		v.Eligibility = unknownIfEmpty(v.Eligibility)
		out = append(out, v)
	}
	return out
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// dropPlaceholders removes bare "Unknown" entries once a real value is
// present, and reduces a list of only placeholders to one.
func dropPlaceholders(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !strings.EqualFold(s, model.Unknown) {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(in) > 0 {
		return []string{model.Unknown}
	}
	return out
}

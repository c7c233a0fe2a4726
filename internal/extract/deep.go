package extract

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"govjobs/harvester-service/internal/fetch"
	"govjobs/harvester-service/internal/model"
	"govjobs/harvester-service/internal/rank"
)

// Fetcher is the part of fetch.Fetcher the extractor needs.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*fetch.Document, error)
}

// Budgets caps, in runes, each piece of gathered text.
type Budgets struct {
	Primary  int
	Document int
	Linked   int
	Total    int
}

// DefaultBudgets returns the standard text budgets.
func DefaultBudgets() Budgets {
	return Budgets{Primary: 12000, Document: 12000, Linked: 6000, Total: 20000}
}

// Options configures a Deep extractor.
type Options struct {
	FollowLinks     int
	PageTimeout     time.Duration
	DocumentTimeout time.Duration
	Budgets         Budgets
}

// Deep builds the extraction context of a candidate.
type Deep struct {
	fetcher Fetcher
	rules   rank.Rules[rank.LinkCandidate]
	opts    Options
	log     *zap.Logger
}

// NewDeep returns a Deep extractor ranking links with rules.
func NewDeep(f Fetcher, rules rank.Rules[rank.LinkCandidate], opts Options, log *zap.Logger) *Deep {
	if opts.Budgets == (Budgets{}) {
		opts.Budgets = DefaultBudgets()
	}
	if opts.FollowLinks < 0 {
		opts.FollowLinks = 0
	}
	if opts.FollowLinks > 2 {
		opts.FollowLinks = 2
	}
	return &Deep{fetcher: f, rules: rules, opts: opts, log: log.Named("extract")}
}

// Result is an extraction context plus the fetch problems met on the way.
// Problems never stop extraction; they only end up in the sweep trace.
type Result struct {
	Context  model.ExtractionContext
	Primary  fetch.Kind // kind of the primary resource, "" when it failed
	Problems []string
}

type piece struct {
	label string
	text  string
}

// Extract fetches the candidate's page, and up to FollowLinks of its best
// links, and folds everything into one bounded context.
func (d *Deep) Extract(ctx context.Context, c model.SearchResult) Result {
	var (
		res    Result
		pieces []piece
		dates  = Dates(c.Title+"\n"+c.Snippet, MaxDateHints)
	)
	if s := strings.TrimSpace(c.Snippet); s != "" {
		pieces = append(pieces, piece{text: s})
	}

	finish := func() Result {
		res.Context.Text = assemble(pieces, dates, d.opts.Budgets.Total)
		res.Context.DateHints = dates
		if res.Context.Links == nil {
			res.Context.Links = []model.RankedLink{}
		}
		if res.Context.DateHints == nil {
			res.Context.DateHints = []string{}
		}
		return res
	}

	doc, err := d.fetcher.Fetch(ctx, c.Link, d.timeoutFor(c.Link))
	if err != nil {
		res.Problems = append(res.Problems, fmt.Sprintf("primary fetch: %v", err))
		d.log.Debug("primary fetch failed", zap.String("url", c.Link), zap.Error(err))
		return finish()
	}
	res.Primary = doc.Kind
	base, _ := url.Parse(doc.URL)

	switch doc.Kind {
	case fetch.KindPDF:
		text := DocumentText(doc.Body, d.opts.Budgets.Document)
		if text == "" {
			res.Problems = append(res.Problems, "primary document: no text layer")
		}
		pieces = append(pieces, piece{label: "Document", text: text})
		dates = MergeDates(dates, Dates(text, MaxDateHints), MaxDateHints)
		if base != nil {
			cand := rank.LinkCandidate{URL: base, Label: "Official Notification", PageHost: base.Hostname()}
			res.Context.Links = []model.RankedLink{{URL: base.String(), Label: cand.Label, Score: d.rules.Score(cand)}}
		}
		return finish()

	case fetch.KindText:
		text := Truncate(cleanPDFText(string(doc.Body)), d.opts.Budgets.Primary)
		pieces = append(pieces, piece{label: "Page", text: text})
		dates = MergeDates(dates, Dates(text, MaxDateHints), MaxDateHints)
		return finish()

	case fetch.KindHTML:
	default:
		res.Problems = append(res.Problems, fmt.Sprintf("primary: unsupported content %q", doc.ContentType))
		return finish()
	}

	page, err := ParseHTML(doc.Body)
	if err != nil {
		res.Problems = append(res.Problems, err.Error())
		return finish()
	}
	text := PageText(page, d.opts.Budgets.Primary)
	pieces = append(pieces, piece{label: "Page", text: text})
	dates = MergeDates(dates, Dates(text, MaxDateHints), MaxDateHints)

	links := RankLinks(page.Selection, base, d.rules)
	res.Context.Links = links

	type target struct {
		link   model.RankedLink
		always bool // the matched row's link is followed whatever its score
	}
	var follow []target
	if row, ok := MatchRow(page.Selection, base, MatchTokens(c.Title, c.Snippet), d.rules); ok {
		pieces = append(pieces, piece{label: "Matched row", text: row.Text})
		dates = MergeDates(dates, row.Dates, MaxDateHints)
		if row.Link != nil {
			follow = append(follow, target{link: *row.Link, always: true})
		}
	}
	for _, l := range links {
		follow = append(follow, target{link: l})
	}

	seen := map[string]bool{normalizeURL(c.Link): true, normalizeURL(doc.URL): true}
	followed := 0
	for _, t := range follow {
		if followed >= d.opts.FollowLinks {
			break
		}
		l := t.link
		if !t.always && l.Score <= 0 {
			continue
		}
		key := normalizeURL(l.URL)
		if seen[key] {
			continue
		}
		seen[key] = true
		followed++

		linked, err := d.linkedText(ctx, l.URL)
		if err != nil {
			res.Problems = append(res.Problems, fmt.Sprintf("linked fetch %s: %v", l.URL, err))
			continue
		}
		if linked == "" {
			continue
		}
		pieces = append(pieces, piece{label: "Linked " + l.URL, text: linked})
		dates = MergeDates(dates, Dates(linked, MaxDateHints), MaxDateHints)
	}

	return finish()
}

func (d *Deep) linkedText(ctx context.Context, rawURL string) (string, error) {
	doc, err := d.fetcher.Fetch(ctx, rawURL, d.timeoutFor(rawURL))
	if err != nil {
		return "", err
	}
	limit := d.opts.Budgets.Linked
	switch doc.Kind {
	case fetch.KindPDF:
		return DocumentText(doc.Body, limit), nil
	case fetch.KindText:
		return Truncate(cleanPDFText(string(doc.Body)), limit), nil
	case fetch.KindHTML:
		page, err := ParseHTML(doc.Body)
		if err != nil {
			return "", err
		}
		return PageText(page, limit), nil
	default:
		return "", fmt.Errorf("unsupported content %q", doc.ContentType)
	}
}

func (d *Deep) timeoutFor(rawURL string) time.Duration {
	if u, err := url.Parse(rawURL); err == nil {
		switch strings.ToLower(path.Ext(u.Path)) {
		case ".pdf", ".doc", ".docx":
			return d.opts.DocumentTimeout
		}
	}
	return d.opts.PageTimeout
}

func assemble(pieces []piece, dates []string, limit int) string {
	var tail string
	if len(dates) > 0 {
		tail = "\n\n[Dates found]\n" + strings.Join(dates, "\n")
	}

	var sb strings.Builder
	for _, p := range pieces {
		if strings.TrimSpace(p.text) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		if p.label != "" {
			sb.WriteString("[" + p.label + "]\n")
		}
		sb.WriteString(p.text)
	}

	body := sb.String()
	if limit > 0 {
		room := limit - utf8.RuneCountInString(tail)
		if room < 0 {
			room = 0
		}
		body = Truncate(body, room)
		if room == 0 {
			body = ""
		}
	}
	if body == "" {
		return strings.TrimSpace(Truncate(tail, limit))
	}
	return body + tail
}

func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	return strings.TrimSuffix(u.String(), "/")
}

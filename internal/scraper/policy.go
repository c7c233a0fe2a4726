// Package scraper runs the harvesting sweep: search, dedup, prioritization,
// content policy and the per-candidate extraction pipeline.
package scraper

import (
	"context"
	"net/url"
	"regexp"
	"sort"

	"go.uber.org/zap"

	"govjobs/harvester-service/internal/keywords"
	"govjobs/harvester-service/internal/model"
	"govjobs/harvester-service/internal/rank"
	"govjobs/harvester-service/internal/store"
)

// recruitmentPath matches URL paths that look like notices or career pages.
var recruitmentPath = regexp.MustCompile(`(?i)recruit|career|notice|notification|advt|vacanc|job|employment|\.pdf`)

// ContentPolicy admits a candidate when its domain is allow-listed, or when
// it is a government domain whose text and path both look like recruitment.
type ContentPolicy struct {
	domains *rank.Domains
	topic   *keywords.Set
}

// NewContentPolicy returns a policy over d. A nil topic uses keywords.Recruitment.
func NewContentPolicy(d *rank.Domains, topic *keywords.Set) *ContentPolicy {
	if topic == nil {
		topic = keywords.Recruitment
	}
	return &ContentPolicy{domains: d, topic: topic}
}

// Admit reports whether r may be extracted; reason explains a rejection.
func (p *ContentPolicy) Admit(r model.SearchResult) (ok bool, reason string) {
	u, err := url.Parse(r.Link)
	if err != nil || u.Host == "" {
		return false, "unparseable link"
	}
	host := rank.Host(r.Link)
	if p.domains.Allowed(host) {
		return true, ""
	}
	if !p.domains.Gov(host) {
		return false, "domain " + host + " is neither allow-listed nor governmental"
	}
	if !p.topic.Contains(r.Title + " " + r.Snippet) {
		return false, "no recruitment keyword in title or snippet"
	}
	if !recruitmentPath.MatchString(u.Path) {
		return false, "path " + u.Path + " does not look like a recruitment page"
	}
	return true, ""
}

// Deduplicator drops results the store already knows by exact link or title.
type Deduplicator struct {
	store store.Store
	log   *zap.Logger
}

// NewDeduplicator constructs a Deduplicator.
func NewDeduplicator(s store.Store, log *zap.Logger) *Deduplicator {
	return &Deduplicator{store: s, log: log.Named("dedup")}
}

// Known reports whether r is already stored. A store error counts as not
// known; the merge step still catches the duplicate.
func (d *Deduplicator) Known(ctx context.Context, r model.SearchResult) (bool, string) {
	ok, err := d.store.ExistsByLink(ctx, r.Link)
	if err != nil {
		d.log.Warn("existence check by link failed", zap.String("link", r.Link), zap.Error(err))
	} else if ok {
		return true, "link already stored"
	}

	ok, err = d.store.ExistsByTitle(ctx, r.Title)
	if err != nil {
		d.log.Warn("existence check by title failed", zap.String("title", r.Title), zap.Error(err))
	} else if ok {
		return true, "title already stored"
	}
	return false, ""
}

// Prioritize stable-sorts results by trust tier, trusted domains first within
// a tier, and splits them at budget.
func Prioritize(results []model.SearchResult, t *rank.Tiering, d *rank.Domains, budget int) (kept, dropped []model.SearchResult) {
	type ranked struct {
		r       model.SearchResult
		tier    int
		trusted bool
	}
	rs := make([]ranked, len(results))
	for i, r := range results {
		rs[i] = ranked{r: r, tier: t.Tier(r), trusted: d.Trusted(rank.Host(r.Link))}
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].tier != rs[j].tier {
			return rs[i].tier < rs[j].tier
		}
		return rs[i].trusted && !rs[j].trusted
	})

	out := make([]model.SearchResult, len(rs))
	for i, r := range rs {
		out[i] = r.r
	}
	if budget > 0 && len(out) > budget {
		return out[:budget], out[budget:]
	}
	return out, nil
}

package merge

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"govjobs/harvester-service/internal/model"
	"govjobs/harvester-service/internal/quality"
	"govjobs/harvester-service/internal/rank"
	"govjobs/harvester-service/internal/stage"
	"govjobs/harvester-service/internal/titles"
)

// Caps on the unioned lists. Entries already stored are never dropped to
// honour a cap; only additions stop.
const (
	MaxDates = 20
	MaxLinks = 20
)

// Merge folds incoming into existing and reports whether anything changed.
// Existing values win; incoming values fill what is missing. Nothing present
// in existing is removed.
func Merge(existing model.JobRecord, incoming model.ParsedJob, stg string) (model.JobRecord, bool) {
	out := existing
	out.ParsedJob = clone(existing.ParsedJob)
	p := &out.ParsedJob

	p.ImportantDates = unionDates(p.ImportantDates, incoming.ImportantDates, MaxDates)
	p.ImportantLinks = unionLinks(p.ImportantLinks, incoming.ImportantLinks, MaxLinks)

	if !stage.IsDefault(stg) {
		p.Category = stg
	} else if p.Category == "" {
		p.Category = incoming.Category
	}

	summary := strings.TrimSpace(incoming.ShortInfo)
	if summary != "" && (p.ShortInfo == "" || longer(summary, p.ShortInfo)) {
		p.ShortInfo = summary
	}
	if !stage.IsDefault(stg) && !strings.Contains(strings.ToLower(p.ShortInfo), strings.ToLower(stg)) {
		note := stg + " available."
		if p.ShortInfo == "" {
			p.ShortInfo = note
		} else {
			p.ShortInfo += "\n" + note
		}
	}

	if missing(p.ApplicationFee) && !missing(incoming.ApplicationFee) {
		p.ApplicationFee = slices.Clone(incoming.ApplicationFee)
	}
	if missing(p.AgeLimit) && !missing(incoming.AgeLimit) {
		p.AgeLimit = slices.Clone(incoming.AgeLimit)
	}
	if missingVacancies(p.VacancyDetails) && !missingVacancies(incoming.VacancyDetails) {
		p.VacancyDetails = slices.Clone(incoming.VacancyDetails)
	}
	if strings.TrimSpace(p.ApplyLink) == "" {
		p.ApplyLink = incoming.ApplyLink
	}
	p.Complete()

	changed := !reflect.DeepEqual(completed(existing.ParsedJob), out.ParsedJob)
	if changed {
		out.QualityScore = quality.Score(out.ParsedJob)
	}
	return out, changed
}

// NewRecord builds the record inserted for a job no stored record matches.
// New records start inactive.
func NewRecord(p model.ParsedJob, sourceURL string, now time.Time) model.JobRecord {
	p = clone(p)
	p.Complete()
	return model.JobRecord{
		ParsedJob:    p,
		ID:           NewID(p.Title),
		PostDate:     now,
		IsActive:     false,
		SourceURL:    sourceURL,
		SourceDomain: rank.Host(sourceURL),
		CreatedBy:    model.CreatedByAgent,
		QualityScore: quality.Score(p),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewID derives a record id: the title slug plus an 8-hex-digit suffix.
func NewID(title string) string {
	return fmt.Sprintf("%s-%s", titles.Slug(title), uuid.NewString()[:8])
}

func unionDates(existing, incoming []string, limit int) []string {
	seen := make(map[string]bool, len(existing))
	for _, d := range existing {
		seen[strings.ToLower(strings.TrimSpace(d))] = true
	}
	known := !missing(existing)
	for _, d := range incoming {
		d = strings.TrimSpace(d)
		key := strings.ToLower(d)
		if d == "" || seen[key] || len(existing) >= limit {
			continue
		}
		if known && strings.EqualFold(d, model.Unknown) {
			continue
		}
		seen[key] = true
		existing = append(existing, d)
	}
	return existing
}

func unionLinks(existing, incoming []model.Link, limit int) []model.Link {
	seen := make(map[string]bool, len(existing))
	for _, l := range existing {
		seen[l.URL] = true
	}
	for _, l := range incoming {
		if l.URL == "" || seen[l.URL] || len(existing) >= limit {
			continue
		}
		seen[l.URL] = true
		existing = append(existing, l)
	}
	return existing
}

// longer reports whether a is substantially longer than b.
func longer(a, b string) bool {
	return float64(utf8.RuneCountInString(a)) >= 1.5*float64(utf8.RuneCountInString(b))
}

// missing reports whether a list holds no real value: it is empty or only
// has the Unknown placeholder.
func missing(list []string) bool {
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" && !strings.EqualFold(s, model.Unknown) {
			return false
		}
	}
	return true
}

func missingVacancies(list []model.VacancyDetail) bool {
	for _, v := range list {
		if v.PostName != "" && v.PostName != model.Unknown {
			return false
		}
		if v.TotalPost != "" && v.TotalPost != model.Unknown {
			return false
		}
	}
	return true
}

func clone(p model.ParsedJob) model.ParsedJob {
	p.ImportantDates = slices.Clone(p.ImportantDates)
	p.ApplicationFee = slices.Clone(p.ApplicationFee)
	p.AgeLimit = slices.Clone(p.AgeLimit)
	p.VacancyDetails = slices.Clone(p.VacancyDetails)
	p.ImportantLinks = slices.Clone(p.ImportantLinks)
	return p
}

func completed(p model.ParsedJob) model.ParsedJob {
	p = clone(p)
	p.Complete()
	return p
}

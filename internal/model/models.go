// Package model defines shared data structures for the harvester service.
package model

import "time"

// Unknown is the placeholder used for any date, fee or count the extractor
// could not determine. It is never replaced by a guessed value.
const Unknown = "Unknown"

// CreatedByAgent marks records written by the harvesting pipeline.
const CreatedByAgent = "agent"

// SearchResult is one organic result returned by the web search provider.
// It lives for a single sweep and is never persisted as-is.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Query   string `json:"query,omitempty"` // query that produced it, trace only
}

// RankedLink is an outbound link scored by the link-ranking rules.
type RankedLink struct {
	URL   string `json:"url"`
	Label string `json:"label"`
	Score int    `json:"score"`
}

// ExtractionContext is everything gathered for one candidate before
// structured extraction.
type ExtractionContext struct {
	Text      string       `json:"text"`
	Links     []RankedLink `json:"links"`
	DateHints []string     `json:"dateHints"`
}

// VacancyDetail is one row of the vacancy table.
type VacancyDetail struct {
	PostName    string `json:"postName"`
	TotalPost   string `json:"totalPost"`
	Eligibility string `json:"eligibility"`
}

// Link is a labelled link shown in the "important links" block.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ParsedJob is the canonical structured shape produced by extraction,
// whichever path produced it. Slice order is display order.
type ParsedJob struct {
	Title          string          `json:"title"`
	Category       string          `json:"category"`
	ShortInfo      string          `json:"shortInfo"`
	ImportantDates []string        `json:"importantDates"`
	ApplicationFee []string        `json:"applicationFee"`
	AgeLimit       []string        `json:"ageLimit"`
	VacancyDetails []VacancyDetail `json:"vacancyDetails"`
	ImportantLinks []Link          `json:"importantLinks"`
	ApplyLink      string          `json:"applyLink"`
}

// JobRecord is the persisted job entity.
type JobRecord struct {
	ParsedJob

	ID           string    `json:"id"`
	PostDate     time.Time `json:"postDate"`
	IsActive     bool      `json:"isActive"`
	SourceURL    string    `json:"sourceUrl,omitempty"`
	SourceDomain string    `json:"sourceDomain,omitempty"`
	CreatedBy    string    `json:"createdBy,omitempty"`
	QualityScore int       `json:"qualityScore"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RawPost is the lightweight audit row written for each inserted candidate.
type RawPost struct {
	ID        string
	JobID     string
	SourceURL string
	Title     string
	Snippet   string
	Payload   []byte // parsed job as JSON
	CreatedAt time.Time
}

// Complete fills every nil slice of p with an empty one so the value
// serialises without nulls.
func (p *ParsedJob) Complete() {
	if p.ImportantDates == nil {
		p.ImportantDates = []string{}
	}
	if p.ApplicationFee == nil {
		p.ApplicationFee = []string{}
	}
	if p.AgeLimit == nil {
		p.AgeLimit = []string{}
	}
	if p.VacancyDetails == nil {
		p.VacancyDetails = []VacancyDetail{}
	}
	if p.ImportantLinks == nil {
		p.ImportantLinks = []Link{}
	}
}

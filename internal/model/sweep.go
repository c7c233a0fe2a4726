package model

// SweepSummary is returned by one run of the harvesting pipeline.
type SweepSummary struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	JobsAdded  int    `json:"jobsAdded"`
	JobsMerged int    `json:"jobsMerged"`
	Debug      *Trace `json:"debug"`
}

// StageCounts records how many candidates survived each filtering stage.
type StageCounts struct {
	Fetched    int `json:"fetched"`
	AfterDedup int `json:"afterDedup"`
	Budgeted   int `json:"budgeted"`
	Admitted   int `json:"admitted"`
	Extracted  int `json:"extracted"`
	Fallbacks  int `json:"fallbacks"`
	Accepted   int `json:"accepted"`
	Inserted   int `json:"inserted"`
	Merged     int `json:"merged"`
}

// Skip explains why a candidate left the pipeline early.
type Skip struct {
	Stage  string `json:"stage"`
	Title  string `json:"title"`
	Link   string `json:"link"`
	Reason string `json:"reason"`
}

// Trace is the observability record of a sweep. Nothing in the pipeline
// reads it back; it exists for operators.
type Trace struct {
	SweepID string      `json:"sweepId"`
	Queries []string    `json:"queries"`
	Errors  []string    `json:"errors,omitempty"`
	Counts  StageCounts `json:"counts"`
	Skipped []Skip      `json:"skipped"`
}

// NewTrace returns an empty trace with non-nil slices.
func NewTrace(sweepID string) *Trace {
	return &Trace{
		SweepID: sweepID,
		Queries: []string{},
		Skipped: []Skip{},
	}
}

// Skip appends a skip reason.
func (t *Trace) Skip(stage string, r SearchResult, reason string) {
	t.Skipped = append(t.Skipped, Skip{
		Stage:  stage,
		Title:  r.Title,
		Link:   r.Link,
		Reason: reason,
	})
}

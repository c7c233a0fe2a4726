package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"govjobs/harvester-service/internal/events"
	"govjobs/harvester-service/internal/extract"
	"govjobs/harvester-service/internal/jobparse"
	"govjobs/harvester-service/internal/merge"
	"govjobs/harvester-service/internal/metrics"
	"govjobs/harvester-service/internal/model"
	"govjobs/harvester-service/internal/quality"
	"govjobs/harvester-service/internal/rank"
	"govjobs/harvester-service/internal/stage"
	"govjobs/harvester-service/internal/store"
)

// Trace stages.
const (
	StageDedup   = "dedup"
	StageBudget  = "budget"
	StagePolicy  = "policy"
	StageClarity = "clarity"
	StageExpiry  = "expiry"
	StageMerge   = "merge"
	StagePersist = "persist"
	StagePanic   = "panic"
)

// ResultFetcher runs one topic query.
type ResultFetcher interface {
	Fetch(ctx context.Context, query string) ([]model.SearchResult, error)
}

// ContextBuilder gathers the extraction context of a candidate.
type ContextBuilder interface {
	Extract(ctx context.Context, c model.SearchResult) extract.Result
}

// Deps are the collaborators of a Worker. Events and Metrics may be nil.
type Deps struct {
	Search   ResultFetcher
	Store    store.Store
	Tiering  *rank.Tiering
	Domains  *rank.Domains
	Policy   *ContentPolicy
	Deep     ContextBuilder
	Parser   *jobparse.Extractor
	Gate     *quality.Gate
	Expiry   *stage.Filter
	Events   events.Publisher
	Metrics  *metrics.Metrics
	Log      *zap.Logger
	Now      func() time.Time
	NewSweep func() string
}

// Options are the sweep tunables.
type Options struct {
	Queries             []string
	MaxCandidates       int
	RecentWindow        int
	SimilarityThreshold float64
}

// Worker runs sweeps. Sweep is not reentrant; the scheduler serialises calls.
type Worker struct {
	d     Deps
	opts  Options
	dedup *Deduplicator
	log   *zap.Logger
}

// NewWorker constructs a Worker.
func NewWorker(d Deps, opts Options) *Worker {
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewSweep == nil {
		d.NewSweep = uuid.NewString
	}
	if d.Expiry == nil {
		d.Expiry = &stage.Filter{Now: d.Now}
	}
	if opts.RecentWindow <= 0 {
		opts.RecentWindow = 300
	}
	return &Worker{
		d:     d,
		opts:  opts,
		dedup: NewDeduplicator(d.Store, d.Log),
		log:   d.Log.Named("scraper"),
	}
}

// sweep is the per-run state threaded through the pipeline.
type sweep struct {
	id      string
	cache   *merge.Cache
	trace   *model.Trace
	summary *model.SweepSummary
}

// Sweep runs the pipeline once. Candidate failures become skip reasons in the
// trace; only a failure outside the candidate loop reports Success=false.
func (w *Worker) Sweep(ctx context.Context) (summary model.SweepSummary) {
	start := w.d.Now()
	id := w.d.NewSweep()
	summary.Debug = model.NewTrace(id)
	log := w.log.With(zap.String("sweepId", id))

	defer func() {
		if r := recover(); r != nil {
			summary.Success = false
			summary.Message = fmt.Sprintf("sweep aborted: %v", r)
			log.Error("sweep aborted", zap.Any("panic", r))
		}
		w.d.Metrics.ObserveSweep(summary.Success, summary.JobsAdded, summary.JobsMerged, w.d.Now().Sub(start))
	}()

	log.Info("starting sweep", zap.Int("queries", len(w.opts.Queries)), zap.Int("budget", w.opts.MaxCandidates))

	recent, err := w.d.Store.RecentRecords(ctx, w.opts.RecentWindow)
	if err != nil {
		log.Error("load recent records", zap.Error(err))
		summary.Message = fmt.Sprintf("load recent records: %v", err)
		return summary
	}
	s := &sweep{
		id:      id,
		cache:   merge.NewCache(w.opts.SimilarityThreshold, recent),
		trace:   summary.Debug,
		summary: &summary,
	}

	results := w.gather(ctx, s.trace)
	s.trace.Counts.Fetched = len(results)

	fresh := make([]model.SearchResult, 0, len(results))
	for _, r := range results {
		if known, reason := w.dedup.Known(ctx, r); known {
			s.trace.Skip(StageDedup, r, reason)
			w.d.Metrics.Candidate(metrics.OutcomeDuplicate)
			continue
		}
		fresh = append(fresh, r)
	}
	s.trace.Counts.AfterDedup = len(fresh)

	candidates, over := Prioritize(fresh, w.d.Tiering, w.d.Domains, w.opts.MaxCandidates)
	for _, r := range over {
		s.trace.Skip(StageBudget, r, "over the per-sweep candidate budget")
		w.d.Metrics.Candidate(metrics.OutcomeOverBudget)
	}
	s.trace.Counts.Budgeted = len(candidates)

	for _, c := range candidates {
		w.processSafe(ctx, s, c)
	}

	summary.Success = true
	summary.Message = fmt.Sprintf("sweep complete: %d added, %d merged from %d candidates",
		summary.JobsAdded, summary.JobsMerged, len(candidates))
	log.Info("sweep done",
		zap.Int("added", summary.JobsAdded),
		zap.Int("merged", summary.JobsMerged),
		zap.Int("skipped", len(s.trace.Skipped)),
		zap.Duration("took", w.d.Now().Sub(start)),
	)
	return summary
}

// gather runs every query and de-duplicates results by link. A failing query
// contributes nothing.
func (w *Worker) gather(ctx context.Context, trace *model.Trace) []model.SearchResult {
	seen := make(map[string]bool)
	var out []model.SearchResult
	for _, q := range w.opts.Queries {
		trace.Queries = append(trace.Queries, q)
		results, err := w.d.Search.Fetch(ctx, q)
		if err != nil {
			w.log.Warn("search query failed, continuing", zap.String("query", q), zap.Error(err))
			trace.Errors = append(trace.Errors, fmt.Sprintf("query %q: %v", q, err))
			continue
		}
		for _, r := range results {
			if r.Link == "" || seen[r.Link] {
				continue
			}
			seen[r.Link] = true
			out = append(out, r)
		}
	}
	return out
}

func (w *Worker) processSafe(ctx context.Context, s *sweep, c model.SearchResult) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("candidate panicked", zap.String("link", c.Link), zap.Any("panic", r))
			s.trace.Skip(StagePanic, c, fmt.Sprintf("internal error: %v", r))
			w.d.Metrics.Candidate(metrics.OutcomeFailed)
		}
	}()
	w.process(ctx, s, c)
}

func (w *Worker) process(ctx context.Context, s *sweep, c model.SearchResult) {
	if ok, reason := w.d.Policy.Admit(c); !ok {
		s.trace.Skip(StagePolicy, c, reason)
		w.d.Metrics.Candidate(metrics.OutcomeRejected)
		return
	}
	s.trace.Counts.Admitted++

	res := w.d.Deep.Extract(ctx, c)
	for _, p := range res.Problems {
		s.trace.Errors = append(s.trace.Errors, c.Link+": "+p)
	}
	s.trace.Counts.Extracted++

	out := w.d.Parser.Extract(ctx, c, res.Context)
	if out.Source == jobparse.SourceFallback {
		s.trace.Counts.Fallbacks++
		w.d.Metrics.Fallback()
	}
	job := out.Job
	stg := stage.Classify(job.Title, job.ShortInfo, c.Link)
	job.Category = stg

	subject := quality.SubjectOf(job)
	subject.RawTitle = out.RawTitle
	if v := w.d.Gate.Check(subject); !v.OK {
		s.trace.Skip(StageClarity, c, v.Reason)
		w.d.Metrics.Candidate(metrics.OutcomeUnclear)
		return
	}
	if expired, closing := w.d.Expiry.Expired(stg, job.ImportantDates); expired {
		s.trace.Skip(StageExpiry, c, "closing date "+closing.Format("2006-01-02")+" has passed")
		w.d.Metrics.Candidate(metrics.OutcomeExpired)
		return
	}
	s.trace.Counts.Accepted++

	if existing, score := s.cache.FindSimilar(job.Title); existing != nil {
		w.mergeInto(ctx, s, c, *existing, job, stg, score)
		return
	}
	w.insert(ctx, s, c, job)
}

func (w *Worker) mergeInto(ctx context.Context, s *sweep, c model.SearchResult, existing model.JobRecord, job model.ParsedJob, stg string, score float64) {
	merged, changed := merge.Merge(existing, job, stg)
	if !changed {
		s.trace.Skip(StageMerge, c, fmt.Sprintf("nothing new for %s (similarity %.2f)", existing.ID, score))
		w.d.Metrics.Candidate(metrics.OutcomeUnchanged)
		return
	}
	merged.UpdatedAt = w.d.Now()
	res, err := store.Update(ctx, w.d.Store, merged)
	if err != nil {
		s.trace.Skip(StagePersist, c, err.Error())
		w.d.Metrics.Candidate(metrics.OutcomeFailed)
		return
	}
	if res.Partial() {
		w.log.Warn("secondary write failed", zap.String("id", res.ID), zap.Error(res.SecondaryErr))
		s.trace.Errors = append(s.trace.Errors, fmt.Sprintf("%s: secondary write: %v", res.ID, res.SecondaryErr))
	}
	s.cache.Put(merged)
	s.summary.JobsMerged++
	s.trace.Counts.Merged++
	w.d.Metrics.Candidate(metrics.OutcomeMerged)
	w.log.Info("merged job", zap.String("id", merged.ID), zap.Float64("similarity", score), zap.String("link", c.Link))
	w.publish(ctx, s, merged, events.ActionMerged)
}

func (w *Worker) insert(ctx context.Context, s *sweep, c model.SearchResult, job model.ParsedJob) {
	now := w.d.Now()
	rec := merge.NewRecord(job, c.Link, now)

	// ParsedJob holds only strings and slices of them; Marshal cannot fail.
	payload, _ := json.Marshal(job)
	raw := &model.RawPost{
		ID:        uuid.NewString(),
		SourceURL: c.Link,
		Title:     c.Title,
		Snippet:   c.Snippet,
		Payload:   payload,
		CreatedAt: now,
	}

	res, err := store.Insert(ctx, w.d.Store, rec, raw)
	if err != nil {
		s.trace.Skip(StagePersist, c, err.Error())
		w.d.Metrics.Candidate(metrics.OutcomeFailed)
		return
	}
	if res.Partial() {
		w.log.Warn("secondary write failed", zap.String("id", res.ID), zap.Error(res.SecondaryErr))
		s.trace.Errors = append(s.trace.Errors, fmt.Sprintf("%s: secondary write: %v", res.ID, res.SecondaryErr))
	}
	s.cache.Put(rec)
	s.summary.JobsAdded++
	s.trace.Counts.Inserted++
	w.d.Metrics.Candidate(metrics.OutcomeInserted)
	w.log.Info("inserted job", zap.String("id", rec.ID), zap.String("link", c.Link), zap.Int("quality", rec.QualityScore))
	w.publish(ctx, s, rec, events.ActionInserted)
}

// publish is best effort.
func (w *Worker) publish(ctx context.Context, s *sweep, rec model.JobRecord, action string) {
	err := w.d.Events.PublishJobIngested(ctx, events.JobIngested{
		JobID:     rec.ID,
		Action:    action,
		Title:     rec.Title,
		Category:  rec.Category,
		SourceURL: rec.SourceURL,
		SweepID:   s.id,
		At:        w.d.Now(),
	})
	if err != nil {
		w.log.Warn("publish "+events.ChannelJobIngested+" failed", zap.String("id", rec.ID), zap.Error(err))
	}
}

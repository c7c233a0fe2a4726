// Package api implements the public read API over harvested jobs.
//
// Routes:
//
//	GET  /health      → liveness
//	GET  /metrics     → Prometheus exposition
//	GET  /jobs        → active jobs that pass the clarity gate (?limit=, default 50, max 200)
//	GET  /jobs/{id}   → one active job, 404 when absent, inactive or unclear
//	POST /sweeps      → run a sweep now and return its summary
//	GET  /sweeps/last → summary of the last completed sweep
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"govjobs/harvester-service/internal/model"
	"govjobs/harvester-service/internal/quality"
	"govjobs/harvester-service/internal/scheduler"
	"govjobs/harvester-service/internal/store"
	"govjobs/harvester-service/internal/titles"
)

const (
	defaultLimit = 50
	maxLimit     = 200

	// Listing over-fetches so gate rejections do not starve the page.
	overFetch = 3
)

// Sweeps triggers sweeps and reports the last one.
type Sweeps interface {
	RunOnce(ctx context.Context) (model.SweepSummary, error)
	Last() (model.SweepSummary, bool)
}

// Handler holds shared dependencies.
type Handler struct {
	store   store.Store
	gate    *quality.Gate
	sweeps  Sweeps
	metrics http.Handler
	version string
	log     *zap.Logger
}

// NewHandler returns a configured Handler. sweeps and metrics may be nil;
// their routes then answer 503 and 404.
func NewHandler(s store.Store, gate *quality.Gate, sweeps Sweeps, metrics http.Handler, version string, log *zap.Logger) *Handler {
	return &Handler{store: s, gate: gate, sweeps: sweeps, metrics: metrics, version: version, log: log.Named("api")}
}

// Router returns the chi router serving every route.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}
	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.listJobs)
		r.Get("/{id}", h.getJob)
	})
	r.Post("/sweeps", h.runSweep)
	r.Get("/sweeps/last", h.lastSweep)
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, map[string]string{
		"status":  "ok",
		"service": "harvester-service",
		"version": h.version,
	})
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLimit)
	}

	recs, err := h.store.ListActive(r.Context(), limit*overFetch)
	if err != nil {
		h.log.Error("list active jobs", zap.Error(err))
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	jobs := make([]model.JobRecord, 0, limit)
	for _, rec := range recs {
		if len(jobs) == limit {
			break
		}
		if !h.gate.Check(quality.SubjectOf(rec.ParsedJob)).OK {
			continue
		}
		jobs = append(jobs, present(rec))
	}
	jsonOK(w, jobs)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("get job", zap.String("id", id), zap.Error(err))
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	if !rec.IsActive || !h.gate.Check(quality.SubjectOf(rec.ParsedJob)).OK {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	jsonOK(w, present(*rec))
}

func (h *Handler) runSweep(w http.ResponseWriter, r *http.Request) {
	if h.sweeps == nil {
		jsonError(w, "sweeps are disabled", http.StatusServiceUnavailable)
		return
	}
	summary, err := h.sweeps.RunOnce(r.Context())
	if errors.Is(err, scheduler.ErrBusy) {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.log.Error("manual sweep", zap.Error(err))
		jsonError(w, "sweep could not start", http.StatusInternalServerError)
		return
	}
	jsonOK(w, summary)
}

func (h *Handler) lastSweep(w http.ResponseWriter, _ *http.Request) {
	if h.sweeps == nil {
		jsonError(w, "sweeps are disabled", http.StatusServiceUnavailable)
		return
	}
	summary, ok := h.sweeps.Last()
	if !ok {
		jsonError(w, "no sweep has completed yet", http.StatusNotFound)
		return
	}
	jsonOK(w, summary)
}

// present normalizes the display title. Stored data is not touched.
func present(rec model.JobRecord) model.JobRecord {
	rec.Title = titles.Display(rec.Title)
	rec.Complete()
	return rec
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

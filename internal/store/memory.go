package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"govjobs/harvester-service/internal/model"
)

// Memory is an in-process Store. Records are copied on the way in and out.
type Memory struct {
	mu       sync.RWMutex
	caps     Capabilities
	jobs     map[string]model.JobRecord
	rawPosts []model.RawPost
}

// NewMemory returns an empty store with the full schema, holding recs.
func NewMemory(recs ...model.JobRecord) *Memory {
	m := &Memory{caps: Full, jobs: make(map[string]model.JobRecord)}
	for _, r := range recs {
		m.jobs[r.ID] = cloneRecord(r)
	}
	return m
}

// Capabilities implements Store.
func (m *Memory) Capabilities() Capabilities { return m.caps }

// ExistsByLink implements Store.
func (m *Memory) ExistsByLink(_ context.Context, link string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.jobs {
		if link != "" && (r.ApplyLink == link || r.SourceURL == link) {
			return true, nil
		}
	}
	return false, nil
}

// ExistsByTitle implements Store.
func (m *Memory) ExistsByTitle(_ context.Context, title string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.jobs {
		if r.Title == title {
			return true, nil
		}
	}
	return false, nil
}

// RecentRecords implements Store.
func (m *Memory) RecentRecords(_ context.Context, limit int) ([]model.JobRecord, error) {
	return m.sorted(limit, false, func(a, b model.JobRecord) bool { return a.UpdatedAt.After(b.UpdatedAt) }), nil
}

// ListActive implements Store.
func (m *Memory) ListActive(_ context.Context, limit int) ([]model.JobRecord, error) {
	return m.sorted(limit, true, func(a, b model.JobRecord) bool { return a.PostDate.After(b.PostDate) }), nil
}

func (m *Memory) sorted(limit int, activeOnly bool, less func(a, b model.JobRecord) bool) []model.JobRecord {
	m.mu.RLock()
	out := make([]model.JobRecord, 0, len(m.jobs))
	for _, r := range m.jobs {
		if activeOnly && !r.IsActive {
			continue
		}
		out = append(out, cloneRecord(r))
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if less(out[i], out[j]) {
			return true
		}
		if less(out[j], out[i]) {
			return false
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GetByID implements Store.
func (m *Memory) GetByID(_ context.Context, id string) (*model.JobRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	r = cloneRecord(r)
	return &r, nil
}

// InsertJob implements Store. Provenance fields are left for UpdateProvenance.
func (m *Memory) InsertJob(_ context.Context, rec model.JobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[rec.ID]; ok {
		return fmt.Errorf("job %s already exists", rec.ID)
	}
	rec = cloneRecord(rec)
	rec.SourceURL, rec.SourceDomain, rec.CreatedBy, rec.QualityScore = "", "", "", 0
	m.jobs[rec.ID] = rec
	return nil
}

// UpdateJob implements Store. Activation and provenance are kept.
func (m *Memory) UpdateJob(_ context.Context, rec model.JobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.jobs[rec.ID]
	if !ok {
		return ErrNotFound
	}
	rec = cloneRecord(rec)
	cur.ParsedJob = rec.ParsedJob
	cur.UpdatedAt = rec.UpdatedAt
	m.jobs[rec.ID] = cur
	return nil
}

// UpdateProvenance implements Store.
func (m *Memory) UpdateProvenance(_ context.Context, rec model.JobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.jobs[rec.ID]
	if !ok {
		return ErrNotFound
	}
	cur.SourceURL, cur.SourceDomain = rec.SourceURL, rec.SourceDomain
	cur.CreatedBy, cur.QualityScore = rec.CreatedBy, rec.QualityScore
	m.jobs[rec.ID] = cur
	return nil
}

// InsertRawPost implements Store.
func (m *Memory) InsertRawPost(_ context.Context, p model.RawPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Payload = slices.Clone(p.Payload)
	m.rawPosts = append(m.rawPosts, p)
	return nil
}

// RawPosts returns the audit rows written so far.
func (m *Memory) RawPosts() []model.RawPost {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.rawPosts)
}

// Len returns the number of job records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.jobs)
}

func cloneRecord(r model.JobRecord) model.JobRecord {
	r.ImportantDates = slices.Clone(r.ImportantDates)
	r.ApplicationFee = slices.Clone(r.ApplicationFee)
	r.AgeLimit = slices.Clone(r.AgeLimit)
	r.VacancyDetails = slices.Clone(r.VacancyDetails)
	r.ImportantLinks = slices.Clone(r.ImportantLinks)
	return r
}

// Package merge recognises when an extracted job is a notification the store
// already holds and folds the new findings into the stored record.
package merge

import (
	"govjobs/harvester-service/internal/model"
	"govjobs/harvester-service/internal/titles"
)

// DefaultThreshold is the exam-key similarity at or above which two titles
// name the same notification.
const DefaultThreshold = 0.7

type entry struct {
	rec    model.JobRecord
	tokens []string
}

// Cache holds the recent records of one sweep for similarity lookups. It is
// built at sweep start, updated after every insert or merge and dropped when
// the sweep ends. It is not safe for concurrent use; sweeps are sequential.
type Cache struct {
	threshold float64
	entries   []*entry
	byID      map[string]*entry
}

// NewCache returns a cache over recs. A threshold outside (0, 1] selects
// DefaultThreshold.
func NewCache(threshold float64, recs []model.JobRecord) *Cache {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	c := &Cache{threshold: threshold, byID: make(map[string]*entry, len(recs))}
	for _, r := range recs {
		c.Put(r)
	}
	return c
}

// FindSimilar returns the record whose title is most similar to title, and
// the similarity. The record is nil when the best score is below the
// threshold. Ties keep the earlier record.
func (c *Cache) FindSimilar(title string) (*model.JobRecord, float64) {
	tokens := titles.Tokens(titles.ExamKey(title))
	var best *entry
	bestScore := 0.0
	for _, e := range c.entries {
		if s := titles.Jaccard(tokens, e.tokens); s > bestScore {
			best, bestScore = e, s
		}
	}
	if best == nil || bestScore < c.threshold {
		return nil, bestScore
	}
	rec := best.rec
	return &rec, bestScore
}

// Put adds rec, or replaces the cached record with the same ID.
func (c *Cache) Put(rec model.JobRecord) {
	tokens := titles.Tokens(titles.ExamKey(rec.Title))
	if e, ok := c.byID[rec.ID]; ok && rec.ID != "" {
		e.rec, e.tokens = rec, tokens
		return
	}
	e := &entry{rec: rec, tokens: tokens}
	c.entries = append(c.entries, e)
	if rec.ID != "" {
		c.byID[rec.ID] = e
	}
}

// Len returns the number of cached records.
func (c *Cache) Len() int { return len(c.entries) }

// Threshold returns the similarity threshold in use.
func (c *Cache) Threshold() float64 { return c.threshold }

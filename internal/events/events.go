// Package events publishes ingestion events on Redis pub/sub for downstream
// consumers (search indexing, subscriber notification).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChannelJobIngested carries one message per inserted or merged record.
const ChannelJobIngested = "EVENT_JOB_INGESTED"

// Actions.
const (
	ActionInserted = "inserted"
	ActionMerged   = "merged"
)

// JobIngested is the payload on ChannelJobIngested.
type JobIngested struct {
	Type      string    `json:"type"`
	JobID     string    `json:"jobId"`
	Action    string    `json:"action"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	SourceURL string    `json:"sourceUrl,omitempty"`
	SweepID   string    `json:"sweepId"`
	At        time.Time `json:"at"`
}

// Publisher delivers ingestion events.
type Publisher interface {
	PublishJobIngested(ctx context.Context, e JobIngested) error
}

// RedisPublisher publishes on a Redis channel.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a publisher on rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// PublishJobIngested implements Publisher.
func (p *RedisPublisher) PublishJobIngested(ctx context.Context, e JobIngested) error {
	e.Type = ChannelJobIngested
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ChannelJobIngested, err)
	}
	if err := p.rdb.Publish(ctx, ChannelJobIngested, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ChannelJobIngested, err)
	}
	return nil
}

// Nop discards events. It is used when Redis is not configured.
type Nop struct{}

// PublishJobIngested implements Publisher.
func (Nop) PublishJobIngested(context.Context, JobIngested) error { return nil }

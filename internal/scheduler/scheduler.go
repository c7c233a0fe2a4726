// Package scheduler wires up the cron job that periodically runs a sweep.
//
// At most one sweep runs at a time: an in-process mutex guards this replica,
// and when Redis is available a SET NX lock guards the whole deployment.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"govjobs/harvester-service/internal/config"
	"govjobs/harvester-service/internal/model"
)

// LockKey is the Redis key of the deployment-wide sweep lock.
const LockKey = "harvester:sweep:lock"

// ErrBusy is returned when a sweep is already running here or elsewhere.
var ErrBusy = errors.New("a sweep is already running")

// Sweeper runs one sweep.
type Sweeper interface {
	Sweep(ctx context.Context) model.SweepSummary
}

// release deletes the lock only if this holder still owns it.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Scheduler wraps robfig/cron and serialises sweeps.
type Scheduler struct {
	cron    *cron.Cron
	rdb     *redis.Client
	sweeper Sweeper
	spec    string
	ttl     time.Duration
	onStart bool
	log     *zap.Logger

	running sync.Mutex
	startup sync.WaitGroup

	mu   sync.Mutex
	last *model.SweepSummary
}

// New creates a Scheduler that fires every cfg.IntervalHours hours. rdb may
// be nil.
func New(sweeper Sweeper, rdb *redis.Client, cfg config.ScheduleConfig, log *zap.Logger) *Scheduler {
	hours := cfg.IntervalHours
	if hours <= 0 {
		hours = 6
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Scheduler{
		cron:    cron.New(),
		rdb:     rdb,
		sweeper: sweeper,
		spec:    fmt.Sprintf("@every %dh", hours),
		ttl:     ttl,
		onStart: cfg.RunOnStart,
		log:     log.Named("scheduler"),
	}
}

// Start registers the job and starts the cron. With RunOnStart one sweep
// also runs immediately, in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() { s.tick(ctx) })
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.log.Info("cron started", zap.String("spec", s.spec))

	if s.onStart {
		s.startup.Add(1)
		go func() {
			defer s.startup.Done()
			s.tick(ctx)
		}()
	}
	return nil
}

// Stop stops the cron and waits for running ticks, the startup sweep
// included, to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.startup.Wait()
	s.log.Info("cron stopped")
}

func (s *Scheduler) tick(ctx context.Context) {
	summary, err := s.RunOnce(ctx)
	if errors.Is(err, ErrBusy) {
		s.log.Info("previous sweep still running, skipping tick")
		return
	}
	if err != nil {
		s.log.Error("sweep not started", zap.Error(err))
		return
	}
	if !summary.Success {
		s.log.Warn("sweep failed", zap.String("message", summary.Message))
	}
}

// RunOnce runs a sweep now unless one is already running, in which case it
// returns ErrBusy without waiting.
func (s *Scheduler) RunOnce(ctx context.Context) (model.SweepSummary, error) {
	if !s.running.TryLock() {
		return model.SweepSummary{}, ErrBusy
	}
	defer s.running.Unlock()

	unlock, err := s.lock(ctx)
	if err != nil {
		return model.SweepSummary{}, err
	}
	defer unlock()

	summary := s.sweeper.Sweep(ctx)
	s.mu.Lock()
	s.last = &summary
	s.mu.Unlock()
	return summary, nil
}

// Last returns the summary of the most recent completed sweep, if any.
func (s *Scheduler) Last() (model.SweepSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return model.SweepSummary{}, false
	}
	return *s.last, true
}

// lock takes the Redis lock. Without Redis it is a no-op.
func (s *Scheduler) lock(ctx context.Context) (func(), error) {
	if s.rdb == nil {
		return func() {}, nil
	}
	token := uuid.NewString()
	ok, err := s.rdb.SetNX(ctx, LockKey, token, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}
	return func() {
		// The sweep context may already be cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := release.Run(ctx, s.rdb, []string{LockKey}, token).Err(); err != nil {
			s.log.Warn("release sweep lock", zap.Error(err))
		}
	}, nil
}

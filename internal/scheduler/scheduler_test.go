package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"govjobs/harvester-service/internal/config"
	"govjobs/harvester-service/internal/model"
)

type fakeSweeper struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (f *fakeSweeper) Sweep(context.Context) model.SweepSummary {
	n := f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return model.SweepSummary{Success: true, JobsAdded: int(n)}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRunOnce_WithoutRedis(t *testing.T) {
	sw := &fakeSweeper{}
	s := New(sw, nil, config.ScheduleConfig{}, zap.NewNop())

	_, ok := s.Last()
	assert.False(t, ok)

	summary, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.Success)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, summary, last)
}

func TestRunOnce_ReleasesLock(t *testing.T) {
	mr, rdb := newRedis(t)
	sw := &fakeSweeper{}
	s := New(sw, rdb, config.ScheduleConfig{LockTTL: time.Hour}, zap.NewNop())

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, mr.Exists(LockKey))

	_, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, sw.calls.Load())
}

func TestRunOnce_LockHeldElsewhere(t *testing.T) {
	mr, rdb := newRedis(t)
	require.NoError(t, mr.Set(LockKey, "other-replica"))
	sw := &fakeSweeper{}
	s := New(sw, rdb, config.ScheduleConfig{}, zap.NewNop())

	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Zero(t, sw.calls.Load())

	got, err := mr.Get(LockKey)
	require.NoError(t, err)
	assert.Equal(t, "other-replica", got, "a foreign lock is never released")
}

func TestRunOnce_LockExpires(t *testing.T) {
	mr, rdb := newRedis(t)
	sw := &fakeSweeper{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := New(sw, rdb, config.ScheduleConfig{LockTTL: 2 * time.Hour}, zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.RunOnce(context.Background())
	}()
	<-sw.started

	assert.Equal(t, 2*time.Hour, mr.TTL(LockKey))
	mr.FastForward(3 * time.Hour)
	assert.False(t, mr.Exists(LockKey))

	close(sw.release)
	<-done
}

func TestRunOnce_Overlap(t *testing.T) {
	sw := &fakeSweeper{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := New(sw, nil, config.ScheduleConfig{}, zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.RunOnce(context.Background())
	}()
	<-sw.started

	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(sw.release)
	<-done
	assert.EqualValues(t, 1, sw.calls.Load())
}

func TestRunOnce_RedisDown(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	s := New(&fakeSweeper{}, rdb, config.ScheduleConfig{}, zap.NewNop())

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBusy)
}

func TestStart_RunOnStart(t *testing.T) {
	sw := &fakeSweeper{started: make(chan struct{}, 1)}
	s := New(sw, nil, config.ScheduleConfig{IntervalHours: 6, RunOnStart: true}, zap.NewNop())
	assert.Equal(t, "@every 6h", s.spec)

	require.NoError(t, s.Start(context.Background()))
	select {
	case <-sw.started:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep did not run on start")
	}
	s.Stop()
}

func TestStop_WaitsForStartupSweep(t *testing.T) {
	sw := &fakeSweeper{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := New(sw, nil, config.ScheduleConfig{RunOnStart: true}, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	<-sw.started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the startup sweep was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(sw.release)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the sweep finished")
	}
	_, ok := s.Last()
	assert.True(t, ok)
}

package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/taskroster-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noop(context.Context) error { return nil }

func TestQueue(t *testing.T) {
	t.Run("enqueue until full", func(t *testing.T) {
		q := NewQueue(2, testLogger())

		require.NoError(t, q.Enqueue(NewFunc("a", noop)))
		require.NoError(t, q.Enqueue(NewFunc("b", noop)))

		err := q.Enqueue(NewFunc("c", noop))
		assert.ErrorIs(t, err, ErrQueueFull)
		assert.Len(t, q.Channel(), 2)
	})

	t.Run("closed queue rejects and still delivers", func(t *testing.T) {
		q := NewQueue(2, testLogger())
		job := NewFunc("a", noop)
		require.NoError(t, q.Enqueue(job))

		q.Close()
		q.Close()

		assert.ErrorIs(t, q.Enqueue(NewFunc("b", noop)), ErrQueueClosed)

		got, ok := <-q.Channel()
		require.True(t, ok)
		assert.Equal(t, job.ID(), got.ID())

		_, ok = <-q.Channel()
		assert.False(t, ok)
	})

	t.Run("concurrent enqueue and close does not panic", func(t *testing.T) {
		q := NewQueue(8, testLogger())
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = q.Enqueue(NewFunc("x", noop))
			}()
		}
		q.Close()
		wg.Wait()
	})
}

func TestNewWorkerPoolDefaults(t *testing.T) {
	q := NewQueue(1, testLogger())

	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 5}, testLogger())
	assert.Equal(t, 5, pool.workerCount)

	pool = NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 0}, testLogger())
	assert.Equal(t, 1, pool.workerCount)

	pool = NewWorkerPool(q, WorkerPoolConfig{WorkerCount: -5}, testLogger())
	assert.Equal(t, 1, pool.workerCount)
}

func TestRunnerProcessesJobs(t *testing.T) {
	r := NewRunner(config.JobsConfig{WorkerCount: 3, QueueSize: 10}, testLogger())

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, r.Submit(context.Background(), NewFunc("count", func(context.Context) error {
			ran.Add(1)
			return nil
		})))
	}

	r.Start()
	require.NoError(t, r.Stop(context.Background()))
	assert.Equal(t, int32(10), ran.Load(), "stop drains queued jobs")

	err := r.Submit(context.Background(), NewFunc("late", noop))
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestRunnerErrorHandler(t *testing.T) {
	r := NewRunner(config.JobsConfig{WorkerCount: 1, QueueSize: 4}, testLogger())

	var mu sync.Mutex
	var failed []error
	r.SetErrorHandler(func(job Job, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, err)
	})

	boom := errors.New("boom")
	require.NoError(t, r.Submit(context.Background(), NewFunc("fail", func(context.Context) error {
		return boom
	})))
	require.NoError(t, r.Submit(context.Background(), NewFunc("panic", func(context.Context) error {
		panic("kaboom")
	})))
	require.NoError(t, r.Submit(context.Background(), NewFunc("ok", noop)))

	r.Start()
	require.NoError(t, r.Stop(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failed, 2)
	assert.ErrorIs(t, failed[0], boom)
	assert.Contains(t, failed[1].Error(), "kaboom")
}

func TestRunnerStopTimeoutCancelsJobs(t *testing.T) {
	r := NewRunner(config.JobsConfig{WorkerCount: 1, QueueSize: 2}, testLogger())

	started := make(chan struct{})
	var cancelled atomic.Bool
	require.NoError(t, r.Submit(context.Background(), NewFunc("slow", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	})))

	r.Start()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, cancelled.Load())
}

// Package queue serializes task mutations on a fixed pool of workers.
package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrStopped is returned by Do once the workers have shut down.
var ErrStopped = errors.New("queue: serializer stopped")

type job struct {
	ctx  context.Context
	id   int64
	fn   func(ctx context.Context) error
	done chan error
}

// Serializer routes work to a fixed set of workers using consistent hashing
// on the task id, so at most one mutation per task is in flight.
type Serializer struct {
	workers []chan job
	stopped chan struct{}
	log     zerolog.Logger
}

// NewSerializer creates a Serializer with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewSerializer(numWorkers int, log zerolog.Logger) *Serializer {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	s := &Serializer{
		workers: make([]chan job, numWorkers),
		stopped: make(chan struct{}),
		log:     log,
	}
	for i := range s.workers {
		s.workers[i] = make(chan job, channelBuffer)
	}
	return s
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// pending and later calls to Do then fail with ErrStopped.
func (s *Serializer) Start(ctx context.Context) {
	for i, ch := range s.workers {
		go s.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		close(s.stopped)
	}()
}

// Do runs fn on the worker owning taskID and waits for its result. It returns
// early with ctx's error if ctx is done before fn has started.
func (s *Serializer) Do(ctx context.Context, taskID int64, fn func(ctx context.Context) error) error {
	j := job{ctx: ctx, id: taskID, fn: fn, done: make(chan error, 1)}

	select {
	case s.workers[s.shardIndex(taskID)] <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}

	select {
	case err := <-j.done:
		return err
	case <-s.stopped:
		return ErrStopped
	}
}

// shardIndex maps a task id deterministically to a worker index.
func (s *Serializer) shardIndex(taskID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(taskID, 10)))
	return int(h.Sum32() % uint32(len(s.workers)))
}

func (s *Serializer) runWorker(ctx context.Context, id int, ch <-chan job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-ch:
			if err := j.ctx.Err(); err != nil {
				j.done <- err
				continue
			}
			err := j.fn(j.ctx)
			if err != nil {
				s.log.Debug().Err(err).
					Int64("task_id", j.id).
					Int("worker_id", id).
					Msg("task mutation failed")
			}
			j.done <- err
		}
	}
}

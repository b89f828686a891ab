// Package sched dispatches decode work to background workers with
// newest-wins semantics per display component.
package sched

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.viam.com/viz/decode"
	"go.viam.com/viz/logging"
	"go.viam.com/viz/utils"
)

// Typed request-terminal errors. Neither tears down a subscription.
var (
	// ErrTimeout means a decode exceeded its budget. The request is
	// abandoned; no partial buffer is ever returned.
	ErrTimeout = errors.New("decode timed out")
	// ErrSuperseded means a newer request for the same component was issued
	// before this one completed; the result was discarded.
	ErrSuperseded = errors.New("decode superseded by newer request")
	// ErrQueueFull means the pending queue overflowed and this request was
	// evicted to make room, even though no newer request exists for its
	// component.
	ErrQueueFull = errors.New("decode queue full, request evicted")
	// ErrClosed means the scheduler has shut down.
	ErrClosed = errors.New("scheduler closed")
)

// Defaults for the scheduler configuration.
const (
	DefaultTimeout   = 8 * time.Second
	DefaultQueueSize = 64
)

// Request is one unit of decode work. DecodeFunc must be a pure closure over
// its inputs: the payload, config, and pre-resolved pose are captured on the
// control thread, so the worker never touches shared state.
type Request struct {
	ComponentID string
	DecodeFunc  func(ctx context.Context) (*decode.DecodedBuffer, error)
}

// Result is the outcome of one request. The buffer's ownership passes to the
// receiver; nothing in the scheduler retains it.
type Result struct {
	ComponentID string
	RequestID   uuid.UUID
	Generation  uint64
	Buffer      *decode.DecodedBuffer
	Err         error
}

// Config configures a Scheduler.
type Config struct {
	// Workers is the background worker count. Zero disables offloading and
	// every Submit decodes synchronously on the caller's goroutine with the
	// same contract.
	Workers int
	// Timeout bounds each decode. Zero uses the default.
	Timeout time.Duration
	// QueueSize bounds the pending job queue.
	QueueSize int
}

type job struct {
	req        Request
	id         uuid.UUID
	generation uint64
	results    chan Result
}

// Scheduler runs decode requests with at most one accepted result per
// component generation. Submitting a new request for a component silently
// supersedes the previous one: only the newest sensor frame matters for a
// live display.
type Scheduler struct {
	mu          sync.Mutex
	generations map[string]uint64
	closed      bool

	jobs    chan job
	workers *utils.StoppableWorkers
	clock   clock.Clock
	timeout time.Duration
	logger  logging.Logger
}

// New returns a started scheduler.
func New(cfg Config, clk clock.Clock, logger logging.Logger) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	s := &Scheduler{
		generations: map[string]uint64{},
		jobs:        make(chan job, cfg.QueueSize),
		clock:       clk,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
	if cfg.Workers > 0 {
		loops := make([]func(context.Context), 0, cfg.Workers)
		for i := 0; i < cfg.Workers; i++ {
			loops = append(loops, s.workerLoop)
		}
		s.workers = utils.NewStoppableWorkers(loops...)
	}
	return s
}

// Submit issues a decode request. The returned channel receives exactly one
// Result and is never closed by the scheduler. Results are not FIFO across
// submissions: consumers must match results to the generation they care
// about and discard responses to superseded requests.
func (s *Scheduler) Submit(ctx context.Context, req Request) <-chan Result {
	results := make(chan Result, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		results <- Result{ComponentID: req.ComponentID, Err: ErrClosed}
		return results
	}
	s.generations[req.ComponentID]++
	generation := s.generations[req.ComponentID]
	s.mu.Unlock()

	j := job{req: req, id: uuid.New(), generation: generation, results: results}

	if s.workers == nil {
		// Offloading unavailable: same contract, caller's goroutine.
		s.run(ctx, j)
		return results
	}

	for {
		select {
		case s.jobs <- j:
			return results
		default:
			// Queue full. The oldest pending job is the least interesting
			// one; evict it to make room. A job whose component already has
			// a newer generation was superseded anyway; one still current
			// reports the overflow honestly.
			select {
			case stale := <-s.jobs:
				evictErr := ErrQueueFull
				if !s.current(stale) {
					evictErr = ErrSuperseded
				}
				stale.deliver(Result{
					ComponentID: stale.req.ComponentID,
					RequestID:   stale.id,
					Generation:  stale.generation,
					Err:         evictErr,
				})
			default:
			}
		}
	}
}

// Generation returns the latest issued generation for a component. Zero
// means no request was ever submitted.
func (s *Scheduler) Generation(componentID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[componentID]
}

// Close stops the workers. Pending jobs receive ErrClosed when their worker
// context is canceled; in-flight decodes are allowed to finish.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	if s.workers != nil {
		s.workers.Stop()
	}
}

func (s *Scheduler) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.jobs:
			s.run(ctx, j)
		}
	}
}

// current reports whether the job still carries the newest generation for
// its component.
func (s *Scheduler) current(j job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[j.req.ComponentID] == j.generation
}

func (s *Scheduler) run(ctx context.Context, j job) {
	result := Result{ComponentID: j.req.ComponentID, RequestID: j.id, Generation: j.generation}

	// Supersession is soft: a stale job is skipped before any work happens.
	if !s.current(j) {
		result.Err = ErrSuperseded
		j.deliver(result)
		return
	}

	type outcome struct {
		buf *decode.DecodedBuffer
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		buf, err := j.req.DecodeFunc(ctx)
		done <- outcome{buf, err}
	}()

	timer := s.clock.Timer(s.timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		// A decode that finished after a newer submission is discarded so
		// stale buffers never reach the renderer.
		if !s.current(j) {
			result.Err = ErrSuperseded
		} else {
			result.Buffer, result.Err = out.buf, out.err
		}
	case <-timer.C:
		if s.logger != nil {
			s.logger.Warnw("decode timed out",
				"component", j.req.ComponentID, "request", j.id.String(), "timeout", s.timeout)
		}
		result.Err = ErrTimeout
	case <-ctx.Done():
		result.Err = errors.Wrap(ErrClosed, ctx.Err().Error())
	}
	j.deliver(result)
}

// deliver never blocks: the results channel is buffered for exactly one
// result and each job delivers exactly once.
func (j job) deliver(result Result) {
	select {
	case j.results <- result:
	default:
	}
}

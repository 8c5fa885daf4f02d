package recompute

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ComputeFunc produces a fresh result for one input.
type ComputeFunc[T any] func(ctx context.Context) (T, error)

// Result is the outcome of one computation run.
type Result[T any] struct {
	RunID       string
	Token       uint64
	Key         string
	Value       T
	CompletedAt time.Time
}

type call[T any] struct {
	runID     string
	token     uint64
	done      chan struct{}
	result    Result[T]
	err       error
	committed bool
}

// Store holds one committed result slot. Every trigger draws a new token;
// a completed run is committed only when it still holds the newest token,
// otherwise it is discarded as stale. A trigger for an input that is
// already being computed joins that run and hands it the newest token.
type Store[T any] struct {
	mu        sync.Mutex
	latest    uint64
	inflight  map[string]*call[T]
	committed *Result[T]
	onCommit  func(Result[T])
	logger    *zap.Logger
	now       func() time.Time
}

type Option[T any] func(*Store[T])

// OnCommit registers a callback run after each commit, outside the lock and
// before waiting callers are released.
func OnCommit[T any](fn func(Result[T])) Option[T] {
	return func(s *Store[T]) { s.onCommit = fn }
}

func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(s *Store[T]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewStore[T any](opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		inflight: make(map[string]*call[T]),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trigger runs compute for key, or joins the run already in flight for the
// same key. The computation itself is not tied to ctx: cancelling ctx only
// stops the caller from waiting. committed reports whether the run became
// the stored result.
func (s *Store[T]) Trigger(ctx context.Context, key string, compute ComputeFunc[T]) (result Result[T], committed bool, err error) {
	s.mu.Lock()
	s.latest++
	token := s.latest
	c, joined := s.inflight[key]
	if joined {
		c.token = token
	} else {
		c = &call[T]{runID: uuid.NewString(), token: token, done: make(chan struct{})}
		s.inflight[key] = c
	}
	s.mu.Unlock()

	if joined {
		s.logger.Debug("recompute coalesced", zap.String("key", key), zap.String("runId", c.runID), zap.Uint64("token", token))
	} else {
		go s.run(context.WithoutCancel(ctx), key, c, compute)
	}

	select {
	case <-c.done:
		return c.result, c.committed, c.err
	case <-ctx.Done():
		return Result[T]{}, false, ctx.Err()
	}
}

func (s *Store[T]) run(ctx context.Context, key string, c *call[T], compute ComputeFunc[T]) {
	value, err := compute(ctx)

	s.mu.Lock()
	delete(s.inflight, key)
	c.err = err
	c.result = Result[T]{
		RunID:       c.runID,
		Token:       c.token,
		Key:         key,
		Value:       value,
		CompletedAt: s.now(),
	}
	if err == nil && c.token == s.latest {
		committed := c.result
		s.committed = &committed
		c.committed = true
	}
	onCommit := s.onCommit
	s.mu.Unlock()

	switch {
	case err != nil:
		s.logger.Warn("recompute failed", zap.String("key", key), zap.String("runId", c.runID), zap.Error(err))
	case !c.committed:
		s.logger.Debug("recompute result discarded as stale", zap.String("key", key), zap.Uint64("token", c.result.Token))
	}
	if c.committed && onCommit != nil {
		onCommit(c.result)
	}
	close(c.done)
}

// Latest returns the committed result, if any.
func (s *Store[T]) Latest() (Result[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committed == nil {
		return Result[T]{}, false
	}
	return *s.committed, true
}

// Generation is the newest token issued.
func (s *Store[T]) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Pending reports whether a run for key is in flight.
func (s *Store[T]) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[key]
	return ok
}

// Package scheduler runs work functions on a fixed pool of workers.
//
// Work is queued in FIFO order. Each submission returns a Future whose
// channel receives exactly one Result. Stopping a future cancels the
// context handed to its work; closing the scheduler cancels everything,
// fails queued work with context.Canceled and waits for running work.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type Work func(ctx context.Context) (any, error)

type Result[T any] struct {
	Data T
	Err  error
}

type Future[T any] struct {
	c      chan T
	cancel context.CancelFunc
}

// C receives the result once.
func (f *Future[T]) C() <-chan T {
	return f.c
}

func (f *Future[T]) Stop() {
	f.cancel()
}

type request struct {
	fn     Work
	ctx    context.Context
	cancel context.CancelFunc
	c      chan Result[any]
}

type Scheduler struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []request
	closed bool

	wg         sync.WaitGroup
	mainCtx    context.Context
	mainCancel context.CancelFunc
	logger     *zap.SugaredLogger
}

func NewScheduler(nbWorkers int) *Scheduler {
	if nbWorkers < 1 {
		nbWorkers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		mainCtx:    ctx,
		mainCancel: cancel,
		logger:     zap.S().Named("scheduler"),
	}
	s.cond = sync.NewCond(&s.mu)

	s.wg.Add(nbWorkers)
	for range nbWorkers {
		go s.worker()
	}
	return s
}

func (s *Scheduler) AddWork(w Work) *Future[Result[any]] {
	ctx, cancel := context.WithCancel(s.mainCtx)
	r := request{fn: w, ctx: ctx, cancel: cancel, c: make(chan Result[any], 1)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		r.c <- Result[any]{Err: context.Canceled}
		return &Future[Result[any]]{c: r.c, cancel: cancel}
	}
	s.queue = append(s.queue, r)
	s.cond.Signal()
	s.mu.Unlock()

	return &Future[Result[any]]{c: r.c, cancel: cancel}
}

// Close cancels all work and waits for running work to return.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := s.queue
	s.queue = nil
	s.cond.Broadcast()
	s.mu.Unlock()

	s.mainCancel()
	for _, r := range pending {
		r.c <- Result[any]{Err: context.Canceled}
		r.cancel()
	}

	s.wg.Wait()
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		r := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.execute(r)
	}
}

func (s *Scheduler) execute(r request) {
	defer r.cancel()
	defer func() {
		if p := recover(); p != nil {
			s.logger.Errorw("work panicked", "panic", p)
			r.c <- Result[any]{Err: fmt.Errorf("worker panicked: %v", p)}
		}
	}()

	v, err := r.fn(r.ctx)
	r.c <- Result[any]{Data: v, Err: err}
}

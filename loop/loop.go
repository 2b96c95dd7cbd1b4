// Package loop provides a goroutine-owned event loop that hosts the microtasks
// of the reactive runtime running on it.
//
// The goroutine calling Run owns the loop: submitted tasks run there one at a
// time, and the microtasks they queue (effect flushes) are drained after each
// task, like a browser event loop.
//
//	l := loop.New()
//	go l.Run(ctx)
//
//	l.Do(ctx, func() {
//	    count := microsig.NewSignal(0)
//	    microsig.NewEffect(func() { fmt.Println(count.Read()) })
//	})
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/AnatoleLucet/microsig"
	"github.com/AnatoleLucet/microsig/internal"
	"github.com/petermattis/goid"
)

var (
	// ErrLoopAlreadyRunning is returned when Run is called on a loop that is already running.
	ErrLoopAlreadyRunning = errors.New("loop: loop is already running")

	// ErrLoopTerminated is returned when tasks are submitted to a closed loop.
	ErrLoopTerminated = errors.New("loop: loop has been terminated")

	// ErrTaskPanicked is wrapped by the error Do returns for a panicking task.
	ErrTaskPanicked = errors.New("loop: task panicked")
)

// DefaultMicrotaskBudget is the number of microtasks drained before the loop
// yields back to submitted tasks.
const DefaultMicrotaskBudget = 1024

type Loop struct {
	logger *slog.Logger
	budget int

	// guards ingress and closed
	mu      sync.Mutex
	ingress []func()
	closed  bool

	// wake-up deduplication, at most one pending signal
	wake chan struct{}

	// only touched by the loop goroutine
	microtasks []func()

	running atomic.Bool
	owner   atomic.Int64
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used to report recovered task panics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithIngressSize sets the initial capacity of the submitted task queue.
func WithIngressSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.ingress = make([]func(), 0, n)
		}
	}
}

// WithMicrotaskBudget sets how many microtasks run before the loop checks for
// submitted tasks and cancellation again.
func WithMicrotaskBudget(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.budget = n
		}
	}
}

func New(opts ...Option) *Loop {
	l := &Loop{
		logger:     slog.Default(),
		budget:     DefaultMicrotaskBudget,
		ingress:    make([]func(), 0, 64),
		wake:       make(chan struct{}, 1),
		microtasks: make([]func(), 0, 64),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Run executes submitted tasks on the calling goroutine until ctx is done or
// the loop is closed and drained. While it runs, the loop is the microtask host
// of the calling goroutine's runtime, which is released when Run returns.
//
// Run returns ctx.Err() on cancellation and nil after Close.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopAlreadyRunning
	}
	defer l.running.Store(false)

	l.owner.Store(goid.Get())
	defer l.owner.Store(0)

	// forget the runtime, the goroutine may outlive the loop
	defer internal.ReleaseRuntime()

	microsig.Configure(microsig.WithHost(l))
	defer microsig.Configure(microsig.WithHost(nil))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.tick()

		if len(l.microtasks) > 0 {
			// budget exhausted, come back without blocking
			continue
		}

		if l.drained() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Submit queues fn to run on the loop goroutine. Safe for concurrent use.
func (l *Loop) Submit(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopTerminated
	}
	l.ingress = append(l.ingress, fn)
	l.mu.Unlock()

	l.signal()
	return nil
}

// Do runs fn on the loop and waits until it returned and the microtasks it
// caused were drained. A panic in fn is returned as an error wrapping
// ErrTaskPanicked.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan error, 1)

	err := l.Submit(func() {
		err := call(fn)
		l.drainMicrotasks()
		done <- err
	})
	if err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks. Run returns once the already submitted ones ran.
// Closing twice returns ErrLoopTerminated.
func (l *Loop) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopTerminated
	}
	l.closed = true
	l.mu.Unlock()

	l.signal()
	return nil
}

// QueueMicrotask schedules task after the current task of the loop.
// Called from another goroutine, the task is submitted instead.
func (l *Loop) QueueMicrotask(task func()) {
	if goid.Get() != l.owner.Load() {
		if err := l.Submit(task); err != nil {
			l.logger.Warn("loop: microtask dropped", "err", err)
		}
		return
	}

	l.microtasks = append(l.microtasks, task)
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) drained() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.closed && len(l.ingress) == 0
}

// tick runs the tasks submitted so far, draining microtasks after each one.
func (l *Loop) tick() {
	l.mu.Lock()
	tasks := l.ingress
	l.ingress = make([]func(), 0, cap(tasks))
	l.mu.Unlock()

	for _, task := range tasks {
		l.safeExecute(task)
		l.drainMicrotasks()
	}

	l.drainMicrotasks()
}

func (l *Loop) drainMicrotasks() {
	executed := 0
	for len(l.microtasks) > 0 {
		if executed >= l.budget {
			l.logger.Warn("loop: microtask budget exhausted", "pending", len(l.microtasks))
			return
		}

		task := l.microtasks[0]
		l.microtasks[0] = nil
		l.microtasks = l.microtasks[1:]

		l.safeExecute(task)
		executed++
	}
}

// safeExecute runs a task, the loop survives its panics.
func (l *Loop) safeExecute(task func()) {
	if err := call(task); err != nil {
		l.logger.Error("loop: task panicked", "err", err)
	}
}

func call(fn func()) (err error) {
	if fn == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			if cause, ok := r.(error); ok {
				err = fmt.Errorf("%w: %w", ErrTaskPanicked, cause)
			} else {
				err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
			}
		}
	}()

	fn()
	return nil
}

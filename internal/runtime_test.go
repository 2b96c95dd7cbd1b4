package internal

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntime(t *testing.T) {
	t.Run("configure fills defaults", func(t *testing.T) {
		r := NewRuntime()
		cfg := r.Config()

		assert.NotNil(t, cfg.Logger)
		assert.Same(t, r.microtasks, cfg.Host)
		assert.Equal(t, DefaultMaxMicrotasks, cfg.MaxMicrotasks)
		assert.Nil(t, cfg.Observer)
	})

	t.Run("propagation marks computeds dirty", func(t *testing.T) {
		r := NewRuntime()
		s := r.NewSignal(1)
		c := r.NewComputed(func() any { return s.Read().(int) * 2 })

		assert.True(t, c.IsDirty())
		assert.Equal(t, 2, c.Read())
		assert.False(t, c.IsDirty())

		s.Write(2)
		assert.True(t, c.IsDirty())
		assert.Zero(t, r.Scheduler().Len())
	})

	t.Run("propagation enqueues effects through computeds", func(t *testing.T) {
		r := NewRuntime()
		s := r.NewSignal(1)
		c := r.NewComputed(func() any { return s.Read() })
		r.NewEffect(func() { c.Read() })
		r.NewEffect(func() { s.Read(); c.Read() })

		s.Write(2)

		assert.Equal(t, 2, r.Scheduler().Len())
		assert.Equal(t, 1, r.microtasks.Len())
	})

	t.Run("flush logs unhandled failures", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewRuntime()
		r.Configure(Config{Logger: slog.New(slog.NewTextHandler(&buf, nil))})

		s := r.NewSignal(0)
		r.NewEffect(func() {
			if s.Read().(int) > 0 {
				panic("boom")
			}
		})

		s.Write(1)
		r.Tick()

		assert.Contains(t, buf.String(), "microsig: effect failed")
		assert.Contains(t, buf.String(), "boom")
	})

	t.Run("flush reports stats", func(t *testing.T) {
		var stats []FlushStats
		r := NewRuntime()
		r.Configure(Config{
			ErrorHandler: func(error) {},
			Observer: observerFunc(func(pending int) func(FlushStats) {
				return func(s FlushStats) { stats = append(stats, s) }
			}),
		})

		s := r.NewSignal(0)
		r.NewEffect(func() { s.Read() })
		failing := r.NewEffect(func() {
			if s.Read().(int) > 0 {
				panic(errors.New("boom"))
			}
		})

		s.Write(1)
		r.Tick()
		failing.Stop()

		require.Len(t, stats, 1)
		assert.Equal(t, 2, stats[0].Pending)
		assert.Equal(t, 2, stats[0].Ran)
		assert.Len(t, stats[0].Errors, 1)
	})

	t.Run("cleanup outside effects goes to the scope", func(t *testing.T) {
		r := NewRuntime()
		scope := r.NewEffectScope()
		cleaned := false

		scope.Run(func() {
			r.OnCleanup(func() { cleaned = true })
		})
		assert.False(t, cleaned)

		scope.Stop()
		assert.True(t, cleaned)
	})

	t.Run("cleanup without owner is dropped", func(t *testing.T) {
		r := NewRuntime()
		assert.NotPanics(t, func() {
			r.OnCleanup(func() { t.Fatal("should not run") })
		})
	})

	t.Run("per goroutine runtimes", func(t *testing.T) {
		r := GetRuntime()
		assert.Same(t, r, GetRuntime())

		done := make(chan *Runtime)
		go func() {
			defer ReleaseRuntime()
			done <- GetRuntime()
		}()

		assert.NotSame(t, r, <-done)
	})
}

type observerFunc func(pending int) func(FlushStats)

func (f observerFunc) BeginFlush(pending int) func(FlushStats) { return f(pending) }

func TestEvaluatorError(t *testing.T) {
	boom := errors.New("boom")

	err := NewEvaluatorError(boom)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "microsig: evaluator failed: boom", err.Error())

	assert.Same(t, err, NewEvaluatorError(err))

	err = NewEvaluatorError("oops")
	assert.Equal(t, "microsig: evaluator panicked: oops", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

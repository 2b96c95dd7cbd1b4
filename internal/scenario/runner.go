package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/AnatoleLucet/microsig"
	"github.com/AnatoleLucet/microsig/loop"
)

// Result summarizes a run.
type Result struct {
	// effect name -> number of executions, the initial one included
	Runs map[string]int

	// effect failures, in order
	Errors []error
}

type runConfig struct {
	out       io.Writer
	logger    *slog.Logger
	observers []microsig.Observer
}

type Option func(*runConfig)

// WithOutput sets where effect runs are printed (default: discarded).
func WithOutput(w io.Writer) Option {
	return func(c *runConfig) {
		c.out = w
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithObserver adds a flush observer to the runtime the scenario runs on.
func WithObserver(o microsig.Observer) Option {
	return func(c *runConfig) {
		c.observers = append(c.observers, o)
	}
}

// Run builds the graph of s on a fresh event loop and replays its steps.
// Every effect run prints one line: "<step> <effect> <node>=<value> ...",
// where step 0 is the initial run.
func Run(ctx context.Context, s *Scenario, opts ...Option) (*Result, error) {
	config := runConfig{
		out:    io.Discard,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&config)
	}

	l := loop.New(loop.WithLogger(config.logger))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopped := make(chan error, 1)
	go func() { stopped <- l.Run(ctx) }()

	r := &runner{
		scenario: s,
		config:   config,
		result:   &Result{Runs: make(map[string]int, len(s.Effects))},
	}

	err := l.Do(ctx, r.build)
	for i := 0; err == nil && i < len(s.Steps); i++ {
		err = l.Do(ctx, func() { r.apply(i + 1) })
	}
	if err == nil {
		err = l.Do(ctx, r.stop)
	}

	l.Close()
	if runErr := <-stopped; err == nil && runErr != nil {
		err = runErr
	}
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}

	r.summary()
	return r.result, nil
}

type runner struct {
	scenario *Scenario
	config   runConfig
	result   *Result

	signals map[string]*microsig.Signal[int]
	readers map[string]func() int
	scope   *microsig.EffectScope

	step int
}

// build runs on the loop goroutine.
func (r *runner) build() {
	opts := []microsig.Option{
		microsig.WithLogger(r.config.logger),
		microsig.WithErrorHandler(func(err error) {
			r.result.Errors = append(r.result.Errors, err)
		}),
	}
	for _, o := range r.config.observers {
		opts = append(opts, microsig.WithObserver(o))
	}
	microsig.Configure(opts...)

	r.signals = make(map[string]*microsig.Signal[int], len(r.scenario.Signals))
	r.readers = make(map[string]func() int)

	for name, initial := range r.scenario.Signals {
		s := microsig.NewSignal(initial)
		r.signals[name] = s
		r.readers[name] = s.Read
	}

	for _, c := range r.scenario.Computeds {
		r.readers[c.Name] = microsig.NewComputed(r.derive(c)).Read
	}

	r.scope = microsig.NewEffectScope(func() {
		for _, e := range r.scenario.Effects {
			microsig.NewEffect(r.effect(e))
		}
	})
}

func (r *runner) derive(c Computed) func() int {
	if sel := c.Select; sel != nil {
		cond, then, other := r.readers[sel.If], r.readers[sel.Then], r.readers[sel.Else]
		return func() int {
			if cond() != 0 {
				return then()
			}
			return other()
		}
	}

	terms := make([]func() int, 0, len(c.Sum))
	for _, name := range c.Sum {
		terms = append(terms, r.readers[name])
	}

	return func() int {
		total := c.Offset
		for _, term := range terms {
			total += term()
		}
		return total
	}
}

func (r *runner) effect(e Effect) func() {
	return func() {
		r.result.Runs[e.Name]++

		var line strings.Builder
		fmt.Fprintf(&line, "%d %s", r.step, e.Name)
		for _, name := range e.Watch {
			fmt.Fprintf(&line, " %s=%d", name, r.readers[name]())
		}

		fmt.Fprintln(r.config.out, line.String())
	}
}

// apply writes one step. Effects flush once the loop task returns.
func (r *runner) apply(step int) {
	r.step = step

	writes := r.scenario.Steps[step-1]
	for _, name := range slices.Sorted(maps.Keys(writes)) {
		r.signals[name].Write(writes[name])
	}
}

func (r *runner) stop() {
	r.scope.Stop()
}

func (r *runner) summary() {
	var line strings.Builder
	line.WriteString("runs")
	for _, e := range r.scenario.Effects {
		fmt.Fprintf(&line, " %s=%d", e.Name, r.result.Runs[e.Name])
	}

	fmt.Fprintln(r.config.out, line.String())
}

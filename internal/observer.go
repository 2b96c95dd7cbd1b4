package internal

import "time"

// FlushStats describes one flush of the scheduler.
type FlushStats struct {
	// effects in the snapshot
	Pending int
	// effects that actually ran (stopped ones are skipped)
	Ran int
	// failures of the effects that ran
	Errors []error

	Duration time.Duration
}

// Observer is notified around every flush.
type Observer interface {
	BeginFlush(pending int) func(FlushStats)
}

type nopObserver struct{}

func (nopObserver) BeginFlush(int) func(FlushStats) { return func(FlushStats) {} }

// MultiObserver fans a flush out to several observers.
type MultiObserver []Observer

func (m MultiObserver) BeginFlush(pending int) func(FlushStats) {
	done := make([]func(FlushStats), 0, len(m))
	for _, o := range m {
		if o != nil {
			done = append(done, o.BeginFlush(pending))
		}
	}

	return func(stats FlushStats) {
		for _, d := range done {
			d(stats)
		}
	}
}

package internal

import "slices"

// Scheduler is the deduplicated set of effects waiting for the next flush.
type Scheduler struct {
	// pending effects in first-enqueue order
	pending []*Effect

	// a flush has been requested from the host and has not run yet
	scheduled bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		pending: make([]*Effect, 0),
	}
}

// Enqueue adds e to the pending set.
// It returns true when the caller must request a flush from the host.
func (s *Scheduler) Enqueue(e *Effect) bool {
	if e.HasFlag(FlagPending | FlagStopped) {
		return false
	}
	e.AddFlag(FlagPending)
	s.pending = append(s.pending, e)

	if s.scheduled {
		return false
	}
	s.scheduled = true
	return true
}

// Remove drops e from the pending set, if present.
func (s *Scheduler) Remove(e *Effect) {
	if !e.HasFlag(FlagPending) {
		return
	}
	e.RemoveFlag(FlagPending)

	if i := slices.Index(s.pending, e); i >= 0 {
		s.pending = slices.Delete(s.pending, i, i+1)
	}
}

// Take snapshots and clears the pending set. Effects enqueued after Take
// belong to the next flush.
func (s *Scheduler) Take() []*Effect {
	batch := s.pending
	s.pending = make([]*Effect, 0, len(batch))
	s.scheduled = false

	for _, e := range batch {
		e.RemoveFlag(FlagPending)
	}

	return batch
}

func (s *Scheduler) Len() int {
	return len(s.pending)
}

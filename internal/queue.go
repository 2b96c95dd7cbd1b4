package internal

// Host runs tasks at the next microtask boundary.
type Host interface {
	QueueMicrotask(task func())
}

// MicrotaskQueue is the default host of a runtime, drained by Runtime.Tick.
type MicrotaskQueue struct {
	tasks    []func()
	draining bool
}

func NewMicrotaskQueue() *MicrotaskQueue {
	return &MicrotaskQueue{
		tasks: make([]func(), 0),
	}
}

func (q *MicrotaskQueue) QueueMicrotask(task func()) {
	q.tasks = append(q.tasks, task)
}

func (q *MicrotaskQueue) Len() int {
	return len(q.tasks)
}

// Drain runs queued tasks, including the ones queued while draining, until
// the queue is empty or limit tasks ran (limit <= 0 means no limit).
// It reports whether tasks were left behind because of the limit.
// A nested Drain from inside a task is a no-op.
func (q *MicrotaskQueue) Drain(limit int) (ran int, exhausted bool) {
	if q.draining {
		return 0, false
	}
	q.draining = true
	defer func() { q.draining = false }()

	for len(q.tasks) > 0 {
		if limit > 0 && ran >= limit {
			return ran, true
		}

		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]

		task()
		ran++
	}

	q.tasks = q.tasks[:0]
	return ran, false
}

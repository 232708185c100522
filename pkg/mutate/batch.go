package mutate

import (
	"github.com/vango-dev/mutate/pkg/dom"
	"github.com/vango-dev/mutate/pkg/schedule"
)

// State is the dispatch state of one channel.
type State uint8

const (
	// StateIdle means nothing is pending.
	StateIdle State = iota
	// StateAccumulating means events are pending and a flush is scheduled.
	StateAccumulating
	// StateFlushing means a batch is being delivered.
	StateFlushing
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateFlushing:
		return "flushing"
	default:
		return "unknown"
	}
}

// batcher accumulates the events of one channel and flushes them on the next
// tick of sched.
type batcher struct {
	channel Channel
	sched   schedule.Scheduler
	dedupe  bool
	metrics *Metrics

	// process delivers a frozen batch. guard runs a completion callback.
	process func([]ChangeEvent)
	guard   func(what string, fn func())

	pending   []ChangeEvent
	done      []func()
	seen      map[*dom.Node]struct{}
	scheduled bool
	flushing  bool
}

// enqueue appends events to the pending batch. With dedupe enabled only the
// first event per target per window is kept. done, if not nil, runs after
// the batch has been delivered.
func (b *batcher) enqueue(events []ChangeEvent, done func()) {
	for _, ev := range events {
		if b.dedupe {
			if _, dup := b.seen[ev.Target]; dup {
				b.metrics.deduplicated(b.channel)
				continue
			}
			if b.seen == nil {
				b.seen = make(map[*dom.Node]struct{})
			}
			b.seen[ev.Target] = struct{}{}
		}
		b.pending = append(b.pending, ev)
		b.metrics.enqueued(b.channel)
	}
	if done != nil {
		b.done = append(b.done, done)
	}
	if !b.scheduled && (len(b.pending) > 0 || len(b.done) > 0) {
		b.scheduled = true
		b.sched.Schedule(b.flush)
	}
}

func (b *batcher) flush() {
	events, done := b.pending, b.done
	b.pending, b.done, b.seen = nil, nil, nil
	b.scheduled = false

	b.flushing = true
	defer func() { b.flushing = false }()

	if len(events) > 0 {
		b.process(events)
	}
	for _, fn := range done {
		b.guard("completion callback", fn)
	}
}

func (b *batcher) state() State {
	switch {
	case b.flushing:
		return StateFlushing
	case b.scheduled:
		return StateAccumulating
	default:
		return StateIdle
	}
}

// size returns the number of pending events.
func (b *batcher) size() int {
	return len(b.pending)
}

package dom

import "github.com/vango-dev/mutate/pkg/schedule"

// RecordType identifies the kind of change a MutationRecord describes.
type RecordType uint8

const (
	RecordChildList RecordType = iota + 1
	RecordAttributes
)

// String returns the string representation of the RecordType.
func (t RecordType) String() string {
	switch t {
	case RecordChildList:
		return "childList"
	case RecordAttributes:
		return "attributes"
	default:
		return "unknown"
	}
}

// MutationRecord describes one change to the tree.
type MutationRecord struct {
	Type   RecordType
	Target *Node

	// AddedNodes and RemovedNodes are set for RecordChildList.
	AddedNodes   []*Node
	RemovedNodes []*Node

	// AttributeName is set for RecordAttributes. OldValue is set only when
	// the observer asked for AttributeOldValue.
	AttributeName string
	OldValue      string
}

// ObserveOptions selects which changes an observer receives.
type ObserveOptions struct {
	ChildList         bool
	Attributes        bool
	AttributeOldValue bool
	Subtree           bool
}

type registration struct {
	observer *MutationObserver
	options  ObserveOptions
}

// MutationObserver receives batches of MutationRecords for the nodes it
// observes. Records are delivered on the next tick of its scheduler.
type MutationObserver struct {
	callback  func([]MutationRecord)
	sched     schedule.Scheduler
	nodes     []*Node
	records   []MutationRecord
	scheduled bool
}

// NewMutationObserver creates an observer that delivers records through sched.
func NewMutationObserver(sched schedule.Scheduler, callback func([]MutationRecord)) *MutationObserver {
	return &MutationObserver{callback: callback, sched: sched}
}

// Observe registers the observer on target. Observing the same target again
// replaces the options.
func (o *MutationObserver) Observe(target *Node, opts ObserveOptions) {
	for _, r := range target.registrations {
		if r.observer == o {
			r.options = opts
			return
		}
	}
	target.registrations = append(target.registrations, &registration{observer: o, options: opts})
	o.nodes = append(o.nodes, target)
}

// Disconnect unregisters the observer from every node and drops queued records.
func (o *MutationObserver) Disconnect() {
	for _, n := range o.nodes {
		for i, r := range n.registrations {
			if r.observer == o {
				n.registrations = append(n.registrations[:i], n.registrations[i+1:]...)
				break
			}
		}
	}
	o.nodes = nil
	o.records = nil
}

// TakeRecords returns and clears the queued records.
func (o *MutationObserver) TakeRecords() []MutationRecord {
	records := o.records
	o.records = nil
	return records
}

func (o *MutationObserver) enqueue(rec MutationRecord) {
	o.records = append(o.records, rec)
	if o.scheduled {
		return
	}
	o.scheduled = true
	o.sched.Schedule(o.deliver)
}

func (o *MutationObserver) deliver() {
	o.scheduled = false
	records := o.TakeRecords()
	if len(records) == 0 {
		return
	}
	o.callback(records)
}

// queueRecord hands rec to every observer registered on target, or on an
// ancestor with Subtree set. Each observer receives the record once.
func queueRecord(target *Node, rec MutationRecord) {
	var seen map[*MutationObserver]struct{}
	for n := target; n != nil; n = n.parent {
		for _, r := range n.registrations {
			if n != target && !r.options.Subtree {
				continue
			}
			if rec.Type == RecordChildList && !r.options.ChildList {
				continue
			}
			if rec.Type == RecordAttributes && !r.options.Attributes {
				continue
			}
			if _, ok := seen[r.observer]; ok {
				continue
			}
			if seen == nil {
				seen = make(map[*MutationObserver]struct{})
			}
			seen[r.observer] = struct{}{}

			out := rec
			if rec.Type == RecordAttributes && !r.options.AttributeOldValue {
				out.OldValue = ""
			}
			r.observer.enqueue(out)
		}
	}
}

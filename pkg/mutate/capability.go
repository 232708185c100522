package mutate

import (
	"github.com/vango-dev/mutate/pkg/dom"
	"github.com/vango-dev/mutate/pkg/schedule"
)

// Observer is a native observation primitive bound to one handler.
type Observer interface {
	Observe(target *dom.Node, opts dom.ObserveOptions)
	Disconnect()
}

// Capability creates native observers. A nil Capability means native
// observation is unavailable and changes must be reported synthetically.
type Capability interface {
	NewObserver(handler func([]dom.MutationRecord)) Observer
}

// CapabilityFunc adapts a function to the Capability interface.
type CapabilityFunc func(handler func([]dom.MutationRecord)) Observer

// NewObserver calls f(handler).
func (f CapabilityFunc) NewObserver(handler func([]dom.MutationRecord)) Observer {
	return f(handler)
}

// Native returns a Capability backed by dom.MutationObserver. Records are
// delivered on sched.
func Native(sched schedule.Scheduler) Capability {
	return CapabilityFunc(func(handler func([]dom.MutationRecord)) Observer {
		return dom.NewMutationObserver(sched, handler)
	})
}

// Switch holds the active Capability and notifies listeners when it changes.
type Switch struct {
	current   Capability
	listeners []*switchListener
}

type switchListener struct {
	fn func(Capability)
}

// NewSwitch returns a Switch holding initial, which may be nil.
func NewSwitch(initial Capability) *Switch {
	return &Switch{current: initial}
}

// Get returns the active Capability.
func (s *Switch) Get() Capability {
	return s.current
}

// Set replaces the active Capability and synchronously calls every listener
// registered at the time of the call.
func (s *Switch) Set(c Capability) {
	s.current = c
	snapshot := append([]*switchListener(nil), s.listeners...)
	for _, l := range snapshot {
		l.fn(c)
	}
}

// OnChange registers fn to be called after every Set.
func (s *Switch) OnChange(fn func(Capability)) *Subscription {
	l := &switchListener{fn: fn}
	s.listeners = append(s.listeners, l)
	return newSubscription("OnCapabilityChange", func() {
		for i, other := range s.listeners {
			if other == l {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	})
}

// Package events exposes mutation notifications as named events bound to
// individual nodes.
//
// A Registry starts with three definitions: "inserted", "removed" and
// "attributes". Handlers are added per target and event type; the registry
// holds one engine subscription per (target, type) for as long as the
// target has handlers.
//
//	r := events.NewRegistry(engine)
//	h := events.Func(func(ev events.Event) { ... })
//	r.AddEventListener(el, "removed", h)
//
// A "removed" event fires once: after it is dispatched every handler for it
// on that target is unbound.
package events

import (
	"github.com/vango-dev/mutate/pkg/dom"
	"github.com/vango-dev/mutate/pkg/mutate"
)

const (
	TypeInserted   = "inserted"
	TypeRemoved    = "removed"
	TypeAttributes = "attributes"
)

// Event is what handlers receive.
type Event struct {
	Type   string
	Target *dom.Node

	// Set for attribute events.
	AttributeName string
	OldValue      string
	NewValue      string
}

// Handler receives events. Handlers are compared by identity to ignore
// duplicates, so implementations must be comparable; pointer types are.
type Handler interface {
	HandleEvent(Event)
}

// HandlerFunc is a comparable Handler backed by a function.
type HandlerFunc struct {
	fn func(Event)
}

// Func wraps fn in a new HandlerFunc. Each call returns a distinct Handler.
func Func(fn func(Event)) *HandlerFunc {
	return &HandlerFunc{fn: fn}
}

// HandleEvent calls the wrapped function.
func (h *HandlerFunc) HandleEvent(ev Event) {
	h.fn(ev)
}

// Definition binds an event type to an engine channel.
type Definition struct {
	// Type is the default event type name.
	Type string

	// Subscribe starts delivery of changes to target.
	Subscribe func(e *mutate.Engine, target *dom.Node, fn mutate.Listener) *mutate.Subscription

	// Once unbinds every handler of the target after the first dispatch.
	Once bool
}

var (
	// Inserted fires when its target is inserted.
	Inserted = Definition{
		Type:      TypeInserted,
		Subscribe: (*mutate.Engine).OnNodeInsertion,
	}

	// Removed fires once, when its target is removed.
	Removed = Definition{
		Type:      TypeRemoved,
		Subscribe: (*mutate.Engine).OnNodeRemoval,
		Once:      true,
	}

	// Attributes fires when an attribute of its target changes.
	Attributes = Definition{
		Type:      TypeAttributes,
		Subscribe: (*mutate.Engine).OnNodeAttributeChange,
	}
)

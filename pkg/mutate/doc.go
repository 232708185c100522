// Package mutate dispatches tree mutation events to node-scoped and
// document-scoped listeners.
//
// An Engine turns raw change reports into ChangeEvents and delivers them
// asynchronously, at most once per node per channel per tick. There are
// three independent channels: insertion, removal and attribute change.
//
// # Subscribing
//
// Node-scoped listeners fire for one node:
//
//	sub := engine.OnNodeRemoval(el, func(ev mutate.ChangeEvent) {
//	    cleanup(ev.Target)
//	})
//	defer sub.Dispose()
//
// Document-scoped listeners fire for every node under a document element
// and run after the node-scoped listeners of the same event:
//
//	sub, err := engine.OnInsertion(doc.DocumentElement(), onAnyInsert)
//
// Every On* call returns a *Subscription. Disposing it twice is a caller
// bug and returns an error matching ErrDoubleDisposal.
//
// # Native and synthetic observation
//
// When a Capability is installed on the engine's Switch, subscriptions
// share one native observer per document and channel group, reference
// counted across all listeners. Without a Capability nothing is observed
// natively; code that mutates the tree must report its own changes with
// DispatchInsertion, DispatchRemoval and DispatchAttributeChange. The
// mutate/node package wraps the tree operations to do exactly that
// whenever the switch is empty. Swapping the capability at runtime
// recreates every live native observer against the new one.
//
// # Delivery
//
// Reports are queued per channel and flushed on the next tick of the
// engine's schedule.Scheduler. Within a flush, insertion and removal
// targets expand to the target plus its descendants at flush time, every
// node is delivered once, and listeners fire in registration order. All
// listener lists are resolved before the first listener runs, so
// subscribing or disposing from inside a listener only affects later
// flushes. Reports made while a flush is running start a new batch.
//
// The Engine is not safe for concurrent use. Run it on one goroutine, for
// example a schedule.Loop.
package mutate

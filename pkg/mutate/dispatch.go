package mutate

import (
	"context"
	"runtime/debug"

	"github.com/vango-dev/mutate/pkg/dom"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DispatchInsertion reports that node was inserted. A fragment reports each
// of its children. done, if not nil, runs after the batch is delivered.
func (e *Engine) DispatchInsertion(node *dom.Node, done func()) {
	e.dispatchTree(ChannelInsertion, node, done)
}

// DispatchRemoval reports that node was removed.
func (e *Engine) DispatchRemoval(node *dom.Node, done func()) {
	e.dispatchTree(ChannelRemoval, node, done)
}

// DispatchAttributeChange reports that attribute name of node changed from
// oldValue.
func (e *Engine) DispatchAttributeChange(node *dom.Node, name, oldValue string, done func()) {
	b, _ := e.batcher(ChannelAttribute)
	b.enqueue([]ChangeEvent{{
		Kind:          ChannelAttribute,
		Target:        node,
		AttributeName: name,
		OldValue:      oldValue,
	}}, done)
}

func (e *Engine) dispatchTree(ch Channel, node *dom.Node, done func()) {
	nodes := dom.Flatten(node)
	events := make([]ChangeEvent, 0, len(nodes))
	for _, n := range nodes {
		events = append(events, ChangeEvent{Kind: ch, Target: n})
	}
	b, _ := e.batcher(ch)
	b.enqueue(events, done)
}

// OnNodeInsertion calls fn when node is inserted.
func (e *Engine) OnNodeInsertion(node *dom.Node, fn Listener) *Subscription {
	return e.registry.addNodeListener("OnNodeInsertion", ChannelInsertion, node, fn)
}

// OnNodeRemoval calls fn when node is removed.
func (e *Engine) OnNodeRemoval(node *dom.Node, fn Listener) *Subscription {
	return e.registry.addNodeListener("OnNodeRemoval", ChannelRemoval, node, fn)
}

// OnNodeAttributeChange calls fn when an attribute of node changes.
func (e *Engine) OnNodeAttributeChange(node *dom.Node, fn Listener) *Subscription {
	return e.registry.addNodeListener("OnNodeAttributeChange", ChannelAttribute, node, fn)
}

// OnInsertion calls fn for every node inserted under root, which must be a
// document element.
func (e *Engine) OnInsertion(root *dom.Node, fn Listener) (*Subscription, error) {
	return e.registry.addRootListener("OnInsertion", ChannelInsertion, root, fn)
}

// OnRemoval calls fn for every node removed from under root.
func (e *Engine) OnRemoval(root *dom.Node, fn Listener) (*Subscription, error) {
	return e.registry.addRootListener("OnRemoval", ChannelRemoval, root, fn)
}

// OnAttributeChange calls fn for every attribute change under root.
func (e *Engine) OnAttributeChange(root *dom.Node, fn Listener) (*Subscription, error) {
	return e.registry.addRootListener("OnAttributeChange", ChannelAttribute, root, fn)
}

func (e *Engine) handleTreeRecords(records []dom.MutationRecord) {
	for _, r := range records {
		if r.Type != dom.RecordChildList {
			continue
		}
		for _, n := range r.AddedNodes {
			e.DispatchInsertion(n, nil)
		}
		for _, n := range r.RemovedNodes {
			e.DispatchRemoval(n, nil)
		}
	}
}

func (e *Engine) handleAttributeRecords(records []dom.MutationRecord) {
	for _, r := range records {
		if r.Type != dom.RecordAttributes {
			continue
		}
		e.DispatchAttributeChange(r.Target, r.AttributeName, r.OldValue, nil)
	}
}

// delivery is one event with the listeners resolved for it.
type delivery struct {
	event ChangeEvent
	node  []Listener
	root  []Listener
}

// resolve appends the delivery for ev if anything listens to it.
func (e *Engine) resolve(ds []delivery, ev ChangeEvent) []delivery {
	node := e.registry.nodeListeners(ev.Kind, ev.Target)
	root := e.registry.rootListeners(ev.Kind, ev.Target)
	if len(node) == 0 && len(root) == 0 {
		return ds
	}
	return append(ds, delivery{event: ev, node: node, root: root})
}

// processTree expands each target to itself and its current descendants,
// delivering every node at most once per batch.
func (e *Engine) processTree(ch Channel) func([]ChangeEvent) {
	return func(batch []ChangeEvent) {
		seen := make(map[*dom.Node]struct{}, len(batch))
		var ds []delivery
		size := 0
		for _, ev := range batch {
			for _, n := range dom.AllNodes(ev.Target) {
				if _, ok := seen[n]; ok {
					continue
				}
				seen[n] = struct{}{}
				size++
				ds = e.resolve(ds, ChangeEvent{Kind: ch, Target: n})
			}
		}
		e.deliver(ch, size, ds)
	}
}

func (e *Engine) processAttributes(batch []ChangeEvent) {
	var ds []delivery
	for _, ev := range batch {
		ev.NewValue, _ = ev.Target.GetAttribute(ev.AttributeName)
		ds = e.resolve(ds, ev)
	}
	e.deliver(ChannelAttribute, len(batch), ds)
}

// deliver invokes the resolved listeners, node-scoped before root-scoped.
func (e *Engine) deliver(ch Channel, size int, ds []delivery) {
	_, span := e.tracer.Start(context.Background(), "mutate.flush",
		trace.WithAttributes(
			attribute.String("mutate.channel", ch.String()),
			attribute.Int("mutate.batch_size", size),
		),
	)
	defer span.End()

	var nodeCalls, rootCalls int
	for _, d := range ds {
		for _, fn := range d.node {
			e.invoke(fn, d.event)
		}
		for _, fn := range d.root {
			e.invoke(fn, d.event)
		}
		nodeCalls += len(d.node)
		rootCalls += len(d.root)
	}

	span.SetAttributes(attribute.Int("mutate.deliveries", nodeCalls+rootCalls))
	e.metrics.flushed(ch, size)
	e.metrics.delivered(ch, scopeNode, nodeCalls)
	e.metrics.delivered(ch, scopeRoot, rootCalls)
	e.logger.Debug("flushed", "channel", ch.String(), "size", size, "deliveries", nodeCalls+rootCalls)
}

func (e *Engine) invoke(fn Listener, ev ChangeEvent) {
	e.safeExecute(ev.Kind, "listener", func() { fn(ev) })
}

// safeExecute runs fn, logging and counting a panic instead of letting it
// abort the rest of the flush.
func (e *Engine) safeExecute(ch Channel, what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			e.metrics.panicked(ch)
			e.logger.Error(what+" panic", "panic", r, "channel", ch.String(), "stack", string(stack))
		}
	}()
	fn()
}

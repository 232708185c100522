package mutate

import (
	"github.com/cockroachdb/swiss"
	"github.com/vango-dev/mutate/pkg/dom"
)

type listenerEntry struct {
	fn Listener
}

// nodeListeners maps each target to its listeners in registration order.
type nodeListeners struct {
	targets swiss.Map[*dom.Node, []*listenerEntry]
}

func newNodeListeners() *nodeListeners {
	nl := &nodeListeners{}
	nl.targets.Init(8)
	return nl
}

type rootListeners struct {
	entries   []*listenerEntry
	keepAlive *Subscription
}

// registry tracks node-scoped and root-scoped listeners per channel. Listener
// data lives in the engine's Store under the listener's owner document.
type registry struct {
	store   *Store
	metrics *Metrics

	// observe starts native observation of doc for ch and returns the
	// matching release.
	observe func(ch Channel, doc *dom.Node) func()
}

// addNodeListener registers fn for events of ch on target.
func (r *registry) addNodeListener(name string, ch Channel, target *dom.Node, fn Listener) *Subscription {
	if target.IsContainer() {
		return newSubscription(name, nil)
	}
	doc := scopeOf(target)
	key := nodeListenersKey(ch)
	nl := load(r.store, doc, key, newNodeListeners)
	entry := &listenerEntry{fn: fn}
	list, _ := nl.targets.Get(target)
	nl.targets.Put(target, append(list, entry))
	r.metrics.listenerAdded(ch, scopeNode)
	release := r.observe(ch, doc)

	return newSubscription(name, func() {
		release()
		r.metrics.listenerRemoved(ch, scopeNode)
		nl, ok := lookup[*nodeListeners](r.store, doc, key)
		if !ok {
			return
		}
		list, _ := nl.targets.Get(target)
		list = removeEntry(list, entry)
		if len(list) > 0 {
			nl.targets.Put(target, list)
			return
		}
		nl.targets.Delete(target)
		if nl.targets.Len() == 0 {
			r.store.Delete(doc, key)
		}
	})
}

// addRootListener registers fn for events of ch anywhere under root, which
// must be a document element. The first root listener installs a node
// listener on root so that observation starts; the last one removes it.
func (r *registry) addRootListener(name string, ch Channel, root *dom.Node, fn Listener) (*Subscription, error) {
	if !dom.IsDocumentElement(root) {
		return nil, invalidScopeError(name, root)
	}
	doc := root.OwnerDocument()
	key := rootListenersKey(ch)
	rl := load(r.store, doc, key, func() *rootListeners { return &rootListeners{} })
	if len(rl.entries) == 0 {
		rl.keepAlive = r.addNodeListener(name, ch, root, func(ChangeEvent) {})
	}
	entry := &listenerEntry{fn: fn}
	rl.entries = append(rl.entries, entry)
	r.metrics.listenerAdded(ch, scopeRoot)

	return newSubscription(name, func() {
		r.metrics.listenerRemoved(ch, scopeRoot)
		rl.entries = removeEntry(rl.entries, entry)
		if len(rl.entries) > 0 {
			return
		}
		if rl.keepAlive != nil {
			_ = rl.keepAlive.Dispose()
			rl.keepAlive = nil
		}
		r.store.Delete(doc, key)
	}), nil
}

// nodeListeners returns a snapshot of the listeners for target on ch. The
// lookup uses target's current owner document.
func (r *registry) nodeListeners(ch Channel, target *dom.Node) []Listener {
	nl, ok := lookup[*nodeListeners](r.store, scopeOf(target), nodeListenersKey(ch))
	if !ok {
		return nil
	}
	list, _ := nl.targets.Get(target)
	return snapshot(list)
}

// rootListeners returns a snapshot of the document-scoped listeners that
// cover target on ch.
func (r *registry) rootListeners(ch Channel, target *dom.Node) []Listener {
	doc := target.OwnerDocument()
	if doc == nil {
		return nil
	}
	rl, ok := lookup[*rootListeners](r.store, doc, rootListenersKey(ch))
	if !ok {
		return nil
	}
	return snapshot(rl.entries)
}

// scopeOf returns the store root for n: its owner document, or its topmost
// ancestor for nodes that belong to no document.
func scopeOf(n *dom.Node) *dom.Node {
	if doc := n.OwnerDocument(); doc != nil {
		return doc
	}
	return n.Root()
}

func snapshot(list []*listenerEntry) []Listener {
	if len(list) == 0 {
		return nil
	}
	out := make([]Listener, len(list))
	for i, e := range list {
		out[i] = e.fn
	}
	return out
}

func removeEntry(list []*listenerEntry, entry *listenerEntry) []*listenerEntry {
	for i, e := range list {
		if e == entry {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

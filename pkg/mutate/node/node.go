// Package node performs tree mutations that are visible to a mutate.Engine
// whether or not native observation is available.
//
// While the engine has a native capability, a Mutator only changes the tree
// and leaves reporting to the native observer. Without one it reports each
// change itself, right after making it:
//
//	m := node.New(engine)
//	defer m.Close()
//	if err := m.AppendChild(doc.Body(), el); err != nil {
//	    return err
//	}
package node

import (
	"github.com/vango-dev/mutate/pkg/dom"
	"github.com/vango-dev/mutate/pkg/mutate"
)

// strategy applies a mutation and reports it as needed.
type strategy interface {
	insertBefore(parent, child, ref *dom.Node) error
	removeChild(parent, child *dom.Node) error
	replaceChild(parent, newChild, oldChild *dom.Node) error
	setAttribute(el *dom.Node, name, value string)
	removeAttribute(el *dom.Node, name string)
}

// Mutator mutates the tree on behalf of an Engine.
type Mutator struct {
	strategy strategy
	off      *mutate.Subscription
}

// New returns a Mutator that follows e's capability switch until Close.
func New(e *mutate.Engine) *Mutator {
	m := &Mutator{}
	m.use(e, e.Capability())
	m.off = e.OnCapabilityChange(func(c mutate.Capability) {
		m.use(e, c)
	})
	return m
}

func (m *Mutator) use(e *mutate.Engine, c mutate.Capability) {
	if c != nil {
		m.strategy = native{}
		return
	}
	m.strategy = synthetic{engine: e}
}

// Synthetic reports whether the Mutator is reporting changes itself.
func (m *Mutator) Synthetic() bool {
	_, ok := m.strategy.(synthetic)
	return ok
}

// Close stops following the capability switch. The Mutator keeps its
// current strategy.
func (m *Mutator) Close() error {
	return m.off.Dispose()
}

// AppendChild appends child to parent.
func (m *Mutator) AppendChild(parent, child *dom.Node) error {
	return m.strategy.insertBefore(parent, child, nil)
}

// InsertBefore inserts child into parent before ref.
func (m *Mutator) InsertBefore(parent, child, ref *dom.Node) error {
	return m.strategy.insertBefore(parent, child, ref)
}

// RemoveChild removes child from parent.
func (m *Mutator) RemoveChild(parent, child *dom.Node) error {
	return m.strategy.removeChild(parent, child)
}

// ReplaceChild replaces oldChild with newChild in parent.
func (m *Mutator) ReplaceChild(parent, newChild, oldChild *dom.Node) error {
	return m.strategy.replaceChild(parent, newChild, oldChild)
}

// SetAttribute sets an attribute on el.
func (m *Mutator) SetAttribute(el *dom.Node, name, value string) {
	m.strategy.setAttribute(el, name, value)
}

// RemoveAttribute removes an attribute from el.
func (m *Mutator) RemoveAttribute(el *dom.Node, name string) {
	m.strategy.removeAttribute(el, name)
}

type native struct{}

func (native) insertBefore(parent, child, ref *dom.Node) error {
	return parent.InsertBefore(child, ref)
}

func (native) removeChild(parent, child *dom.Node) error {
	return parent.RemoveChild(child)
}

func (native) replaceChild(parent, newChild, oldChild *dom.Node) error {
	return parent.ReplaceChild(newChild, oldChild)
}

func (native) setAttribute(el *dom.Node, name, value string) {
	el.SetAttribute(name, value)
}

func (native) removeAttribute(el *dom.Node, name string) {
	el.RemoveAttribute(name)
}

type synthetic struct {
	engine *mutate.Engine
}

func (s synthetic) insertBefore(parent, child, ref *dom.Node) error {
	// A fragment is empty once inserted, so capture what it carries first.
	nodes := dom.Flatten(child)
	if err := parent.InsertBefore(child, ref); err != nil {
		return err
	}
	s.inserted(nodes)
	return nil
}

func (s synthetic) removeChild(parent, child *dom.Node) error {
	if err := parent.RemoveChild(child); err != nil {
		return err
	}
	s.removed(child)
	return nil
}

func (s synthetic) replaceChild(parent, newChild, oldChild *dom.Node) error {
	nodes := dom.Flatten(newChild)
	if err := parent.ReplaceChild(newChild, oldChild); err != nil {
		return err
	}
	s.removed(oldChild)
	s.inserted(nodes)
	return nil
}

func (s synthetic) setAttribute(el *dom.Node, name, value string) {
	old, _ := el.GetAttribute(name)
	el.SetAttribute(name, value)
	s.engine.DispatchAttributeChange(el, name, old, nil)
}

func (s synthetic) removeAttribute(el *dom.Node, name string) {
	old, ok := el.GetAttribute(name)
	if !ok {
		return
	}
	el.RemoveAttribute(name)
	s.engine.DispatchAttributeChange(el, name, old, nil)
}

// inserted reports the nodes that ended up in a document.
func (s synthetic) inserted(nodes []*dom.Node) {
	for _, n := range nodes {
		if n.IsConnected() {
			s.engine.DispatchInsertion(n, nil)
		}
	}
}

// removed reports n if it left its document.
func (s synthetic) removed(n *dom.Node) {
	if !n.IsConnected() {
		s.engine.DispatchRemoval(n, nil)
	}
}

package dom

import (
	"strconv"
	"sync/atomic"

	"github.com/cockroachdb/redact"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement  Kind = iota // <div>, <p>, etc.
	KindText                 // Plain text node
	KindFragment             // Container whose children move on insertion
	KindDocument             // Tree root
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindDocument:
		return "Document"
	default:
		return "Unknown"
	}
}

// SafeValue marks Kind as safe to include in redacted error messages.
func (Kind) SafeValue() {}

var _ redact.SafeValue = Kind(0)

// Attr is a single attribute.
type Attr struct {
	Key   string
	Value string
}

var idCounter atomic.Uint64

func nextID() uint64 {
	return idCounter.Add(1)
}

// Node is a node in a document tree.
type Node struct {
	Kind Kind   // Node type
	Tag  string // Element tag name (e.g., "div")
	Text string // For KindText

	id       uint64
	parent   *Node
	children []*Node
	attrs    []Attr

	// owner is the document this node belongs to; nil for documents.
	owner *Node

	// docID is set on document nodes only.
	docID string

	// registrations are the mutation observers registered on this node.
	registrations []*registration
}

// ID returns a process-unique identifier for the node.
func (n *Node) ID() uint64 {
	return n.id
}

// String returns a short description such as "div#12" for logging.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case KindElement:
		return n.Tag + "#" + strconv.FormatUint(n.id, 10)
	case KindText:
		return "#text#" + strconv.FormatUint(n.id, 10)
	case KindFragment:
		return "#fragment#" + strconv.FormatUint(n.id, 10)
	case KindDocument:
		return "#document#" + strconv.FormatUint(n.id, 10)
	default:
		return "#node#" + strconv.FormatUint(n.id, 10)
	}
}

// IsContainer reports whether n is a fragment: a node that is never a
// concrete observation target itself.
func (n *Node) IsContainer() bool {
	return n != nil && n.Kind == KindFragment
}

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of n's children.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// NextSibling returns the sibling after n, or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// OwnerDocument returns the document n belongs to. A document is its own
// owner.
func (n *Node) OwnerDocument() *Node {
	if n.Kind == KindDocument {
		return n
	}
	return n.owner
}

// DocumentElement returns the document element of n's owner document.
func (n *Node) DocumentElement() *Node {
	doc := n.OwnerDocument()
	if doc == nil {
		return nil
	}
	for _, c := range doc.children {
		if c.Kind == KindElement {
			return c
		}
	}
	return nil
}

// IsDocumentElement reports whether n is the document element of its
// owner document.
func IsDocumentElement(n *Node) bool {
	return n != nil && n.Kind == KindElement && n.parent != nil && n.parent.Kind == KindDocument
}

// Root returns the topmost ancestor of n, or n itself.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Contains reports whether other is n or one of n's descendants.
func (n *Node) Contains(other *Node) bool {
	for ; other != nil; other = other.parent {
		if other == n {
			return true
		}
	}
	return false
}

// IsConnected reports whether n is attached to a document.
func (n *Node) IsConnected() bool {
	return n.Root().Kind == KindDocument
}

// GetAttribute returns the attribute value and whether it is set.
func (n *Node) GetAttribute(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Key == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute reports whether the attribute is set.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// Attributes returns a copy of n's attributes in the order they were set.
func (n *Node) Attributes() []Attr {
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

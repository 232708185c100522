package dom

import "github.com/google/uuid"

// NewDocument creates a document holding <html><body></body></html>.
func NewDocument() *Node {
	doc := &Node{
		Kind:  KindDocument,
		id:    nextID(),
		docID: uuid.NewString(),
	}
	html := doc.CreateElement("html")
	body := doc.CreateElement("body")
	html.appendRaw(body)
	doc.appendRaw(html)
	return doc
}

// DocID returns the unique identifier of n's owner document.
func (n *Node) DocID() string {
	doc := n.OwnerDocument()
	if doc == nil {
		return ""
	}
	return doc.docID
}

// Body returns the <body> element of n's owner document, or nil.
func (n *Node) Body() *Node {
	html := n.DocumentElement()
	if html == nil {
		return nil
	}
	for _, c := range html.children {
		if c.Kind == KindElement && c.Tag == "body" {
			return c
		}
	}
	return nil
}

// CreateElement creates a detached element owned by n's document.
// Arguments can be: nil, Attr, []Attr, *Node, []*Node, string (text child).
func (n *Node) CreateElement(tag string, args ...any) *Node {
	el := &Node{
		Kind:  KindElement,
		Tag:   tag,
		id:    nextID(),
		owner: n.OwnerDocument(),
	}
	el.build(args)
	return el
}

// CreateText creates a detached text node owned by n's document.
func (n *Node) CreateText(text string) *Node {
	return &Node{
		Kind:  KindText,
		Text:  text,
		id:    nextID(),
		owner: n.OwnerDocument(),
	}
}

// CreateFragment creates a fragment owned by n's document.
// Arguments follow CreateElement; attributes are ignored.
func (n *Node) CreateFragment(args ...any) *Node {
	frag := &Node{
		Kind:  KindFragment,
		id:    nextID(),
		owner: n.OwnerDocument(),
	}
	frag.build(args)
	return frag
}

func (n *Node) build(args []any) {
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			if n.Kind == KindElement {
				n.attrs = append(n.attrs, v)
			}
		case []Attr:
			if n.Kind == KindElement {
				n.attrs = append(n.attrs, v...)
			}
		case *Node:
			if v != nil {
				n.appendRaw(v)
			}
		case []*Node:
			for _, c := range v {
				if c != nil {
					n.appendRaw(c)
				}
			}
		case string:
			n.appendRaw(n.CreateText(v))
		}
	}
}

// appendRaw attaches a detached child without recording a mutation.
func (n *Node) appendRaw(child *Node) {
	if child.parent != nil {
		child.parent.removeAt(child.parent.indexOf(child))
	}
	adopt(child, n.OwnerDocument())
	child.parent = n
	n.children = append(n.children, child)
}

// adopt moves node and its subtree into doc.
func adopt(node, doc *Node) {
	if doc == nil || node.Kind == KindDocument || node.owner == doc {
		return
	}
	Walk(node, func(c *Node) bool {
		c.owner = doc
		return true
	})
}

// Package dom provides the node tree observed by the mutate engine.
//
// A tree is rooted at a document node created with NewDocument. Documents
// always hold one element child, the document element, which bounds
// document-wide ("global") subscriptions in the mutate package.
//
// # Core Types
//
// Node is an element, text, fragment or document node. Identity is pointer
// identity. Kind is an explicit tag: fragments are containers whose children
// are moved out when the fragment is inserted, so code that needs concrete
// nodes switches on IsContainer instead of probing.
//
// # Tree Operations
//
// AppendChild, InsertBefore, RemoveChild, ReplaceChild, SetAttribute and
// RemoveAttribute mutate the tree and report the change to any
// MutationObserver registered on the node or, with Subtree set, on one of
// its ancestors. They never notify the mutate engine directly; see the
// mutate/node package for operations that do.
//
// # Mutation Observers
//
// MutationObserver is the native change-notification primitive. Records are
// queued per observer and delivered in one batch on the next tick of the
// observer's scheduler:
//
//	mo := dom.NewMutationObserver(queue, func(records []dom.MutationRecord) {
//	    for _, r := range records { ... }
//	})
//	mo.Observe(doc.DocumentElement(), dom.ObserveOptions{ChildList: true, Subtree: true})
//	defer mo.Disconnect()
package dom

package mutate

import (
	merrors "github.com/vango-dev/mutate/internal/errors"
	"github.com/vango-dev/mutate/pkg/dom"
)

var (
	// ErrInvalidScope is returned when a document-scoped subscription is
	// requested on a node that is not a document element.
	ErrInvalidScope = merrors.New(merrors.CodeInvalidScope)

	// ErrDoubleDisposal is returned when a Subscription is disposed twice.
	ErrDoubleDisposal = merrors.New(merrors.CodeDoubleDisposal)
)

func invalidScopeError(name string, node *dom.Node) error {
	return merrors.New(merrors.CodeInvalidScope).
		Wrap(merrors.Newf(merrors.CategoryRuntime, "%s called with %s", name, node)).
		WithSuggestion("Pass doc.DocumentElement()").
		Raise()
}

func doubleDisposalError(name string) error {
	return merrors.New(merrors.CodeDoubleDisposal).
		Wrap(merrors.Newf(merrors.CategoryRuntime, "subscription returned by %s", name)).
		Assertion()
}

package dom

import merrors "github.com/vango-dev/mutate/internal/errors"

var (
	// ErrHierarchy is returned when an insertion would produce an invalid tree.
	ErrHierarchy = merrors.New(merrors.CodeHierarchy)

	// ErrNotFound is returned when a reference node is not a child of the parent.
	ErrNotFound = merrors.New(merrors.CodeNotFound)
)

func hierarchyError(parent, child *Node) error {
	return merrors.New(merrors.CodeHierarchy).
		Wrap(merrors.Newf(merrors.CategoryTree, "%s cannot hold %s", parent.Kind, child.Kind)).
		Raise()
}

func cycleError() error {
	return merrors.New(merrors.CodeHierarchy).
		WithDetail("The node being inserted is an ancestor of the parent.").
		Raise()
}

func notFoundError() error {
	return merrors.New(merrors.CodeNotFound).Raise()
}

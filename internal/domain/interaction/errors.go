package interaction

import "errors"

var (
	// ErrUnknownPage is returned by New for an invalid page.
	ErrUnknownPage = errors.New("unknown page")
	// ErrMissingDependency is returned by New when a required collaborator is nil.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrPageMismatch means an event was addressed to another page.
	ErrPageMismatch = errors.New("event addressed to another page")
)

package repository

import "errors"

// Sentinel kinds for publication store errors.
var (
	ErrNotFound      = errors.New("no publication yet")
	ErrInvalidLimit  = errors.New("invalid history limit")
	ErrStaleRevision = errors.New("stale revision")
	ErrUnknownPage   = errors.New("unknown page")
)

package dataset

import "errors"

// Sentinel kinds for dataset loading errors.
var (
	ErrMissingFile    = errors.New("dataset file missing")
	ErrSchemaMismatch = errors.New("dataset schema mismatch")
	ErrUnknownSource  = errors.New("unknown dataset source")
)

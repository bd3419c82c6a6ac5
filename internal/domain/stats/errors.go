package stats

import "errors"

var (
	// ErrLengthMismatch is returned when paired samples differ in length.
	ErrLengthMismatch = errors.New("stats: sample lengths differ")
	// ErrInsufficientData is returned when too few points are available.
	ErrInsufficientData = errors.New("stats: insufficient data points")
	// ErrDegenerate is returned when the regressor has no variance.
	ErrDegenerate = errors.New("stats: regressor has zero variance")
)

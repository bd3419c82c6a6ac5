package model

import "errors"

// Error taxonomy shared by every pipeline stage. Callers wrap these with
// fmt.Errorf and test with errors.Is.
var (
	// ErrDataUnavailable means a source is missing or yields no rows for a filter.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInvalidFilter means the filter state is malformed, e.g. an inverted year range.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrComputationFailure means a derived statistic could not be computed.
	ErrComputationFailure = errors.New("computation failure")
)

// Error kinds as reported to the render surface.
const (
	KindDataUnavailable    = "data_unavailable"
	KindInvalidFilter      = "invalid_filter"
	KindComputationFailure = "computation_failure"
	KindInternal           = "internal"
)

// KindOf maps err to one of the Kind constants.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidFilter):
		return KindInvalidFilter
	case errors.Is(err, ErrDataUnavailable):
		return KindDataUnavailable
	case errors.Is(err, ErrComputationFailure):
		return KindComputationFailure
	default:
		return KindInternal
	}
}

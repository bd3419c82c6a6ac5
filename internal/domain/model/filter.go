package model

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// FilterState is the user's current selection on a page. It is a value:
// every With* method returns a new state and never shares the entity slice.
type FilterState struct {
	YearStart int      `json:"year_start"`
	YearEnd   int      `json:"year_end"`
	Entities  []string `json:"entities"`
	Mode      Mode     `json:"mode"`
}

// NewFilter returns a state covering [start, end] with no selection.
func NewFilter(mode Mode, start, end int) FilterState {
	return FilterState{YearStart: start, YearEnd: end, Mode: mode}
}

// Validate reports ErrInvalidFilter for an inverted range or unknown mode.
func (f FilterState) Validate() error {
	if !f.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode", ErrInvalidFilter)
	}
	if f.YearEnd < f.YearStart {
		return fmt.Errorf("%w: year range inverted (%d > %d)", ErrInvalidFilter, f.YearStart, f.YearEnd)
	}
	return nil
}

// ValidateFor additionally checks that the mode belongs to page.
func (f FilterState) ValidateFor(page Page) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Mode.Page() != page {
		return fmt.Errorf("%w: mode %s not available on page %s", ErrInvalidFilter, f.Mode, page)
	}
	return nil
}

// Clamp limits both years to [lo, hi]. An inverted range stays inverted.
func (f FilterState) Clamp(lo, hi int) FilterState {
	out := f.clone()
	out.YearStart = clampInt(out.YearStart, lo, hi)
	out.YearEnd = clampInt(out.YearEnd, lo, hi)
	if f.YearStart > f.YearEnd && out.YearStart == out.YearEnd {
		// clamping both ends onto one bound would hide the inversion
		out.YearStart, out.YearEnd = f.YearStart, f.YearEnd
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WithYears returns a copy covering [start, end].
func (f FilterState) WithYears(start, end int) FilterState {
	out := f.clone()
	out.YearStart, out.YearEnd = start, end
	return out
}

// WithEntities returns a copy selecting entities. Duplicates and blanks are
// dropped and the order is normalised.
func (f FilterState) WithEntities(entities []string) FilterState {
	out := f.clone()
	out.Entities = normaliseEntities(entities)
	return out
}

// WithMode returns a copy using mode.
func (f FilterState) WithMode(mode Mode) FilterState {
	out := f.clone()
	out.Mode = mode
	return out
}

// Single reports whether the range covers a single year.
func (f FilterState) Single() bool { return f.YearStart == f.YearEnd }

// Equal reports whether two states select the same thing.
func (f FilterState) Equal(o FilterState) bool {
	return f.YearStart == o.YearStart && f.YearEnd == o.YearEnd && f.Mode == o.Mode &&
		slices.Equal(f.Entities, o.Entities)
}

// Key returns a canonical string form, usable as a cache or log key.
func (f FilterState) Key() string {
	var b strings.Builder
	b.WriteString(f.Mode.String())
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(f.YearStart))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(f.YearEnd))
	b.WriteByte('|')
	b.WriteString(strings.Join(f.Entities, ","))
	return b.String()
}

func (f FilterState) clone() FilterState {
	out := f
	out.Entities = slices.Clone(f.Entities)
	return out
}

func normaliseEntities(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, e := range in {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// Title returns the mode title qualified by the year range.
func (f FilterState) Title() string {
	if f.Single() {
		return fmt.Sprintf("%s, %d", f.Mode.Title(), f.YearStart)
	}
	return fmt.Sprintf("%s, %d-%d", f.Mode.Title(), f.YearStart, f.YearEnd)
}

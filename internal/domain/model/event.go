// Package model contains the domain models passed between layers: source
// tables, filter state, dashboard pages and modes, and UI events.
package model

import (
	"fmt"
	"time"
)

// EventKind is a discrete UI interaction.
type EventKind string

const (
	EventSetYears    EventKind = "set_years"    // range slider moved
	EventSetYear     EventKind = "set_year"     // single-year slider moved
	EventSetEntities EventKind = "set_entities" // entity dropdown changed
	EventSelectGroup EventKind = "select_group" // preset button (top10, G7, BRICS, clear)
	EventSetMode     EventKind = "set_mode"     // mode dropdown or tab changed
	EventUpdate      EventKind = "update"       // explicit update button
	EventPlay        EventKind = "play"
	EventStop        EventKind = "stop"
	EventTick        EventKind = "tick" // animation timer
	EventReset       EventKind = "reset"
)

var eventKinds = map[EventKind]struct{}{
	EventSetYears: {}, EventSetYear: {}, EventSetEntities: {}, EventSelectGroup: {},
	EventSetMode: {}, EventUpdate: {}, EventPlay: {}, EventStop: {}, EventTick: {}, EventReset: {},
}

// Valid reports whether k is a known kind.
func (k EventKind) Valid() bool {
	_, ok := eventKinds[k]
	return ok
}

// Event is a UI interaction addressed to one page.
// Only the fields relevant to Kind are read.
type Event struct {
	ID         string    // client supplied id for idempotency, may be empty
	Page       Page      // target page
	Kind       EventKind // interaction type
	YearStart  int       // set_years
	YearEnd    int       // set_years
	Year       int       // set_year
	Entities   []string  // set_entities
	Group      string    // select_group
	Mode       Mode      // set_mode
	ReceivedAt time.Time
}

// Validate checks the fields Kind requires.
func (e Event) Validate() error {
	if !e.Page.Valid() {
		return fmt.Errorf("event: unknown page")
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("event: unknown kind %q", e.Kind)
	}
	switch e.Kind {
	case EventSetMode:
		if e.Mode.Page() != e.Page {
			return fmt.Errorf("event: mode %s not available on page %s", e.Mode, e.Page)
		}
	case EventSelectGroup:
		if e.Group == "" {
			return fmt.Errorf("event: group is required")
		}
	case EventPlay, EventStop, EventTick:
		if !e.Page.Animated() {
			return fmt.Errorf("event: page %s has no animation", e.Page)
		}
	}
	return nil
}

// Package types contains the request and response shapes exchanged with the
// render surface over HTTP.
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/climadash/internal/domain/model"
)

// EventRequest is a UI interaction as posted by a client.
type EventRequest struct {
	EventID   string   `json:"event_id,omitempty"`
	Kind      string   `json:"kind"`
	YearStart *int     `json:"year_start,omitempty"`
	YearEnd   *int     `json:"year_end,omitempty"`
	Year      *int     `json:"year,omitempty"`
	Entities  []string `json:"entities,omitempty"`
	Group     string   `json:"group,omitempty"`
	Mode      string   `json:"mode,omitempty"`
}

// ToEvent converts the request into a domain event for page. Fields the kind
// requires must be present.
func (r EventRequest) ToEvent(page model.Page, now time.Time) (model.Event, error) {
	e := model.Event{
		ID:         strings.TrimSpace(r.EventID),
		Page:       page,
		Kind:       model.EventKind(strings.TrimSpace(r.Kind)),
		Entities:   r.Entities,
		Group:      strings.TrimSpace(r.Group),
		ReceivedAt: now,
	}
	switch e.Kind {
	case model.EventSetYears:
		if r.YearStart == nil || r.YearEnd == nil {
			return model.Event{}, fmt.Errorf("%w: year_start and year_end are required", model.ErrInvalidFilter)
		}
		e.YearStart, e.YearEnd = *r.YearStart, *r.YearEnd
	case model.EventSetYear:
		if r.Year == nil {
			return model.Event{}, fmt.Errorf("%w: year is required", model.ErrInvalidFilter)
		}
		e.Year = *r.Year
	case model.EventSetMode:
		m, err := model.ParseMode(strings.TrimSpace(r.Mode))
		if err != nil {
			return model.Event{}, err
		}
		e.Mode = m
	}
	if err := e.Validate(); err != nil {
		return model.Event{}, fmt.Errorf("%w: %w", model.ErrInvalidFilter, err)
	}
	return e, nil
}

// EventResponse acknowledges a posted event.
type EventResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

// ModeInfo names one selectable mode.
type ModeInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// PageInfo describes a page and the controls it offers.
type PageInfo struct {
	Name     string     `json:"name"`
	Modes    []ModeInfo `json:"modes"`
	YearMin  int        `json:"year_min"`
	YearMax  int        `json:"year_max"`
	Entities []string   `json:"entities,omitempty"`
	Groups   []string   `json:"groups,omitempty"`
	Regions  []string   `json:"regions,omitempty"`
	Live     bool       `json:"live"`
	Animated bool       `json:"animated"`
	State    string     `json:"state"`
	Playing  bool       `json:"playing"`
	Revision uint64     `json:"revision"`
}

// Modes lists the modes of p as ModeInfo values.
func Modes(p model.Page) []ModeInfo {
	ms := p.Modes()
	out := make([]ModeInfo, 0, len(ms))
	for _, m := range ms {
		out = append(out, ModeInfo{Name: m.String(), Title: m.Title()})
	}
	return out
}

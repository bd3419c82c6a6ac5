package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/types"
)

const maxEventBody = 64 << 10

// EventDependencies defines the interface for event processing dependencies
type EventDependencies interface {
	Deduper
	Enqueue(ctx context.Context, e model.Event) bool
}

// EventsHandler handles event requests
type EventsHandler struct {
	deps EventDependencies
	now  func() time.Time
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps, now: time.Now}
}

// HandlePostEvent handles POST /pages/{page}/events requests
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	page, err := pageFrom(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_page", WrapKind(op, ErrUnknownPage, err))
		return
	}

	var req types.EventRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	e, err := req.ToEvent(page, h.now())
	if err != nil {
		code := "bad_request"
		if errors.Is(err, model.ErrInvalidFilter) {
			code = model.KindInvalidFilter
		}
		writeError(w, http.StatusBadRequest, code, WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first. Events without an id are never deduplicated.
	if e.ID != "" && h.deps.SeenAndRecord(r.Context(), page, e.ID) {
		writeJSON(w, http.StatusOK, types.EventResponse{Status: "duplicate", EventID: e.ID, Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), e); !ok {
		// Rollback the "seen" status since enqueue failed
		if e.ID != "" {
			h.deps.Unrecord(r.Context(), page, e.ID)
		}
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, types.EventResponse{Status: "accepted", EventID: e.ID})
}

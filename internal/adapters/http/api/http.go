// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/climadash/internal/domain/interaction"
	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/types"
)

// Deduper remembers event ids per page.
type Deduper interface {
	// SeenAndRecord reports whether id was seen on page and records it if not.
	SeenAndRecord(ctx context.Context, page model.Page, id string) bool
	// Unrecord forgets id so it can be retried.
	Unrecord(ctx context.Context, page model.Page, id string)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Deduper

	// Enqueue pushes an event to its page mailbox. Returns false on backpressure.
	Enqueue(ctx context.Context, e model.Event) bool

	// Read operations expose the published dashboard state.
	Pages(ctx context.Context) ([]types.PageInfo, error)
	Status(ctx context.Context, page model.Page) (interaction.Status, error)
	Latest(ctx context.Context, page model.Page) (interaction.Publication, error)
	History(ctx context.Context, page model.Page, limit int) ([]interaction.Publication, error)
	RenderChart(ctx context.Context, page model.Page) ([]byte, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	eventsHandler *EventsHandler
	pagesHandler  *PagesHandler
}

// NewServer creates a new API server with all handlers. maxHistory caps the
// history limit a client may ask for.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxHistory int) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		eventsHandler: NewEventsHandler(deps),
		pagesHandler:  NewPagesHandler(deps, maxHistory),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /pages", MetricsMiddleware(s.pagesHandler.HandleListPages, "pages"))
	mux.HandleFunc("POST /pages/{page}/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("GET /pages/{page}/status", MetricsMiddleware(s.pagesHandler.HandleGetStatus, "status"))
	mux.HandleFunc("GET /pages/{page}/view", MetricsMiddleware(s.pagesHandler.HandleGetView, "view"))
	mux.HandleFunc("GET /pages/{page}/history", MetricsMiddleware(s.pagesHandler.HandleGetHistory, "history"))
	mux.HandleFunc("GET /pages/{page}/chart.png", MetricsMiddleware(s.pagesHandler.HandleGetChart, "chart"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// pageFrom resolves the {page} path segment.
func pageFrom(r *http.Request) (model.Page, error) {
	return model.ParsePage(r.PathValue("page"))
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/climadash/internal/adapters/render"
	repository "github.com/okian/climadash/internal/adapters/repository"
	"github.com/okian/climadash/internal/domain/interaction"
	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/types"
)

const defaultHistoryLimit = 10

// PageDependencies defines the read side used by PagesHandler.
type PageDependencies interface {
	Pages(ctx context.Context) ([]types.PageInfo, error)
	Status(ctx context.Context, page model.Page) (interaction.Status, error)
	Latest(ctx context.Context, page model.Page) (interaction.Publication, error)
	History(ctx context.Context, page model.Page, limit int) ([]interaction.Publication, error)
	RenderChart(ctx context.Context, page model.Page) ([]byte, error)
}

// PagesHandler serves page descriptions and published outputs.
type PagesHandler struct {
	deps       PageDependencies
	maxHistory int
}

// NewPagesHandler creates a new pages handler.
func NewPagesHandler(deps PageDependencies, maxHistory int) *PagesHandler {
	if maxHistory < 1 {
		maxHistory = defaultHistoryLimit
	}
	return &PagesHandler{deps: deps, maxHistory: maxHistory}
}

// HandleListPages handles GET /pages.
func (h *PagesHandler) HandleListPages(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_pages"
	pages, err := h.deps.Pages(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

// HandleGetStatus handles GET /pages/{page}/status.
func (h *PagesHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_status"
	page, ok := h.page(w, r, op)
	if !ok {
		return
	}
	st, err := h.deps.Status(r.Context(), page)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleGetView handles GET /pages/{page}/view. It returns the latest
// publication: insight, chart spec and any error fallback.
func (h *PagesHandler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_view"
	page, ok := h.page(w, r, op)
	if !ok {
		return
	}
	p, err := h.deps.Latest(r.Context(), page)
	if err != nil {
		writeReadError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleGetHistory handles GET /pages/{page}/history?limit=N.
func (h *PagesHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	page, ok := h.page(w, r, op)
	if !ok {
		return
	}
	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxHistory {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	hist, err := h.deps.History(r.Context(), page, limit)
	if err != nil {
		writeReadError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

// HandleGetChart handles GET /pages/{page}/chart.png.
func (h *PagesHandler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chart"
	page, ok := h.page(w, r, op)
	if !ok {
		return
	}
	img, err := h.deps.RenderChart(r.Context(), page)
	if err != nil {
		if errors.Is(err, render.ErrUnsupportedFamily) || errors.Is(err, render.ErrEmptyChart) {
			writeError(w, http.StatusUnprocessableEntity, "unrenderable", WrapKind(op, ErrUnrenderable, err))
			return
		}
		writeReadError(w, op, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func (h *PagesHandler) page(w http.ResponseWriter, r *http.Request, op string) (model.Page, bool) {
	page, err := pageFrom(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_page", WrapKind(op, ErrUnknownPage, err))
		return model.PageUnknown, false
	}
	return page, true
}

func writeReadError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_computed", WrapKind(op, ErrNotComputed, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
}

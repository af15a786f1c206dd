// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/okian/encore/internal/adapters/refresh"
	"github.com/okian/encore/internal/domain/model"
)

// RefreshDependencies defines the interface for manual table reloads.
type RefreshDependencies interface {
	RequestRefresh(ctx context.Context, name string) ([]model.TableName, error)
}

// refreshRequest mirrors the OpenAPI schema for POST /refresh. An empty
// or absent body reloads every table.
type refreshRequest struct {
	Table string `json:"table"`
}

type refreshResponse struct {
	Status string            `json:"status"`
	Tables []model.TableName `json:"tables"`
}

// RefreshHandler handles manual refresh requests.
type RefreshHandler struct {
	deps RefreshDependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps RefreshDependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

// HandleRefresh handles POST /refresh requests.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	tables, err := h.deps.RequestRefresh(r.Context(), req.Table)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUnknownTable):
			writeError(w, http.StatusBadRequest, "unknown_table", WrapKind(op, ErrBadRequest, err))
		case errors.Is(err, refresh.ErrBackpressure):
			writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusAccepted, refreshResponse{Status: "accepted", Tables: tables})
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/okian/encore/internal/domain/resolve"
)

// Default boundary values applied when a request omits a field.
const (
	defaultK     = 20
	defaultMaxK  = 1000
	defaultAlpha = 0.3
)

// RecommendDependencies defines the interface for resolution.
type RecommendDependencies interface {
	Recommend(ctx context.Context, q resolve.Query) (resolve.Result, error)
}

// recommendRequest mirrors the OpenAPI schema for POST /recommend.
// Pointer fields distinguish "absent" from zero values at the boundary.
type recommendRequest struct {
	UserID       *int64   `json:"user_id"`
	K            *int     `json:"k"`
	RecentTracks []int64  `json:"recent_tracks"`
	Alpha        *float64 `json:"alpha"`
}

type recommendResponse struct {
	UserID int64   `json:"user_id"`
	Tracks []int64 `json:"tracks"`
}

// RecommendHandler handles recommendation requests.
type RecommendHandler struct {
	deps         RecommendDependencies
	defaultK     int
	maxK         int
	defaultAlpha float64
}

// ServerOption applies a configuration option to the request boundary.
type ServerOption func(*RecommendHandler)

// WithDefaultK sets the result size used when a request omits k.
func WithDefaultK(k int) ServerOption {
	return func(h *RecommendHandler) {
		if k > 0 {
			h.defaultK = k
		}
	}
}

// WithMaxK caps the per-request result size.
func WithMaxK(k int) ServerOption {
	return func(h *RecommendHandler) {
		if k > 0 {
			h.maxK = k
		}
	}
}

// WithDefaultAlpha sets the blend weight used when a request omits alpha.
func WithDefaultAlpha(alpha float64) ServerOption {
	return func(h *RecommendHandler) {
		if alpha >= 0 && alpha <= 1 {
			h.defaultAlpha = alpha
		}
	}
}

// NewRecommendHandler creates a new recommend handler.
func NewRecommendHandler(deps RecommendDependencies, opts ...ServerOption) *RecommendHandler {
	h := &RecommendHandler{
		deps:         deps,
		defaultK:     defaultK,
		maxK:         defaultMaxK,
		defaultAlpha: defaultAlpha,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleRecommend handles POST /recommend requests. Boundary rules:
// user_id is required; k defaults to the configured result size and
// must stay within [0, maxK]; alpha defaults to the configured blend
// weight and is rejected outside [0,1] rather than clamped.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.UserID == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing user_id")))
		return
	}

	k := h.defaultK
	if req.K != nil {
		k = *req.K
	}
	if k < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("k must be non-negative")))
		return
	}
	if k > h.maxK {
		writeError(w, http.StatusBadRequest, "k_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	alpha := h.defaultAlpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}

	res, err := h.deps.Recommend(r.Context(), resolve.Query{
		UserID:       *req.UserID,
		K:            k,
		RecentTracks: req.RecentTracks,
		Alpha:        alpha,
	})
	if err != nil {
		if errors.Is(err, resolve.ErrInvalidAlpha) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	tracks := res.Tracks
	if tracks == nil {
		tracks = []int64{}
	}
	writeJSON(w, http.StatusOK, recommendResponse{UserID: *req.UserID, Tracks: tracks})
}

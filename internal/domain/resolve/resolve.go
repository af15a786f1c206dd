// Package resolve implements the tiered resolution engine that turns a
// user id into an ordered track list.
//
// Offline resolution consults the ranked sources in strict priority
// order: final_ranked, then personal_als, then top_popular. The first
// source yielding rows for the user wins. When the caller also supplies
// recently played tracks, the offline list is oversampled and re-ranked
// against that recency signal.
package resolve

import (
	"context"
	"math"

	"github.com/okian/encore/internal/domain/blend"
	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/internal/domain/rank"
	"github.com/okian/encore/pkg/logger"
	"github.com/okian/encore/pkg/metrics"
)

// TableSource provides read access to the loaded recommendation tables.
// Absent users and absent tables yield empty results, not errors.
type TableSource interface {
	// UserRows returns the rows of a user-indexed table matching userID,
	// preserving table order and duplicates.
	UserRows(ctx context.Context, table model.TableName, userID int64) []model.Row

	// GlobalRows returns every row of a table in table order.
	GlobalRows(ctx context.Context, table model.TableName) []model.Row

	// Loaded reports whether the named table has been loaded.
	Loaded(ctx context.Context, table model.TableName) bool
}

// Query carries the arguments of one resolution request.
type Query struct {
	UserID       int64
	K            int
	RecentTracks []int64
	Alpha        float64
}

// Path names the terminal resolution path a request took.
type Path int

// Resolution paths.
const (
	PathNone Path = iota
	PathPersonal
	PathDefault
)

// Result is the outcome of one resolution request.
type Result struct {
	Tracks  []int64
	Source  model.TableName
	Path    Path
	Blended bool
}

// tier is one entry of the fallback chain. Personal tiers look up the
// user and fall through on an empty match; the global tier serves
// whenever its table is loaded.
type tier struct {
	table model.TableName
	order func([]model.Row) []model.Row
	path  Path
}

// Resolver applies the tiered fallback and blending policy against a
// TableSource. Resolvers are safe for concurrent use; resolution only
// reads tables and atomically bumps counters.
type Resolver struct {
	source     TableSource
	counters   Counters
	oversample int
	logger     logger.Logger
	tiers      []tier
}

// NewResolver creates a resolver reading from source.
func NewResolver(source TableSource, opts ...Option) *Resolver {
	r := &Resolver{
		source:     source,
		oversample: defaultOversample,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("resolve")
	}
	r.tiers = []tier{
		{table: model.TableFinalRanked, order: rank.Personal, path: PathPersonal},
		{table: model.TablePersonalALS, order: rank.Personal, path: PathPersonal},
		{table: model.TableTopPopular, order: rank.Popularity, path: PathDefault},
	}
	return r
}

// Counters exposes the usage counters for external inspection.
func (r *Resolver) Counters() *Counters {
	return &r.counters
}

// Offline returns up to k track ids from the best available offline
// source for userID. k <= 0 returns an empty result without consulting
// any table.
func (r *Resolver) Offline(ctx context.Context, userID int64, k int) Result {
	if k <= 0 {
		return Result{}
	}

	for _, t := range r.tiers {
		if !r.source.Loaded(ctx, t.table) {
			continue
		}

		var rows []model.Row
		if t.table.UserIndexed() {
			rows = r.source.UserRows(ctx, t.table, userID)
			if len(rows) == 0 {
				// Absent user: fall through to the next tier.
				continue
			}
		} else {
			rows = r.source.GlobalRows(ctx, t.table)
		}

		tracks := truncate(t.order(rows), k)
		if t.path == PathPersonal {
			r.counters.personal.Add(1)
			metrics.RecordPersonalResolution()
			r.logger.Info(ctx, "served personal recommendations",
				logger.Int64("userID", userID),
				logger.String("table", string(t.table)),
				logger.Int("tracks", len(tracks)),
			)
		} else {
			r.counters.deflt.Add(1)
			metrics.RecordDefaultResolution()
			r.logger.Info(ctx, "no history, served top popular",
				logger.Int64("userID", userID),
				logger.Int("tracks", len(tracks)),
			)
		}
		return Result{Tracks: tracks, Source: t.table, Path: t.path}
	}

	// Degraded: no table is loaded at all. Still a well-formed empty
	// response, but it must be distinguishable from a plain no-history
	// case in logs and metrics.
	metrics.RecordResolutionUnavailable()
	r.logger.Error(ctx, "no recommendation tables loaded",
		logger.Int64("userID", userID),
	)
	return Result{}
}

// Resolve answers a full query: offline resolution, optionally blended
// with the caller-supplied recent tracks. An alpha outside [0,1] is
// rejected rather than clamped.
func (r *Resolver) Resolve(ctx context.Context, q Query) (Result, error) {
	if math.IsNaN(q.Alpha) || q.Alpha < 0 || q.Alpha > 1 {
		return Result{}, ErrInvalidAlpha
	}

	if len(q.RecentTracks) == 0 {
		return r.Offline(ctx, q.UserID, q.K), nil
	}

	r.counters.online.Add(1)
	metrics.RecordBlendedResolution()

	// Oversample so tracks demoted offline but boosted by recency can
	// still surface in the final top-k.
	res := r.Offline(ctx, q.UserID, q.K*r.oversample)
	res.Blended = true
	if len(res.Tracks) == 0 {
		// Blending never invents candidates.
		return res, nil
	}

	res.Tracks = blend.Rerank(res.Tracks, q.RecentTracks, q.Alpha, q.K)
	r.logger.Info(ctx, "blended offline and online signals",
		logger.Int64("userID", q.UserID),
		logger.Int("recentTracks", len(q.RecentTracks)),
		logger.Float64("alpha", q.Alpha),
		logger.Int("tracks", len(res.Tracks)),
	)
	return res, nil
}

func truncate(rows []model.Row, k int) []int64 {
	if k > len(rows) {
		k = len(rows)
	}
	out := make([]int64, k)
	for i := 0; i < k; i++ {
		out[i] = rows[i].TrackID
	}
	return out
}

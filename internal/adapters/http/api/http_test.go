package api_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/encore/internal/adapters/http/api"
	"github.com/okian/encore/internal/adapters/refresh"
	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/internal/domain/resolve"
	"github.com/okian/encore/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// mockDeps implements api.Dependencies for handler tests.
type mockDeps struct {
	recommendFn func(ctx context.Context, q resolve.Query) (resolve.Result, error)
	refreshFn   func(ctx context.Context, name string) ([]model.TableName, error)
	lastQuery   resolve.Query
}

func (m *mockDeps) Recommend(ctx context.Context, q resolve.Query) (resolve.Result, error) {
	m.lastQuery = q
	if m.recommendFn != nil {
		return m.recommendFn(ctx, q)
	}
	return resolve.Result{Tracks: []int64{1, 2, 3}, Source: model.TableFinalRanked, Path: resolve.PathPersonal}, nil
}

func (m *mockDeps) RequestRefresh(ctx context.Context, name string) ([]model.TableName, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, name)
	}
	return model.AllTables(), nil
}

func (m *mockDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"started":                   true,
		"request_personal_count":    int64(3),
		"request_default_count":     int64(1),
		"request_with_online_count": int64(2),
	}
}

func newTestMux(deps *mockDeps, opts ...api.ServerOption) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, deps, opts...).Register(context.Background(), mux)
	return mux
}

func postJSON(mux *http.ServeMux, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleRecommend(t *testing.T) {
	convey.Convey("Given the recommend endpoint", t, func() {
		convey.Convey("When posting a valid request", func() {
			deps := &mockDeps{}
			mux := newTestMux(deps)

			rec := postJSON(mux, "/recommend", `{"user_id": 42, "k": 3}`)

			convey.Convey("Then it should return the resolved tracks", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

				var resp struct {
					UserID int64   `json:"user_id"`
					Tracks []int64 `json:"tracks"`
				}
				convey.So(json.Unmarshal(rec.Body.Bytes(), &resp), convey.ShouldBeNil)
				convey.So(resp.UserID, convey.ShouldEqual, 42)
				convey.So(resp.Tracks, convey.ShouldResemble, []int64{1, 2, 3})
			})

			convey.Convey("And the query carries the request values", func() {
				convey.So(deps.lastQuery.UserID, convey.ShouldEqual, 42)
				convey.So(deps.lastQuery.K, convey.ShouldEqual, 3)
				convey.So(deps.lastQuery.RecentTracks, convey.ShouldBeEmpty)
			})

			convey.Convey("And a request id header is attached", func() {
				convey.So(rec.Header().Get("X-Request-Id"), convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When the request omits k and alpha", func() {
			deps := &mockDeps{}
			mux := newTestMux(deps, api.WithDefaultK(25), api.WithDefaultAlpha(0.4))

			rec := postJSON(mux, "/recommend", `{"user_id": 42}`)

			convey.Convey("Then the configured defaults apply", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(deps.lastQuery.K, convey.ShouldEqual, 25)
				convey.So(deps.lastQuery.Alpha, convey.ShouldEqual, 0.4)
			})
		})

		convey.Convey("When the request carries recent tracks", func() {
			deps := &mockDeps{}
			mux := newTestMux(deps)

			rec := postJSON(mux, "/recommend", `{"user_id": 42, "recent_tracks": [9, 11], "alpha": 0.5}`)

			convey.Convey("Then the online signal reaches the resolver", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(deps.lastQuery.RecentTracks, convey.ShouldResemble, []int64{9, 11})
				convey.So(deps.lastQuery.Alpha, convey.ShouldEqual, 0.5)
			})
		})

		convey.Convey("When k is zero", func() {
			deps := &mockDeps{recommendFn: func(_ context.Context, q resolve.Query) (resolve.Result, error) {
				return resolve.Result{}, nil
			}}
			mux := newTestMux(deps)

			rec := postJSON(mux, "/recommend", `{"user_id": 42, "k": 0}`)

			convey.Convey("Then an empty list is a valid response", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, `"tracks":[]`)
			})
		})

		convey.Convey("When user_id is missing", func() {
			mux := newTestMux(&mockDeps{})

			rec := postJSON(mux, "/recommend", `{"k": 5}`)

			convey.Convey("Then it should return 400", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "missing user_id")
			})
		})

		convey.Convey("When the body is not JSON", func() {
			mux := newTestMux(&mockDeps{})

			rec := postJSON(mux, "/recommend", `{not json`)

			convey.Convey("Then it should return 400", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			})
		})

		convey.Convey("When k is negative", func() {
			mux := newTestMux(&mockDeps{})

			rec := postJSON(mux, "/recommend", `{"user_id": 42, "k": -1}`)

			convey.Convey("Then it should return 400", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			})
		})

		convey.Convey("When k exceeds the cap", func() {
			mux := newTestMux(&mockDeps{}, api.WithMaxK(100))

			rec := postJSON(mux, "/recommend", `{"user_id": 42, "k": 101}`)

			convey.Convey("Then it should return 400 with the k_exceeded code", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "k_exceeded")
			})
		})

		convey.Convey("When alpha is out of range", func() {
			deps := &mockDeps{recommendFn: func(_ context.Context, q resolve.Query) (resolve.Result, error) {
				return resolve.Result{}, resolve.ErrInvalidAlpha
			}}
			mux := newTestMux(deps)

			rec := postJSON(mux, "/recommend", `{"user_id": 42, "alpha": 1.5}`)

			convey.Convey("Then it should return 400", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			})
		})

		convey.Convey("When resolution fails internally", func() {
			deps := &mockDeps{recommendFn: func(_ context.Context, q resolve.Query) (resolve.Result, error) {
				return resolve.Result{}, errors.New("boom")
			}}
			mux := newTestMux(deps)

			rec := postJSON(mux, "/recommend", `{"user_id": 42}`)

			convey.Convey("Then it should return 500", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusInternalServerError)
			})
		})

		convey.Convey("When using the wrong method", func() {
			mux := newTestMux(&mockDeps{})

			req := httptest.NewRequest(http.MethodGet, "/recommend", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			convey.Convey("Then it should return 404", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHandleRefresh(t *testing.T) {
	convey.Convey("Given the refresh endpoint", t, func() {
		convey.Convey("When requesting a full refresh with an empty body", func() {
			mux := newTestMux(&mockDeps{})

			rec := postJSON(mux, "/refresh", ``)

			convey.Convey("Then every table is accepted", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusAccepted)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, `"status":"accepted"`)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "final_ranked")
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "top_popular")
			})
		})

		convey.Convey("When requesting one table", func() {
			var requested string
			deps := &mockDeps{refreshFn: func(_ context.Context, name string) ([]model.TableName, error) {
				requested = name
				return []model.TableName{model.TableTopPopular}, nil
			}}
			mux := newTestMux(deps)

			rec := postJSON(mux, "/refresh", `{"table": "top_popular"}`)

			convey.Convey("Then only that table is enqueued", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusAccepted)
				convey.So(requested, convey.ShouldEqual, "top_popular")
			})
		})

		convey.Convey("When the table name is unknown", func() {
			deps := &mockDeps{refreshFn: func(_ context.Context, name string) ([]model.TableName, error) {
				return nil, model.ErrUnknownTable
			}}
			mux := newTestMux(deps)

			rec := postJSON(mux, "/refresh", `{"table": "bogus"}`)

			convey.Convey("Then it should return 400 with the unknown_table code", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "unknown_table")
			})
		})

		convey.Convey("When the refresh queue is full", func() {
			deps := &mockDeps{refreshFn: func(_ context.Context, name string) ([]model.TableName, error) {
				return nil, refresh.ErrBackpressure
			}}
			mux := newTestMux(deps)

			rec := postJSON(mux, "/refresh", ``)

			convey.Convey("Then it should return 429", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusTooManyRequests)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "backpressure")
			})
		})

		convey.Convey("When the refresh fails internally", func() {
			deps := &mockDeps{refreshFn: func(_ context.Context, name string) ([]model.TableName, error) {
				return nil, errors.New("boom")
			}}
			mux := newTestMux(deps)

			rec := postJSON(mux, "/refresh", ``)

			convey.Convey("Then it should return 500", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusInternalServerError)
			})
		})

		convey.Convey("When using the wrong method", func() {
			mux := newTestMux(&mockDeps{})

			req := httptest.NewRequest(http.MethodGet, "/refresh", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			convey.Convey("Then it should return 404", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHandleStats(t *testing.T) {
	convey.Convey("Given the stats endpoint", t, func() {
		mux := newTestMux(&mockDeps{})

		convey.Convey("When fetching stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			convey.Convey("Then the usage counters are exposed", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

				var stats map[string]interface{}
				convey.So(json.Unmarshal(rec.Body.Bytes(), &stats), convey.ShouldBeNil)
				convey.So(stats["request_personal_count"], convey.ShouldEqual, 3)
				convey.So(stats["request_default_count"], convey.ShouldEqual, 1)
				convey.So(stats["request_with_online_count"], convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodPost, "/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			convey.Convey("Then it should return 404", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHandleHealthAndDashboard(t *testing.T) {
	convey.Convey("Given the operational endpoints", t, func() {
		mux := newTestMux(&mockDeps{})

		convey.Convey("When probing /healthz", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			convey.Convey("Then it should serve Prometheus metrics", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Body.Len(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When loading /dashboard", func() {
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			convey.Convey("Then it should serve the status page", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "<html")
			})
		})
	})
}

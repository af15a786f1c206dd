package objstore_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/encore/internal/adapters/objstore"
)

// newS3Server starts a minimal S3-compatible server exposing objects by
// path-style GET /bucket/key requests.
func newS3Server(objects map[string][]byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		// minio-go probes the bucket location before the first object request.
		if r.URL.Query().Has("location") {
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<?xml version="1.0"?><LocationConstraint></LocationConstraint>`))
			return
		}
		data, ok := objects[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0"?><Error><Code>NoSuchKey</Code></Error>`))
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		// minio-go rejects object responses without a parsable Last-Modified.
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		_, _ = w.Write(data)
	}))
}

func TestClient(t *testing.T) {
	convey.Convey("Given an S3-compatible endpoint", t, func() {
		ctx := context.Background()
		payload := []byte("parquet bytes")
		srv := newS3Server(map[string][]byte{
			"/recs-bucket/recsys/recommendations/top_popular.parquet": payload,
		})
		defer srv.Close()

		u, err := url.Parse(srv.URL)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When fetching an existing object", func() {
			client, err := objstore.New("recs-bucket", "test-access", "test-secret",
				objstore.WithEndpoint(u.Host),
				objstore.WithSecure(false),
			)
			convey.So(err, convey.ShouldBeNil)

			data, err := client.Fetch(ctx, "recsys/recommendations/top_popular.parquet")

			convey.Convey("Then the full object content is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(data, convey.ShouldResemble, payload)
			})

			convey.Convey("And the bucket is reported", func() {
				convey.So(client.Bucket(), convey.ShouldEqual, "recs-bucket")
			})
		})

		convey.Convey("When fetching a missing object", func() {
			client, err := objstore.New("recs-bucket", "test-access", "test-secret",
				objstore.WithEndpoint(u.Host),
				objstore.WithSecure(false),
			)
			convey.So(err, convey.ShouldBeNil)

			data, err := client.Fetch(ctx, "recsys/recommendations/absent.parquet")

			convey.Convey("Then the fetch error names the object", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, objstore.ErrFetch)
				convey.So(err.Error(), convey.ShouldContainSubstring, "s3://recs-bucket/recsys/recommendations/absent.parquet")
				convey.So(data, convey.ShouldBeNil)
			})
		})

		convey.Convey("When constructing with an invalid endpoint", func() {
			client, err := objstore.New("recs-bucket", "a", "b",
				objstore.WithEndpoint("://not a host"),
			)

			convey.Convey("Then construction fails with the client error", func() {
				convey.So(err, convey.ShouldWrap, objstore.ErrClient)
				convey.So(client, convey.ShouldBeNil)
			})
		})

		convey.Convey("When constructing with defaults", func() {
			client, err := objstore.New("recs-bucket", "a", "b")

			convey.Convey("Then the pipeline endpoint is assumed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(client, convey.ShouldNotBeNil)
			})
		})
	})
}

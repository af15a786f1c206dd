package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording resolution metrics", func() {
			Convey("Then it should record personal resolutions", func() {
				So(func() {
					RecordPersonalResolution()
					RecordPersonalResolution()
					RecordPersonalResolution()
				}, ShouldNotPanic)
			})

			Convey("And it should record default resolutions", func() {
				So(func() {
					RecordDefaultResolution()
					RecordDefaultResolution()
				}, ShouldNotPanic)
			})

			Convey("And it should record blended resolutions", func() {
				So(func() {
					RecordBlendedResolution()
					RecordBlendedResolution()
				}, ShouldNotPanic)
			})

			Convey("And it should record unavailable resolutions", func() {
				So(func() {
					RecordResolutionUnavailable()
				}, ShouldNotPanic)
			})

			Convey("And it should record served tracks", func() {
				So(func() {
					RecordTracksServed(20)
					RecordTracksServed(0)
					RecordTracksServed(1000)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording table metrics", func() {
			Convey("Then it should update table rows", func() {
				So(func() {
					UpdateTableRows("final_ranked", 100000)
					UpdateTableRows("personal_als", 50000)
					UpdateTableRows("top_popular", 1000)
				}, ShouldNotPanic)
			})

			Convey("And it should update table load timestamps", func() {
				So(func() {
					UpdateTableLoadedUnix("final_ranked", 1700000000)
					UpdateTableLoadedUnix("top_popular", 1700000500)
				}, ShouldNotPanic)
			})

			Convey("And it should record table load durations", func() {
				So(func() {
					RecordTableLoadDuration(120.0)
					RecordTableLoadDuration(540.0)
				}, ShouldNotPanic)
			})

			Convey("And it should record table load errors", func() {
				So(func() {
					RecordTableLoadError("final_ranked")
					RecordTableLoadError("personal_als")
				}, ShouldNotPanic)
			})
		})

		Convey("When recording refresh metrics", func() {
			Convey("Then it should update queue gauges", func() {
				So(func() {
					UpdateRefreshQueueSize(10)
					UpdateRefreshQueueCapacity(64)
					UpdateRefreshQueueUtilization(0.15)
				}, ShouldNotPanic)
			})

			Convey("And it should record enqueues by trigger", func() {
				So(func() {
					RecordRefreshEnqueued("startup")
					RecordRefreshEnqueued("schedule")
					RecordRefreshEnqueued("manual")
				}, ShouldNotPanic)
			})

			Convey("And it should record enqueue errors and skips", func() {
				So(func() {
					RecordRefreshEnqueueError()
					RecordRefreshSkipped("top_popular")
				}, ShouldNotPanic)
			})

			Convey("And it should update worker count", func() {
				So(func() {
					UpdateLoaderWorkerCount(2)
					UpdateLoaderWorkerCount(8)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record HTTP requests", func() {
				So(func() {
					RecordHTTPRequest("/healthz", "GET", "200")
					RecordHTTPRequest("/recommend", "POST", "200")
					RecordHTTPRequest("/refresh", "POST", "202")
				}, ShouldNotPanic)
			})

			Convey("And it should record HTTP request duration", func() {
				So(func() {
					RecordHTTPRequestDuration("/healthz", "GET", "200", 5.0)
					RecordHTTPRequestDuration("/recommend", "POST", "200", 10.0)
					RecordHTTPRequestDuration("/refresh", "POST", "202", 15.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording error metrics", func() {
			Convey("Then it should record errors by component", func() {
				So(func() {
					RecordErrorByComponent("resolver", "no_tables")
					RecordErrorByComponent("loader", "fetch_failed")
					RecordErrorByComponent("refresh", "queue_full")
				}, ShouldNotPanic)
			})

			Convey("And it should record errors by type", func() {
				So(func() {
					RecordErrorByType("timeout", "error")
					RecordErrorByType("validation_error", "warning")
				}, ShouldNotPanic)
			})

			Convey("And it should record errors by endpoint", func() {
				So(func() {
					RecordErrorByEndpoint("/recommend", "POST", "bad_request")
					RecordErrorByEndpoint("/refresh", "POST", "backpressure")
				}, ShouldNotPanic)
			})

			Convey("And it should record error latency", func() {
				So(func() {
					RecordErrorLatency("resolver", "no_tables", 1.0)
					RecordErrorLatency("loader", "fetch_failed", 200.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording system metrics", func() {
			Convey("Then it should update system memory usage", func() {
				So(func() {
					UpdateSystemMemoryUsage(1024 * 1024 * 100)
					UpdateSystemMemoryUsage(1024 * 1024 * 200)
				}, ShouldNotPanic)
			})

			Convey("And it should update system goroutine count", func() {
				So(func() {
					UpdateSystemGoroutineCount(100)
					UpdateSystemGoroutineCount(200)
				}, ShouldNotPanic)
			})

			Convey("And it should record system GC pause time", func() {
				So(func() {
					RecordSystemGCPauseTime(1.0)
					RecordSystemGCPauseTime(2.0)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsEdgeCases(t *testing.T) {
	Convey("Given metrics edge cases", t, func() {
		Convey("When recording metrics with edge values", func() {
			Convey("And using zero values", func() {
				So(func() {
					UpdateRefreshQueueSize(0)
					UpdateLoaderWorkerCount(0)
					UpdateTableRows("final_ranked", 0)
					RecordTableLoadDuration(0.0)
					RecordHTTPRequestDuration("/test", "GET", "200", 0.0)
				}, ShouldNotPanic)
			})

			Convey("And using negative values", func() {
				So(func() {
					UpdateRefreshQueueSize(-100)
					UpdateLoaderWorkerCount(-10)
					UpdateTableRows("final_ranked", -1000)
				}, ShouldNotPanic)
			})

			Convey("And using very large values", func() {
				So(func() {
					UpdateRefreshQueueSize(1000000)
					UpdateTableRows("personal_als", 10000000)
					RecordTableLoadDuration(10000.0)
					RecordHTTPRequestDuration("/test", "GET", "200", 30000.0)
				}, ShouldNotPanic)
			})

			Convey("And using empty strings", func() {
				So(func() {
					RecordHTTPRequest("", "", "200")
					RecordHTTPRequestDuration("", "", "200", 10.0)
					RecordErrorByComponent("", "")
					RecordErrorByType("", "")
					RecordErrorByEndpoint("", "", "")
					RecordErrorLatency("", "", 10.0)
					RecordTableLoadError("")
					RecordRefreshSkipped("")
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func(id int) {
					for j := 0; j < 100; j++ {
						RecordPersonalResolution()
						UpdateRefreshQueueSize(j)
						RecordTableLoadDuration(float64(j))
						RecordHTTPRequest("/recommend", "POST", "200")
					}
					done <- true
				}(i)
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsOptionsValidation(t *testing.T) {
	Convey("Given metrics options validation", t, func() {
		Convey("When creating with empty namespace", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithNamespace(""), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with empty subsystem", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithSubsystem(""), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with nil histogram buckets", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with empty histogram buckets", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithHistogramBuckets([]float64{}), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with metrics disabled", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithMetricsEnabled(false), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

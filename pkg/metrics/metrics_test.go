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
			registryOpt := WithPrometheusRegistry(prometheus.NewRegistry())

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(registryOpt, ShouldNotBeNil)
			})
		})

		Convey("When empty values are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the defaults are kept", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "matchreel")
				So(manager.subsystem, ShouldEqual, "assembly")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.contestsAssembled, ShouldNotBeNil)
				So(manager.boundariesSuppressed, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{1, 5, 25}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test-namespace")
				So(manager.subsystem, ShouldEqual, "test-subsystem")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording assembly metrics", func() {
			Convey("Then it should record assembled contests and latency", func() {
				So(func() {
					RecordContestAssembled()
					RecordAssemblyLatency(120.0)
					RecordMomentsPublished(18)
				}, ShouldNotPanic)
			})

			Convey("And it should record verdicts and event counts", func() {
				So(func() {
					RecordValidationVerdict("PASS")
					RecordValidationVerdict("FAIL")
					RecordTimelineEvents("play", 400)
					RecordTimelineEvents("social", 40)
				}, ShouldNotPanic)
			})

			Convey("And it should record boundary audit counters", func() {
				So(func() {
					RecordBoundaryConfirmed("flip")
					RecordBoundaryConfirmed("period-start")
					RecordBoundarySuppressed("reversal")
					RecordBoundarySuppressed("density-gate")
				}, ShouldNotPanic)
			})

			Convey("And it should record input anomalies", func() {
				So(func() {
					RecordInputAnomalies("play_clock_missing", 3)
					RecordInputAnomalies("social_unclassified", 0) // no-op
					RecordInputAnomalies("play_clock_unparseable", -1)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording ingest metrics", func() {
			So(func() {
				RecordSubmissionAccepted()
				RecordSubmissionDuplicate()
			}, ShouldNotPanic)
		})

		Convey("When recording queue metrics", func() {
			So(func() {
				UpdateQueueSize(10)
				UpdateQueueCapacity(1000)
				UpdateQueueUtilization(0.01)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError("capacity_exceeded")
				RecordQueueEnqueueError("closed")
			}, ShouldNotPanic)
		})

		Convey("When recording worker metrics", func() {
			So(func() {
				UpdateWorkerActiveCount(8)
				RecordWorkerLatency(42.0)
				RecordWorkerError()
			}, ShouldNotPanic)
		})

		Convey("When recording store metrics", func() {
			So(func() {
				UpdateRunsStored(100)
				UpdateFailuresRetained(2)
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("/contests", "POST", "202")
				RecordHTTPRequest("/healthz", "GET", "200")
				RecordHTTPRequestDuration("/contests", "POST", 12.0)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsEdgeCases(t *testing.T) {
	Convey("Given metrics edge cases", t, func() {
		Convey("When recording with edge values", func() {
			Convey("And using zero values", func() {
				So(func() {
					UpdateQueueSize(0)
					UpdateWorkerActiveCount(0)
					RecordAssemblyLatency(0.0)
					RecordMomentsPublished(0)
				}, ShouldNotPanic)
			})

			Convey("And using negative gauge values", func() {
				So(func() {
					UpdateQueueSize(-1)
					UpdateRunsStored(-1)
				}, ShouldNotPanic)
			})

			Convey("And using empty label values", func() {
				So(func() {
					RecordValidationVerdict("")
					RecordBoundaryConfirmed("")
					RecordHTTPRequest("", "", "200")
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
				go func() {
					for j := 0; j < 100; j++ {
						RecordContestAssembled()
						UpdateQueueSize(j)
						RecordWorkerLatency(float64(j))
						RecordHTTPRequest("/contests", "POST", "202")
					}
					done <- true
				}()
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

func TestHandlerAndRegistry(t *testing.T) {
	Convey("Given the metrics surface", t, func() {
		Convey("The custom registry and handler are exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
			So(Handler(), ShouldNotBeNil)
		})

		Convey("The global manager gathers without error", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeNil)
		})
	})
}

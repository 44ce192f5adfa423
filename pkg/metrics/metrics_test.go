package metrics

import (
	"testing"
	"time"

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
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
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
				WithRefreshInterval(10*time.Second),
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
		Convey("When recording board activity", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					RecordCardAdded()
					RecordCardMoved()
					RecordMoveRejected("wip_limit")
					RecordBulkMove()
					RecordCommentAdded()
					RecordTagAction("blocked")
				}, ShouldNotPanic)
			})
		})

		Convey("When recording analytics and prioritization", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					RecordFlowReport()
					RecordBottleneck("critical")
					RecordPriorityEvaluation()
					RecordPriorityLatency(2.5)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording persistence and notification activity", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					RecordStoreSave()
					RecordStoreSaveError()
					RecordStoreSaveRetry()
					RecordStoreSaveDuration(1.2)
					RecordStoreLoad()
					RecordNotifyEnqueued()
					RecordNotifyDropped()
					RecordNotifyDelivered()
					RecordNotifyDeliveryError()
				}, ShouldNotPanic)
			})
		})

		Convey("When updating gauges", func() {
			Convey("Then it should update without panicking", func() {
				So(func() {
					UpdateBoardsTotal(3)
					UpdateCardsTotal(42)
					UpdateWipCards(5)
					UpdateBlockedCards(1)
					UpdateNotifyQueueSize(7)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					RecordHTTPRequest("/boards", "POST", "201")
					RecordHTTPRequestDuration("/boards", "POST", "201", 3.4)
					RecordErrorByComponent("store", "save_failed")
					RecordErrorByEndpoint("/boards", "POST", "conflict")
				}, ShouldNotPanic)
			})
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given the package registry", t, func() {
		Convey("When gathering after recording", func() {
			RecordCardAdded()
			families, err := Registry().Gather()

			Convey("Then it should expose the board metrics", func() {
				So(err, ShouldBeNil)
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["flowboard_board_cards_added_total"], ShouldBeTrue)
			})
		})
	})
}

package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then metrics are registered under the scout namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.draftsOpen.Set(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				found := false
				for _, f := range families {
					if f.GetName() == "scout_reports_drafts_open" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("club"),
				WithSubsystem("scouting"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"node": "7"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names and labels follow the options", func() {
				manager.reportsTotal.Set(12)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
					if f.GetName() == "club_scouting_reports_total" {
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "7")
					}
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "club_scouting_reports_total")
			})
		})

		Convey("When two managers share a registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording autosave metrics", func() {
			before := testutil.ToFloat64(globalManager.autosaveSkipped)
			RecordAutosaveSkipped()
			RecordAutosaveScheduled()
			RecordAutosaveDispatched("debounce")
			RecordAutosaveDispatched("manual")

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.autosaveSkipped), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.autosaveDispatched.WithLabelValues("manual")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording write metrics", func() {
			before := testutil.ToFloat64(globalManager.reportWrites.WithLabelValues("create", "ok"))
			RecordReportWrite("create", "ok")
			RecordReportWrite("update", "error")
			RecordWriteLatency(12)
			RecordReportDeleted()

			Convey("Then they are labelled by op and result", func() {
				So(testutil.ToFloat64(globalManager.reportWrites.WithLabelValues("create", "ok")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.reportWrites.WithLabelValues("update", "error")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When updating connectivity", func() {
			UpdateConnectivity("connecting")
			UpdateConnectivity("ok")

			Convey("Then only the active state is set", func() {
				So(testutil.ToFloat64(globalManager.connectivity.WithLabelValues("ok")), ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.connectivity.WithLabelValues("connecting")), ShouldEqual, 0)
				So(testutil.ToFloat64(globalManager.connectivity.WithLabelValues("error")), ShouldEqual, 0)
			})
		})

		Convey("When recording the remaining helpers", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					UpdateDraftsOpen(2)
					RecordDraftMutation("set_field")
					RecordRepositoryLatency("memory", "create", 0.5)
					RecordSnapshotPublished()
					RecordSnapshotCoalesced()
					RecordSnapshotDelivered()
					RecordSubscriptionError()
					UpdateReportsTotal(4)
					RecordExport("group", "ok")
					RecordExportLatency(800)
					RecordHTTPRequest("/drafts", "GET", "200")
					RecordHTTPRequestDuration("/drafts", "GET", "200", 3)
					RecordErrorByEndpoint("/drafts", "POST", "bad_request")
					UpdateQueueSize(1)
					UpdateQueueCapacity(64)
					UpdateQueueUtilization(0.1)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					UpdateWorkerActiveCount(2)
					RecordWorkerProcessingLatency(5)
					RecordWorkerError()
					UpdateWorkerMessagesPerSecond(1.5)
					RecordErrorByComponent("queue", "full")
					UpdateSystemGoroutineCount(10)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		So(GetRegistry(), ShouldEqual, customRegistry)
		UpdateDraftsOpen(1)
		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)
		So(len(families), ShouldBeGreaterThan, 0)
	})
}

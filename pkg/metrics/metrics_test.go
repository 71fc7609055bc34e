package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it should be created with its own registry", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
				So(manager.Registry(), ShouldNotPointTo, GetRegistry())
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{1, 10}),
				WithMetricsEnabled(true),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordRunStarted()

			Convey("Then metric names and labels follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				found := false
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_runs_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When using the default manager", func() {
			Convey("Then it writes to the global registry", func() {
				So(Default(), ShouldNotBeNil)
				So(Default().Registry(), ShouldPointTo, GetRegistry())
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager with a private registry", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording run metrics", func() {
			m.RecordRunStarted()
			m.RecordRunStarted()
			m.RecordRunFailure("load")
			m.MarkRunSucceeded()
			m.RecordStageDuration("load", 12.5)

			Convey("Then counters reflect the calls", func() {
				So(testutil.ToFloat64(m.runsTotal), ShouldEqual, 2)
				So(testutil.ToFloat64(m.runFailures.WithLabelValues("load")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.lastRunUnix), ShouldBeGreaterThan, 0)
				So(testutil.CollectAndCount(m.stageLatency), ShouldEqual, 1)
			})
		})

		Convey("When recording data metrics", func() {
			m.RecordRowsLoaded("ratings", 10)
			m.RecordRowsLoaded("ratings", 5)
			m.UpdateRowsRetained("year_filter", 7)
			m.UpdateRowsRetained("year_filter", 3)
			m.RecordLookupMisses("population", 1)
			m.RecordLookupMisses("population", 0)
			m.RecordJoinDuplicates("ratings", 2)
			m.RecordJoinDuplicates("crew", 0)
			m.RecordEncodingFallback("iso-8859-1")
			m.UpdateLeaderboardEntries("directors", 4)

			Convey("Then values reflect the calls", func() {
				So(testutil.ToFloat64(m.rowsLoaded.WithLabelValues("ratings")), ShouldEqual, 15)
				So(testutil.ToFloat64(m.rowsRetained.WithLabelValues("year_filter")), ShouldEqual, 3)
				So(testutil.ToFloat64(m.lookupMisses.WithLabelValues("population")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.joinDuplicates.WithLabelValues("ratings")), ShouldEqual, 2)
				So(testutil.CollectAndCount(m.joinDuplicates), ShouldEqual, 1)
				So(testutil.ToFloat64(m.encodingFallbacks.WithLabelValues("iso-8859-1")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.leaderboardEntries.WithLabelValues("directors")), ShouldEqual, 4)
			})
		})

		Convey("When metrics are disabled", func() {
			d := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))
			d.RecordRunStarted()
			d.RecordRowsLoaded("crew", 9)

			Convey("Then nothing is recorded", func() {
				So(testutil.ToFloat64(d.runsTotal), ShouldEqual, 0)
				So(testutil.CollectAndCount(d.rowsLoaded), ShouldEqual, 0)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a manager with recorded metrics", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
		m.RecordRowsLoaded("basics", 3)

		Convey("When writing to a textfile", func() {
			path := filepath.Join(t.TempDir(), "cinerank.prom")
			err := m.WriteTextfile(path)

			Convey("Then the file holds the exposition format", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(strings.Contains(string(data), `cinerank_pipeline_rows_loaded_total{table="basics"} 3`), ShouldBeTrue)
			})
		})

		Convey("When the target directory does not exist", func() {
			err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))

			Convey("Then a wrapped write error is returned", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, ErrWriteFailed.Error())
			})
		})
	})
}

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/AnatoleLucet/microsig"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var m dto.Metric
	require.NoError(t, c.Write(&m))
	require.NotNil(t, m.Counter)
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()

	var m dto.Metric
	require.NoError(t, g.Write(&m))
	require.NotNil(t, m.Gauge)
	return m.GetGauge().GetValue()
}

func histogram(t *testing.T, h prometheus.Histogram) *dto.Histogram {
	t.Helper()

	var m dto.Metric
	require.NoError(t, h.Write(&m))
	require.NotNil(t, m.Histogram)
	return m.GetHistogram()
}

func TestCollector(t *testing.T) {
	t.Run("records flush stats", func(t *testing.T) {
		c := New(WithRegistry(prometheus.NewRegistry()))

		done := c.BeginFlush(3)
		assert.Equal(t, float64(1), gaugeValue(t, c.flushesInProcess))

		done(microsig.FlushStats{
			Pending:  3,
			Ran:      2,
			Errors:   []error{&microsig.EvaluatorError{Value: "boom"}},
			Duration: 5 * time.Millisecond,
		})

		assert.Equal(t, float64(0), gaugeValue(t, c.flushesInProcess))
		assert.Equal(t, float64(1), counterValue(t, c.flushesTotal))
		assert.Equal(t, float64(2), counterValue(t, c.effectRuns))
		assert.Equal(t, float64(1), counterValue(t, c.effectsSkipped))
		assert.Equal(t, float64(1), counterValue(t, c.effectErrors.WithLabelValues("panic")))
		assert.Equal(t, float64(0), counterValue(t, c.effectErrors.WithLabelValues("error")))

		h := histogram(t, c.flushDuration)
		assert.Equal(t, uint64(1), h.GetSampleCount())
		assert.InDelta(t, 0.005, h.GetSampleSum(), 1e-9)

		assert.Equal(t, float64(3), histogram(t, c.flushBatchSize).GetSampleSum())
	})

	t.Run("observes a runtime", func(t *testing.T) {
		c := New(WithRegistry(prometheus.NewRegistry()))
		microsig.Configure(
			microsig.WithObserver(c),
			microsig.WithErrorHandler(func(error) {}),
		)

		count := microsig.NewSignal(0)
		microsig.NewEffect(func() { count.Read() })
		microsig.NewEffect(func() {
			if count.Read() > 0 {
				panic(errors.New("boom"))
			}
		})

		count.Write(1)
		microsig.Tick()
		count.Write(2)
		microsig.Tick()

		assert.Equal(t, float64(2), counterValue(t, c.flushesTotal))
		assert.Equal(t, float64(4), counterValue(t, c.effectRuns))
		assert.Equal(t, float64(2), counterValue(t, c.effectErrors.WithLabelValues("error")))
	})

	t.Run("namespace and const labels", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		c := New(
			WithRegistry(reg),
			WithNamespace("app"),
			WithSubsystem("ui"),
			WithConstLabels(prometheus.Labels{"instance": "a"}),
			WithBuckets([]float64{0.1, 1}),
		)
		c.BeginFlush(1)(microsig.FlushStats{Pending: 1, Ran: 1})

		families, err := reg.Gather()
		require.NoError(t, err)

		names := map[string]*dto.MetricFamily{}
		for _, f := range families {
			names[f.GetName()] = f
		}

		require.Contains(t, names, "app_ui_flushes_total")
		require.Contains(t, names, "app_ui_flush_duration_seconds")

		metric := names["app_ui_flushes_total"].GetMetric()[0]
		require.Len(t, metric.GetLabel(), 1)
		assert.Equal(t, "instance", metric.GetLabel()[0].GetName())
		assert.Equal(t, "a", metric.GetLabel()[0].GetValue())

		buckets := names["app_ui_flush_duration_seconds"].GetMetric()[0].GetHistogram().GetBucket()
		assert.Len(t, buckets, 2)
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		New(WithRegistry(reg))

		assert.Panics(t, func() { New(WithRegistry(reg)) })
	})
}

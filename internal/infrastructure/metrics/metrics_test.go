package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain/autoorder"
	"stockroom/internal/domain/capture"
	"stockroom/internal/infrastructure/metrics"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveCheck(autoorder.OutcomeTooSoon)
	m.ObservePlaced()
	m.ObserveScan(capture.DirectionIncrement, 1)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"autoorder_checks_total",
		"auto_orders_placed_total",
		"capture_scans_total",
		"capture_scan_units_total",
	}, names)
}

func TestObserveCheck_CountsByOutcome(t *testing.T) {
	m := metrics.New(nil)

	m.ObserveCheck(autoorder.OutcomeTooSoon)
	m.ObserveCheck(autoorder.OutcomeTooSoon)
	m.ObserveCheck(autoorder.OutcomeNoPriorOrder)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AutoOrderChecks.WithLabelValues("too_soon")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AutoOrderChecks.WithLabelValues("no_prior_order")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.AutoOrderChecks.WithLabelValues("check_failed")))
}

func TestObserveScan_CountsUpdatesAndUnits(t *testing.T) {
	m := metrics.New(nil)

	m.ObserveScan(capture.DirectionIncrement, 4)
	m.ObserveScan(capture.DirectionIncrement, 1)
	m.ObserveScan(capture.DirectionDecrement, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CaptureScans.WithLabelValues("increment")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.CaptureScanUnits.WithLabelValues("increment")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CaptureScans.WithLabelValues("decrement")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CaptureScanUnits.WithLabelValues("decrement")))
}

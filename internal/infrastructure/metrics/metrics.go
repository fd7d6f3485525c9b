// Package metrics exposes Prometheus counters for auto-order checks and
// capture scans.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"stockroom/internal/domain/autoorder"
	"stockroom/internal/domain/capture"
)

// Metrics implements autoorder.Observer and capture.ScanObserver.
type Metrics struct {
	AutoOrderChecks  *prometheus.CounterVec
	AutoOrdersPlaced prometheus.Counter
	CaptureScans     *prometheus.CounterVec
	CaptureScanUnits *prometheus.CounterVec
}

var (
	_ autoorder.Observer   = (*Metrics)(nil)
	_ capture.ScanObserver = (*Metrics)(nil)
)

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AutoOrderChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoorder_checks_total",
				Help: "Auto-order duplicate checks by outcome",
			},
			[]string{"outcome"},
		),
		AutoOrdersPlaced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "auto_orders_placed_total",
				Help: "Automatic orders placed",
			},
		),
		CaptureScans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capture_scans_total",
				Help: "Applied capture scan updates",
			},
			[]string{"direction"}, // increment|decrement
		),
		CaptureScanUnits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capture_scan_units_total",
				Help: "Units added or removed by capture scans",
			},
			[]string{"direction"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.AutoOrderChecks, m.AutoOrdersPlaced, m.CaptureScans, m.CaptureScanUnits)
	}
	return m
}

func (m *Metrics) ObserveCheck(outcome autoorder.Outcome) {
	m.AutoOrderChecks.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) ObservePlaced() {
	m.AutoOrdersPlaced.Inc()
}

func (m *Metrics) ObserveScan(direction capture.Direction, amount int) {
	m.CaptureScans.WithLabelValues(string(direction)).Inc()
	m.CaptureScanUnits.WithLabelValues(string(direction)).Add(float64(amount))
}

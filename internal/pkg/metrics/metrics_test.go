package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := New("libris", reg)
	second := New("libris", reg)

	first.AuthFailed("invalid_session")
	second.AuthFailed("invalid_session")

	assert.Equal(t, 2.0, testutil.ToFloat64(first.AuthFailures.WithLabelValues("invalid_session")))
}

func TestConnectionGauge(t *testing.T) {
	m := New("libris", prometheus.NewRegistry())

	m.ConnectionOpened("user_clerk", true)
	m.ConnectionOpened("user_clerk", false)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpenConnections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoleConnections.WithLabelValues("user_clerk", "error")))

	m.ConnectionClosed()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OpenConnections))
}

func TestObserveProcedure(t *testing.T) {
	m := New("libris", prometheus.NewRegistry())
	m.ObserveProcedure("sp_checkout_item", "ok", 15*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProcedureCalls.WithLabelValues("sp_checkout_item", "ok")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.AuthFailed("missing_token")
	m.ObserveProcedure("sp_x", "ok", time.Millisecond)
	m.ConnectionOpened("p", true)
	m.ConnectionClosed()
}

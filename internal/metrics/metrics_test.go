package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveMutation("create", 10*time.Millisecond)
	m.ObserveMutation("update", 5*time.Millisecond)
	m.ObserveMutation("update", 5*time.Millisecond)
	m.ObserveDeletion()
	m.ObserveResolution(true)
	m.ObserveResolution(false)
	m.ObserveStorageError("unavailable")
	m.ObserveBackup(true)
	m.ObserveLogin(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("create")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mutations.WithLabelValues("update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deletions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageErrors.WithLabelValues("unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Backups.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("failure")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveMutation("create", time.Second)
		m.ObserveDeletion()
		m.ObserveResolution(true)
		m.ObserveStorageError("internal")
		m.ObserveBackup(false)
		m.ObserveLogin(true)
	})
}

func TestMetrics_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(reg)
	var second *Metrics
	assert.NotPanics(t, func() { second = New(reg) })

	second.ObserveDeletion()
	assert.Equal(t, 1.0, testutil.ToFloat64(first.Deletions), "second instance shares registered collectors")
}

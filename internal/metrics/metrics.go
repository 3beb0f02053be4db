// Package metrics prometheus collectors for content operations
// Package metrics 内容操作的 prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "site_text"

// Metrics 指标集合，nil 接收者上的方法为空操作
type Metrics struct {
	Mutations        *prometheus.CounterVec
	MutationDuration prometheus.Histogram
	Deletions        prometheus.Counter
	Resolutions      *prometheus.CounterVec
	StorageErrors    *prometheus.CounterVec
	Backups          *prometheus.CounterVec
	Logins           *prometheus.CounterVec
	RateLimited      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg (prometheus.DefaultRegisterer when nil)
// New 创建指标并注册到 reg（为 nil 时使用 prometheus.DefaultRegisterer）
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Text block versions written, by change type.",
		}, []string{"change_type"}),
		MutationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mutation_duration_seconds",
			Help:      "Time spent writing a text block version.",
			Buckets:   prometheus.DefBuckets,
		}),
		Deletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletions_total",
			Help:      "Text blocks deleted.",
		}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Public content lookups, by result.",
		}, []string{"result"}),
		StorageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Storage failures, by kind.",
		}, []string{"kind"}),
		Backups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Backup runs, by result.",
		}, []string{"result"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Admin sign-in attempts, by result.",
		}, []string{"result"}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter, by route.",
		}, []string{"route"}),
	}

	m.Mutations = register(reg, m.Mutations)
	m.MutationDuration = register(reg, m.MutationDuration)
	m.Deletions = register(reg, m.Deletions)
	m.Resolutions = register(reg, m.Resolutions)
	m.StorageErrors = register(reg, m.StorageErrors)
	m.Backups = register(reg, m.Backups)
	m.Logins = register(reg, m.Logins)
	m.RateLimited = register(reg, m.RateLimited)
	return m
}

// register returns the collector already registered under the same name, if any
// register 已存在同名指标时返回已注册的实例
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) ObserveMutation(changeType string, d time.Duration) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(changeType).Inc()
	m.MutationDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveDeletion() {
	if m == nil {
		return
	}
	m.Deletions.Inc()
}

// ObserveResolution hit=true when the block exists
func (m *Metrics) ObserveResolution(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.Resolutions.WithLabelValues(result).Inc()
}

// ObserveStorageError kind is unavailable or internal
func (m *Metrics) ObserveStorageError(kind string) {
	if m == nil {
		return
	}
	m.StorageErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveBackup(ok bool) {
	if m == nil {
		return
	}
	m.Backups.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) ObserveLogin(ok bool) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) ObserveRateLimited(route string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(route).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

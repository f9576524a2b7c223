package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "listsync"

// Metrics 同步过程的指标集合，使用独立的注册表
type Metrics struct {
	reg *prometheus.Registry

	runs        *prometheus.CounterVec
	added       *prometheus.CounterVec
	removed     *prometheus.CounterVec
	remote      *prometheus.GaugeVec
	entries     *prometheus.GaugeVec
	lastSuccess *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
	reloads     *prometheus.CounterVec
}

// New 创建并注册全部指标
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Total list sync runs by result",
			},
			[]string{"list", "result"},
		),
		added: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entries_added_total",
				Help:      "Total entries added to the DNS filter lists",
			},
			[]string{"list"},
		),
		removed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entries_removed_total",
				Help:      "Total owned entries removed from the DNS filter lists",
			},
			[]string{"list"},
		),
		remote: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "remote_entries",
				Help:      "Usable entries in the last fetched remote list",
			},
			[]string{"list"},
		),
		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "local_entries",
				Help:      "Entries present in the local store after the last sync",
			},
			[]string{"list"},
		),
		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful sync",
			},
			[]string{"list"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_duration_seconds",
				Help:      "List sync duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"list"},
		),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reloads_total",
				Help:      "DNS reload attempts by result",
			},
			[]string{"result"},
		),
	}

	m.reg.MustRegister(m.runs, m.added, m.removed, m.remote, m.entries, m.lastSuccess, m.duration, m.reloads)
	return m
}

// WithRuntime 额外注册进程与 Go 运行时指标，常驻服务使用
func (m *Metrics) WithRuntime() *Metrics {
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSync 记录一次成功同步
func (m *Metrics) ObserveSync(list string, remote, added, removed, entries int, took time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(list, "success").Inc()
	m.added.WithLabelValues(list).Add(float64(added))
	m.removed.WithLabelValues(list).Add(float64(removed))
	m.remote.WithLabelValues(list).Set(float64(remote))
	m.entries.WithLabelValues(list).Set(float64(entries))
	m.lastSuccess.WithLabelValues(list).SetToCurrentTime()
	m.duration.WithLabelValues(list).Observe(took.Seconds())
}

// ObserveFailure 记录一次失败同步，reason 为错误类别
func (m *Metrics) ObserveFailure(list, reason string, took time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(list, reason).Inc()
	m.duration.WithLabelValues(list).Observe(took.Seconds())
}

// ObserveReload 记录重载结果
func (m *Metrics) ObserveReload(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.reloads.WithLabelValues(result).Inc()
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// WriteTextfile 以 node_exporter textfile 格式写出指标
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}

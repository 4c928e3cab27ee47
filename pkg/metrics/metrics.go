// Package metrics 导出课表导入、冲突检测与 HTTP 请求的 Prometheus 指标。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "optimus"

// Recorder 指标记录器；nil Recorder 的所有方法均为空操作
type Recorder struct {
	ingestRows  *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
	records     prometheus.Gauge
	httpLatency *prometheus.HistogramVec
}

// NewRecorder 在 reg 上注册指标；reg 为 nil 时使用默认注册器，已注册时复用已有的采集器
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	ingestRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_rows_total",
		Help:      "Rows read from uploaded timetable files, by outcome",
	}, []string{"outcome"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conflicts_detected_total",
		Help:      "Conflicts reported by the detector, by kind",
	}, []string{"kind"})
	records := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "course_records",
		Help:      "Course records currently loaded",
	})
	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	var err error
	if ingestRows, err = register(reg, ingestRows); err != nil {
		return nil, err
	}
	if conflicts, err = register(reg, conflicts); err != nil {
		return nil, err
	}
	if records, err = register(reg, records); err != nil {
		return nil, err
	}
	if httpLatency, err = register(reg, httpLatency); err != nil {
		return nil, err
	}

	return &Recorder{
		ingestRows:  ingestRows,
		conflicts:   conflicts,
		records:     records,
		httpLatency: httpLatency,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// IngestRows 记录一次导入的保留/丢弃行数
func (r *Recorder) IngestRows(kept, dropped int) {
	if r == nil {
		return
	}
	r.ingestRows.WithLabelValues("kept").Add(float64(kept))
	r.ingestRows.WithLabelValues("dropped").Add(float64(dropped))
}

// ConflictsDetected 按类型累加冲突数
func (r *Recorder) ConflictsDetected(kind string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.conflicts.WithLabelValues(kind).Add(float64(n))
}

// SetRecords 设置当前记录总数
func (r *Recorder) SetRecords(n int64) {
	if r == nil {
		return
	}
	r.records.Set(float64(n))
}

// ObserveHTTP 记录一次 HTTP 请求耗时
func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpLatency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler 暴露 g 中的指标；g 为 nil 时使用默认采集器
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_IngestAndConflicts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("创建 Recorder 失败: %v", err)
	}

	rec.IngestRows(10, 2)
	rec.IngestRows(5, 0)
	rec.ConflictsDetected("INSTRUCTOR", 3)
	rec.ConflictsDetected("ROOM", 0)

	expected := `
# HELP optimus_ingest_rows_total Rows read from uploaded timetable files, by outcome
# TYPE optimus_ingest_rows_total counter
optimus_ingest_rows_total{outcome="dropped"} 2
optimus_ingest_rows_total{outcome="kept"} 15
`
	if err := testutil.CollectAndCompare(rec.ingestRows, strings.NewReader(expected)); err != nil {
		t.Errorf("导入指标不符: %v", err)
	}

	if v := testutil.ToFloat64(rec.conflicts.WithLabelValues("INSTRUCTOR")); v != 3 {
		t.Errorf("INSTRUCTOR 冲突数期望 3，实际 %v", v)
	}
	if c := testutil.CollectAndCount(rec.conflicts); c != 1 {
		t.Errorf("n=0 时不应创建 ROOM 序列，实际序列数 %d", c)
	}
}

func TestRecorder_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("创建 Recorder 失败: %v", err)
	}
	second, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("重复注册应复用已有采集器: %v", err)
	}

	first.SetRecords(7)
	if v := testutil.ToFloat64(second.records); v != 7 {
		t.Errorf("两个 Recorder 应共享同一 Gauge，实际 %v", v)
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var rec *Recorder
	rec.IngestRows(1, 1)
	rec.ConflictsDetected("ROOM", 1)
	rec.SetRecords(1)
	rec.ObserveHTTP("GET", "/health", 200, time.Millisecond)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("创建 Recorder 失败: %v", err)
	}
	rec.ObserveHTTP("GET", "/api/v1/conflicts", 200, 20*time.Millisecond)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `optimus_http_request_duration_seconds_count{method="GET",route="/api/v1/conflicts",status="200"} 1`) {
		t.Errorf("输出中缺少请求耗时直方图:\n%s", w.Body.String())
	}
}

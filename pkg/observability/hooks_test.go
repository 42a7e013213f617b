package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnStageStart(ctx, "run", "layout")
	p.OnStageComplete(ctx, "run", "layout", time.Second, nil)
	p.OnRunComplete(ctx, "run", 3, 2, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "layout", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "localhost:8000", "/graph_data")
	h.OnResponse(ctx, "GET", "localhost:8000", "/graph_data", 200, time.Second)
	h.OnError(ctx, "GET", "localhost:8000", "/graph_data", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	m := NewMetrics(nil)
	SetPipelineHooks(m)
	SetCacheHooks(m)
	SetHTTPHooks(m)
	if Pipeline() != PipelineHooks(m) || Cache() != CacheHooks(m) || HTTP() != HTTPHooks(m) {
		t.Error("Set*Hooks should install custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	m := NewMetrics(nil)
	SetPipelineHooks(m)
	SetPipelineHooks(nil)
	if Pipeline() != PipelineHooks(m) {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestMetricsRecord(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics(prometheus.NewRegistry())

	m.OnStageComplete(ctx, "r1", "layout", 10*time.Millisecond, nil)
	m.OnStageComplete(ctx, "r1", "fetch", time.Millisecond, errors.New("boom"))
	m.OnRunComplete(ctx, "r1", 0, 0, time.Second, errors.New("boom"))
	m.OnRunComplete(ctx, "r2", 12, 4, time.Second, nil)
	m.OnCacheHit(ctx, "layout")
	m.OnCacheMiss(ctx, "layout")
	m.OnCacheSet(ctx, "layout", 512)
	m.OnResponse(ctx, "GET", "h", "/graph_data", 200, time.Millisecond)
	m.OnError(ctx, "GET", "h", "/graph_data", errors.New("refused"))

	if got := testutil.ToFloat64(m.stageErrors.WithLabelValues("fetch")); got != 1 {
		t.Errorf("fetch errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.stageErrors.WithLabelValues("layout")); got != 0 {
		t.Errorf("layout errors = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("error")); got != 1 {
		t.Errorf("error runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheEvents.WithLabelValues("layout", "hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheBytes.WithLabelValues("layout")); got != 512 {
		t.Errorf("cache bytes = %v, want 512", got)
	}
	if got := testutil.ToFloat64(m.httpErrors.WithLabelValues("GET", "h")); got != 1 {
		t.Errorf("http errors = %v, want 1", got)
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(nil)
	m.OnRunComplete(context.Background(), "r", 1, 0, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `topovis_pipeline_runs_total{status="ok"} 1`) {
		t.Errorf("metrics output missing run counter:\n%s", body)
	}
}

package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/graph"
	"github.com/matzehuels/topovis/pkg/observability"
	"github.com/matzehuels/topovis/pkg/pipeline"
	"github.com/matzehuels/topovis/pkg/source"
)

type cannedEngine struct {
	out string
	err error
}

func (e cannedEngine) Run(context.Context, []byte) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []byte(e.out), nil
}

const flatJSON = `{
  "bb": "0,0,650,266",
  "objects": [
    {"name": "n0", "pos": "133,133", "width": "3.4722", "height": "3.4722", "label": "A"},
    {"name": "n1", "pos": "517,133", "width": "3.4722", "height": "3.4722", "label": "B"}
  ],
  "edges": [
    {"tail": 0, "head": 1, "id": "e0", "label": "A→B", "lp": "325,141.5",
     "pos": "e,391.74,133 258.19,133 297.71,133 340.99,133 381.6,133"}
  ]
}`

func flatDoc() graph.Document {
	return graph.Document{
		Nodes: []graph.NodeSpec{{ID: "a", Label: "A", Color: "#fff"}, {ID: "b", Label: "B", Color: "#000"}},
		Edges: []graph.EdgeSpec{{Source: "a", Target: "b", UID: "e1", Label: "A→B", Color: "#f00"}},
	}
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newTestServer(t *testing.T, src source.Source, engine cannedEngine, metrics *observability.Metrics) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(src, engine, quietLogger())
	s := New(runner, Options{
		Pipeline: pipeline.DefaultOptions(),
		Metrics:  metrics,
		Logger:   quietLogger(),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestPages(t *testing.T) {
	ts := newTestServer(t, source.NewStatic("flat", flatDoc()), cannedEngine{out: flatJSON}, nil)

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/", "text/html", "<svg"},
		{"/graph.svg", "image/svg+xml", `class="edgePath"`},
		{"/layout.json", "application/json", `"nodes"`},
		{"/render/svg", "image/svg+xml", "A→B"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), tt.contentType)
			assert.NotEmpty(t, resp.Header.Get("X-Topovis-Run"))
			assert.Contains(t, body, tt.contains)
		})
	}
}

func TestGraphData(t *testing.T) {
	ts := newTestServer(t, source.NewStatic("flat", flatDoc()), cannedEngine{out: flatJSON}, nil)

	resp, body := get(t, ts.URL+"/graph_data")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	doc, err := graph.Unmarshal([]byte(body), graph.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, flatDoc(), doc)
}

type failingSource struct{}

func (failingSource) Fetch(context.Context) (graph.Document, error) {
	return graph.Document{}, errors.New(errors.ErrCodeFetch, "status 503")
}

func (failingSource) Raw(context.Context) ([]byte, error) {
	return nil, errors.New(errors.ErrCodeFetch, "status 503")
}

func (failingSource) String() string { return "http://upstream" }

func TestErrorStatus(t *testing.T) {
	dangling := graph.Document{
		Nodes: []graph.NodeSpec{{ID: "a"}},
		Edges: []graph.EdgeSpec{{Source: "a", Target: "ghost"}},
	}

	tests := []struct {
		name   string
		src    source.Source
		engine cannedEngine
		path   string
		status int
		code   errors.Code
	}{
		{"validation", source.NewStatic("d", dangling), cannedEngine{out: flatJSON}, "/graph.svg", http.StatusUnprocessableEntity, errors.ErrCodeDanglingEdgeReference},
		{"fetch", failingSource{}, cannedEngine{out: flatJSON}, "/", http.StatusBadGateway, errors.ErrCodeFetch},
		{"fetch raw", failingSource{}, cannedEngine{out: flatJSON}, "/graph_data", http.StatusBadGateway, errors.ErrCodeFetch},
		{"layout", source.NewStatic("f", flatDoc()), cannedEngine{err: errors.New(errors.ErrCodeInternal, "boom")}, "/layout.json", http.StatusInternalServerError, errors.ErrCodeUnsatisfiableConstraints},
		{"format", source.NewStatic("f", flatDoc()), cannedEngine{out: flatJSON}, "/render/gif", http.StatusBadRequest, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.src, tt.engine, nil)
			resp, body := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)

			var eb errorBody
			require.NoError(t, json.Unmarshal([]byte(body), &eb))
			assert.Equal(t, string(tt.code), eb.Code)
			assert.NotEmpty(t, eb.Message)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor(io.EOF))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(context.Canceled))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(errors.New(errors.ErrCodeMultipleParents, "x")))
}

func TestHealthAndMetrics(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	observability.SetPipelineHooks(metrics)
	defer observability.Reset()

	ts := newTestServer(t, source.NewStatic("flat", flatDoc()), cannedEngine{out: flatJSON}, metrics)

	resp, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)

	resp, _ = get(t, ts.URL+"/graph.svg")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `topovis_pipeline_runs_total{status="ok"} 1`)
}

func TestMetricsRouteAbsentWithoutMetrics(t *testing.T) {
	ts := newTestServer(t, source.NewStatic("flat", flatDoc()), cannedEngine{out: flatJSON}, nil)
	resp, _ := get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeShutsDown(t *testing.T) {
	runner := pipeline.NewRunner(source.NewStatic("flat", flatDoc()), cannedEngine{out: flatJSON}, quietLogger())
	s := New(runner, Options{Logger: quietLogger()})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, body := get(t, "http://"+ln.Addr().String()+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(body, "ok"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestFindAvailablePort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	taken := ln.Addr().(*net.TCPAddr).Port

	port, err := FindAvailablePort("127.0.0.1", taken, 20)
	require.NoError(t, err)
	assert.Greater(t, port, taken)

	_, err = FindAvailablePort("127.0.0.1", taken, 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), strconv.Itoa(taken))
}

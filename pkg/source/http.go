package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/graph"
	"github.com/matzehuels/topovis/pkg/observability"
)

// DataPath is the endpoint that serves graph descriptions.
const DataPath = "/graph_data"

// maxBodySize caps a description body.
const maxBodySize = 64 << 20

// HTTP fetches descriptions from GET <base>/graph_data.
type HTTP struct {
	base   string
	client *http.Client
}

// NewHTTP returns a source for the given base URL. A base that already ends
// in /graph_data is used as is.
func NewHTTP(base string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewHTTPWithClient(base, &http.Client{Timeout: timeout})
}

// NewHTTPWithClient uses a caller-provided client.
func NewHTTPWithClient(base string, client *http.Client) *HTTP {
	base = strings.TrimRight(base, "/")
	if !strings.HasSuffix(base, DataPath) {
		base += DataPath
	}
	return &HTTP{base: base, client: client}
}

func (s *HTTP) String() string { return s.base }

func (s *HTTP) Fetch(ctx context.Context) (graph.Document, error) {
	data, err := s.Raw(ctx)
	if err != nil {
		return graph.Document{}, err
	}
	return decode(s, data, graph.FormatJSON)
}

func (s *HTTP) Raw(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "build request for %s", s.base)
	}
	req.Header.Set("Accept", "application/json")

	host, path := hostPath(s.base)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := s.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "GET %s", s.base)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeFetch, "GET %s: status %d", s.base, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "read %s", s.base)
	}
	if len(data) > maxBodySize {
		return nil, errors.New(errors.ErrCodeFetch, "GET %s: body exceeds %s", s.base, sizeString(maxBodySize))
	}
	return data, nil
}

func hostPath(raw string) (string, string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", raw
	}
	return u.Host, u.Path
}

func sizeString(n int) string {
	return fmt.Sprintf("%d MiB", n>>20)
}

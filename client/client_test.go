package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cofoundr/artifacts"
	"cofoundr/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	endpoint string
	status   int
	err      error
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (o *recordingObserver) ObserveRequest(endpoint string, statusCode int, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{endpoint: endpoint, status: statusCode, err: err})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithArtifacts(artifacts.NewLocalStore(t.TempDir()))}, opts...)
	return New(srv.URL, opts...)
}

func TestNewDefaults(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, 60*time.Second, c.Timeout())

	assert.Equal(t, "http://example.test:9000", New("http://example.test:9000/").BaseURL())
}

func TestNewIgnoresEnvironment(t *testing.T) {
	t.Setenv("COFOUNDR_BASE_URL", "http://env.test:9000")
	assert.Equal(t, DefaultBaseURL, New("").BaseURL(), "configuration is resolved by the config package")
}

func TestAnalyzeSendsIdea(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathAnalyze, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"business_analysis":"solid","validation_score":8.5,"extra_field":"kept"}`)
	})

	res, err := c.Analyze(context.Background(), "AI for dentists")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"idea": "AI for dentists"}, got)
	assert.Equal(t, "solid", res.BusinessAnalysis)
	assert.Equal(t, "8.5", res.ValidationScore.String())
	assert.Equal(t, "kept", res.Extra["extra_field"])
}

func TestErrorMessageFromDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"detail":"Idea too short"}`)
	})

	_, err := c.Analyze(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, "Idea too short", err.Error())

	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusUnprocessableEntity, ce.StatusCode)
	assert.Equal(t, PathAnalyze, ce.Op)
	assert.False(t, ce.Timeout)
}

func TestErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "message member", status: http.StatusBadRequest, body: `{"message":"bad idea"}`, want: "bad idea"},
		{name: "detail wins over message", status: http.StatusBadRequest, body: `{"detail":"first","message":"second"}`, want: "first"},
		{name: "empty detail falls through", status: http.StatusBadRequest, body: `{"detail":"","message":"second"}`, want: "second"},
		{name: "structured detail", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"field required"}]}`, want: `[{"msg":"field required"}]`},
		{name: "non-json body", status: http.StatusInternalServerError, body: "<html>oops</html>", want: "HTTP 500: Internal Server Error"},
		{name: "json without message", status: http.StatusNotFound, body: `{"error":"nope"}`, want: "HTTP 404: Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.Simulate(context.Background(), &types.AnalyzeResult{})
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	start := time.Now()
	_, err := c.LinkedIn(context.Background(), &types.AnalyzeResult{})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, IsTimeout(err))
	assert.Equal(t, "request timed out after 0.05s", err.Error())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestDefaultTimeoutMessage(t *testing.T) {
	c := New("http://127.0.0.1:1")
	err := c.timeoutError(PathAnalyze, context.DeadlineExceeded)
	assert.Equal(t, "request timed out after 60s", err.Error())
}

func TestCallerCancellationIsNotTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Autopost(ctx, "hello")
	require.Error(t, err)
	assert.False(t, IsTimeout(err))
}

func TestNetworkFailureKeepsTransportMessage(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, WithArtifacts(artifacts.NewLocalStore(t.TempDir())))
	_, err := c.Metrics(context.Background())
	require.Error(t, err)

	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Zero(t, ce.StatusCode)
	assert.Contains(t, err.Error(), "connect")
}

func TestObserverSeesEveryRequest(t *testing.T) {
	obs := &recordingObserver{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == PathAutopost {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"agent_executions":3}`)
	}, WithObserver(obs))

	_, err := c.Metrics(context.Background())
	require.NoError(t, err)
	_, err = c.Autopost(context.Background(), "post")
	require.Error(t, err)

	require.Len(t, obs.seen, 2)
	assert.Equal(t, observation{endpoint: PathMetrics, status: http.StatusOK}, obs.seen[0])
	assert.Equal(t, PathAutopost, obs.seen[1].endpoint)
	assert.Equal(t, http.StatusBadGateway, obs.seen[1].status)
	assert.Error(t, obs.seen[1].err)
}

func TestMetricsUsesGet(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, PathMetrics, r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"agent_executions":12,"system_performance":"98%","request_counts":{"analyze":4},"uptime":"3h"}`)
	})

	m, err := c.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12", m.AgentExecutions.String())
	assert.Equal(t, "98%", m.SystemPerformance.String())
	assert.Equal(t, `{"analyze":4}`, m.RequestCounts.String())
	assert.Equal(t, "3h", m.Extra["uptime"])
	assert.Equal(t, []string{"uptime"}, m.ExtraKeys())
}

func TestAutopostSendsPost(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Launching today!", body["post"])
		_, _ = io.WriteString(w, `{"success":true,"message":"posted"}`)
	})

	res, err := c.Autopost(context.Background(), "Launching today!")
	require.NoError(t, err)
	require.NotNil(t, res.Success)
	assert.True(t, *res.Success)
	assert.Equal(t, "posted", res.Message)
}

func TestLinkedInTextFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "post", body: `{"post":"from post","content":"from content"}`, want: "from post"},
		{name: "content", body: `{"content":"from content"}`, want: "from content"},
		{name: "whole payload", body: `{"text":"other"}`, want: `{"text":"other"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})
			res, err := c.LinkedIn(context.Background(), &types.AnalyzeResult{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Text())
		})
	}
}

func TestInvalidJSONResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json")
	})

	_, err := c.Analyze(context.Background(), "idea")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to decode response:"))
}

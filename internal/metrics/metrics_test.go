package metrics

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/upbit-ticker/internal/connection"
	"github.com/rickgao/upbit-ticker/internal/model"
)

// scrape renders the registry in the text exposition format.
func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	s := NewServer(0, "/metrics", m.Registry, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_Observers(t *testing.T) {
	m := New()

	m.ObserveFrame(connection.Frame{Type: connection.FrameBinary, Data: []byte("12345")})
	m.ObserveFrame(connection.Frame{Type: connection.FrameBinary, Data: []byte("123")})
	m.ObserveFrame(connection.Frame{Type: connection.FrameText, Data: []byte("{}")})

	m.RecordRouted(model.TickerRecord{Code: "KRW-BTC", TradePrice: 100})
	m.RecordRouted(model.TickerRecord{Code: "KRW-BTC", TradePrice: 101.5})
	m.FrameRejected("parse_error")
	m.ObserveSession(connection.Result{State: connection.StateClosed, Frames: 3})

	out := scrape(t, m)
	for _, want := range []string{
		`tickerboard_ws_frames_total{type="binary"} 2`,
		`tickerboard_ws_frames_total{type="text"} 1`,
		`tickerboard_ws_bytes_total 10`,
		`tickerboard_ticker_records_total{code="KRW-BTC"} 2`,
		`tickerboard_last_trade_price{code="KRW-BTC"} 101.5`,
		`tickerboard_frames_rejected_total{reason="parse_error"} 1`,
		`tickerboard_ws_sessions_total{state="closed"} 1`,
		`tickerboard_ws_session_frames_count 1`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestServer_Metrics(t *testing.T) {
	m := New()
	m.FrameRejected("not_binary")

	s := NewServer(0, "/metrics", m.Registry, nil)
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `tickerboard_frames_rejected_total{reason="not_binary"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func getHealth(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestServer_Health(t *testing.T) {
	s := NewServer(0, "", New().Registry, nil)
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	code, body := getHealth(t, server.URL)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusHealthy, body["status"])

	s.AddComponent("connection_manager", func() ComponentHealth {
		return ComponentHealth{Status: StatusDegraded, Details: map[string]int{"active": 0}}
	})
	code, body = getHealth(t, server.URL)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusDegraded, body["status"])

	components := body["components"].(map[string]any)
	manager := components["connection_manager"].(map[string]any)
	assert.Equal(t, StatusDegraded, manager["status"])

	s.AddComponent("feed", func() ComponentHealth {
		return ComponentHealth{Status: StatusUnhealthy}
	})
	code, body = getHealth(t, server.URL)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusUnhealthy, body["status"])
}

func TestServer_RunAndShutdown(t *testing.T) {
	s := NewServer(0, "/metrics", New().Registry, nil)
	require.NoError(t, s.Listen())
	_, port, err := net.SplitHostPort(s.Addr())
	require.NoError(t, err)
	assert.NotEqual(t, "0", port, "bound address should have a real port")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + port + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

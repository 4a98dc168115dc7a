package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/versionboard/internal/store"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var generatedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seededStore() *store.MemoryStore {
	st := store.NewMemoryStore()
	st.Update(store.Report{
		Title:            "Amazon Managed Services versions",
		GeneratedAt:      generatedAt,
		GeneratorVersion: "1.0.0",
		Rows: []store.Row{
			{Service: "Amazon MQ for RabbitMQ", Version: "3.11.20", DocURL: "https://docs/rabbitmq"},
		},
		Page: []byte("<html><body>versions</body></html>"),
	})
	return st
}

func newTestServer(st store.Store) (*Server, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewServer(st, 0, reg, testLogger()), reg
}

func TestHandlePage(t *testing.T) {
	srv, _ := newTestServer(seededStore())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<html><body>versions</body></html>", rec.Body.String())
}

func TestHandlePage_NotGeneratedYet(t *testing.T) {
	srv, _ := newTestServer(store.NewMemoryStore())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestHandleRows(t *testing.T) {
	srv, _ := newTestServer(seededStore())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rows", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Title string      `json:"title"`
		Rows  []store.Row `json:"rows"`
		Page  string      `json:"page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Amazon Managed Services versions", body.Title)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "3.11.20", body.Rows[0].Version)
	assert.Empty(t, body.Page, "page markup is not part of the JSON")
}

func TestHandleStatus(t *testing.T) {
	st := seededStore()
	st.RecordFailure(generatedAt.Add(time.Hour), errors.New("versions list empty"))
	srv, _ := newTestServer(st)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status store.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.HasReport)
	assert.Equal(t, "versions list empty", status.LastError)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(seededStore())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rows", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	srv, reg := newTestServer(seededStore())
	metrics := NewMetrics(reg)
	metrics.ObserveSuccess(2*time.Second, 42, 1)
	metrics.ObserveFailure(time.Second)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `versionboard_generations_total{result="success"} 1`)
	assert.Contains(t, body, `versionboard_generations_total{result="failure"} 1`)
	assert.Contains(t, body, "versionboard_report_rows 42")
	assert.Contains(t, body, "versionboard_generation_duration_seconds_count 2")
}

func TestHandleSSE_InitialState(t *testing.T) {
	srv, _ := newTestServer(seededStore())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.handleSSE(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "data: "), "got %q", body)

	var event store.Event
	line := strings.TrimSpace(strings.TrimPrefix(body, "data: "))
	require.NoError(t, json.Unmarshal([]byte(line), &event))
	assert.Equal(t, store.EventReport, event.Type)
	assert.Equal(t, 1, event.Rows)
}

func TestHandleSSE_StreamsUpdates(t *testing.T) {
	st := store.NewMemoryStore()
	srv, _ := newTestServer(st)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/sse", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	// keep publishing until the handler's subscription is in place
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if text := scanner.Text(); strings.HasPrefix(text, "data: ") {
				lines <- strings.TrimPrefix(text, "data: ")
			}
		}
		close(lines)
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "stream closed early")
			var event store.Event
			require.NoError(t, json.Unmarshal([]byte(line), &event))
			assert.Equal(t, store.EventFailed, event.Type)
			assert.Equal(t, "throttled", event.Error)
			return
		case <-ticker.C:
			st.RecordFailure(generatedAt, errors.New("throttled"))
		case <-ctx.Done():
			t.Fatal("no event received")
		}
	}
}

func TestStart_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	srv := NewServer(store.NewMemoryStore(), 0, nil, testLogger())
	require.NoError(t, srv.Start(ctx))

	cancel()
}

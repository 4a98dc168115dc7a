package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/http/httptrace"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	resp := NewClient(5 * time.Second).Get(context.Background(), server.URL)

	require.NoError(t, resp.Error)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>ok</html>", string(resp.Body))
}

func TestClient_ConnectionReuse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)

	var reusedCount int
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Reused {
				reusedCount++
			}
		},
	}

	const numRequests = 5
	for i := 0; i < numRequests; i++ {
		ctx := httptrace.WithClientTrace(context.Background(), trace)
		resp := client.Get(ctx, server.URL)
		require.NoError(t, resp.Error, "request %d", i)
	}

	assert.GreaterOrEqual(t, reusedCount, numRequests-2)
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	resp := NewClient(50 * time.Millisecond).Get(context.Background(), server.URL)

	require.Error(t, resp.Error)
	assert.Zero(t, resp.StatusCode)
}

func TestClient_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", MaxBodySize+10)))
	}))
	defer server.Close()

	resp := NewClient(5 * time.Second).Get(context.Background(), server.URL)

	assert.ErrorIs(t, resp.Error, ErrBodyTooLarge)
}

func TestClient_ProbeDoesNotFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
			return
		}
		_, _ = w.Write([]byte("new"))
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)

	probed := client.Probe(context.Background(), server.URL+"/old")
	require.NoError(t, probed.Error)
	assert.Equal(t, http.StatusMovedPermanently, probed.StatusCode)
	assert.Equal(t, "/new", probed.Location)

	followed := client.Get(context.Background(), server.URL+"/old")
	require.NoError(t, followed.Error)
	assert.Equal(t, http.StatusOK, followed.StatusCode)
	assert.Equal(t, "new", string(followed.Body))
}

func TestClient_Close(t *testing.T) {
	client := NewClient(0)
	assert.Equal(t, DefaultTimeout, client.Timeout())

	client.Close()
	client.Close()

	var nilClient *Client
	nilClient.Close()
}

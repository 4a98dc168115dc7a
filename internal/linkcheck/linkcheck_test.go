package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/versionboard/internal/fetch"
)

func TestChecker_Check(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			hits.Add(1)
			_, _ = w.Write([]byte("ok"))
		case "/moved":
			http.Redirect(w, r, "/ok", http.StatusFound)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	index := map[string]string{
		"aurora":       server.URL + "/ok",
		"aurora-mysql": server.URL + "/ok",
		"redis":        server.URL + "/moved",
		"kafka":        server.URL + "/missing",
		"unknown":      "#",
	}

	checker := NewChecker(fetch.NewClient(5*time.Second), 2, nil)
	results, err := checker.Check(context.Background(), index)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, int32(1), hits.Load(), "shared URLs are probed once")

	byURL := make(map[string]Result)
	for _, r := range results {
		byURL[r.URL] = r
	}

	ok := byURL[server.URL+"/ok"]
	assert.True(t, ok.OK())
	assert.Equal(t, []string{"aurora", "aurora-mysql"}, ok.Keys)

	moved := byURL[server.URL+"/moved"]
	assert.False(t, moved.OK())
	assert.Equal(t, http.StatusFound, moved.StatusCode)
	assert.Equal(t, "/ok", moved.Location)

	failed := Failed(results)
	assert.Len(t, failed, 2)
}

func TestResult_String(t *testing.T) {
	r := Result{URL: "https://x", StatusCode: 301, Location: "https://y"}
	assert.Equal(t, "https://x: status 301 (-> https://y)", r.String())
}

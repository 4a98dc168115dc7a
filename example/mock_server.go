package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// StartMockDocsServer serves a fake documentation page and a fake engine
// versions API. A new Kubernetes release appears every minute so each
// regeneration of the board has something new to show.
// Call this in a goroutine before creating the aggregator.
func StartMockDocsServer(addr string) {
	var (
		mu       sync.Mutex
		releases = []string{"1.27", "1.28"}
		next     = 29
		nextAt   = time.Now().Add(time.Minute)
	)

	mux := http.NewServeMux()

	mux.HandleFunc("/eks/kubernetes-versions.html", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		if time.Now().After(nextAt) {
			v := fmt.Sprintf("1.%d", next)
			releases = append(releases, v)
			next++
			nextAt = time.Now().Add(time.Minute)
			slog.Info("new release published", "version", v)
		}
		current := append([]string(nil), releases...)
		mu.Unlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><div class="itemizedlist"><ul class="itemizedlist" type="disc">`)
		for i := len(current) - 1; i >= 0; i-- {
			fmt.Fprintf(w, `<li class="listitem"><p><code class="code">%s</code></p></li>`, current[i])
		}
		fmt.Fprint(w, `</ul></div></body></html>`)
	})

	mux.HandleFunc("/api/cache-engine-versions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		doc := map[string]any{
			"CacheEngineVersions": []map[string]string{
				{"Engine": "redis", "EngineVersion": "6.2"},
				{"Engine": "redis", "EngineVersion": "7.1"},
				{"Engine": "memcached", "EngineVersion": "1.6.22"},
			},
		}
		if err := json.NewEncoder(w).Encode(doc); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock server error", "error", err)
	}
}

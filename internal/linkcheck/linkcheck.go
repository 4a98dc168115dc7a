// Package linkcheck verifies that documentation URLs still answer 200 OK.
//
// URLs are requested without following redirects: a moved page is reported
// so its index entry can be updated.
package linkcheck

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/versionboard/internal/fetch"
)

const defaultConcurrency = 4

// Prober requests a URL without following redirects.
type Prober interface {
	Probe(ctx context.Context, url string) fetch.Response
}

// Result is the outcome of checking one URL.
type Result struct {
	// Keys are the index keys pointing at URL, sorted.
	Keys       []string
	URL        string
	StatusCode int
	Location   string
	Err        error
}

// OK reports whether the URL answered 200.
func (r Result) OK() bool {
	return r.Err == nil && r.StatusCode == http.StatusOK
}

// String describes the problem with a failed result.
func (r Result) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s: %v", r.URL, r.Err)
	case r.Location != "":
		return fmt.Sprintf("%s: status %d (-> %s)", r.URL, r.StatusCode, r.Location)
	default:
		return fmt.Sprintf("%s: status %d", r.URL, r.StatusCode)
	}
}

// Checker checks documentation URLs.
type Checker struct {
	prober      Prober
	concurrency int
	logger      *slog.Logger
}

// NewChecker creates a [Checker]. Non-positive concurrency selects a small
// default; a nil logger selects [slog.Default].
func NewChecker(prober Prober, concurrency int, logger *slog.Logger) *Checker {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{prober: prober, concurrency: concurrency, logger: logger}
}

// Check probes every distinct URL of index (keyed by name) once. Results
// are sorted by URL. Placeholder and empty URLs are skipped. Each URL not
// answering 200 is logged at WARN.
func (c *Checker) Check(ctx context.Context, index map[string]string) ([]Result, error) {
	byURL := make(map[string][]string)
	for key, url := range index {
		if url == "" || url == "#" {
			continue
		}
		byURL[url] = append(byURL[url], key)
	}

	urls := make([]string, 0, len(byURL))
	for url := range byURL {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	results := make([]Result, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, url := range urls {
		keys := byURL[url]
		sort.Strings(keys)
		g.Go(func() error {
			resp := c.prober.Probe(gctx, url)
			results[i] = Result{
				Keys:       keys,
				URL:        url,
				StatusCode: resp.StatusCode,
				Location:   resp.Location,
				Err:        resp.Error,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.OK() {
			c.logger.Debug("documentation url ok", "url", r.URL)
			continue
		}
		attrs := []any{"url", r.URL, "keys", r.Keys, "status", r.StatusCode}
		if r.Location != "" {
			attrs = append(attrs, "location", r.Location)
		}
		if r.Err != nil {
			attrs = append(attrs, "error", r.Err.Error())
		}
		c.logger.Warn("documentation url not ok", attrs...)
	}
	return results, nil
}

// Failed returns the results that did not answer 200.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

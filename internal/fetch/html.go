package fetch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jpalmerr/versionboard"
)

// HTMLSource is the Raw Source Adapter for documentation pages. It performs
// one GET per call and returns the page text.
type HTMLSource struct {
	client *Client
}

// NewHTMLSource creates an [HTMLSource] using client.
func NewHTMLSource(client *Client) *HTMLSource {
	return &HTMLSource{client: client}
}

// Fetch implements versionboard.Source. Any answer other than 200 OK is a
// transport failure.
func (s *HTMLSource) Fetch(ctx context.Context, ref versionboard.SourceRef) (versionboard.RawPayload, error) {
	if ref.Kind != versionboard.SourceHTML {
		return versionboard.RawPayload{}, &versionboard.TransportError{
			Source: ref.ID,
			Err:    fmt.Errorf("not an html source (kind %s)", ref.Kind),
		}
	}

	resp := s.client.Get(ctx, ref.URL)
	if resp.Error != nil {
		return versionboard.RawPayload{}, &versionboard.TransportError{Source: ref.ID, Err: resp.Error}
	}
	if resp.StatusCode != http.StatusOK {
		return versionboard.RawPayload{}, &versionboard.TransportError{
			Source: ref.ID,
			Err:    fmt.Errorf("GET %s: unexpected status %d", ref.URL, resp.StatusCode),
		}
	}
	return versionboard.MarkupPayload(string(resp.Body)), nil
}

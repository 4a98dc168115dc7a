package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/versionboard"
)

func TestHTMLSource_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<div class="itemizedlist"></div>`))
	}))
	defer server.Close()

	src := NewHTMLSource(NewClient(5 * time.Second))
	payload, err := src.Fetch(context.Background(), versionboard.HTMLSource("eks", server.URL))

	require.NoError(t, err)
	assert.Equal(t, versionboard.SourceHTML, payload.Kind)
	assert.Equal(t, `<div class="itemizedlist"></div>`, payload.HTML)
}

func TestHTMLSource_FetchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	src := NewHTMLSource(NewClient(5 * time.Second))

	tests := []struct {
		name string
		ref  versionboard.SourceRef
	}{
		{name: "non-200 status", ref: versionboard.HTMLSource("eks", server.URL)},
		{name: "api ref", ref: versionboard.APISource("kafka-versions")},
		{name: "unreachable", ref: versionboard.HTMLSource("eks", "http://127.0.0.1:1/")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := src.Fetch(context.Background(), tt.ref)

			require.Error(t, err)
			assert.True(t, errors.Is(err, versionboard.ErrTransport))
			var te *versionboard.TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.ref.ID, te.Source)
		})
	}
}

// Package snapshot records raw source payloads to a directory and replays
// them as a versionboard.Source.
//
// Structured payloads are stored as <dir>/<source-id>.json, pages as
// <dir>/<source-id>.html. A recorded directory lets a report be regenerated
// offline, and doubles as a fixture set for tests.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tidwall/pretty"

	"github.com/jpalmerr/versionboard"
)

// Path returns the file a payload for ref is stored in under dir.
func Path(dir string, ref versionboard.SourceRef) string {
	ext := ".json"
	if ref.Kind == versionboard.SourceHTML {
		ext = ".html"
	}
	return filepath.Join(dir, ref.ID+ext)
}

// Recorder fetches sources and writes their payloads to a directory.
type Recorder struct {
	dir    string
	source versionboard.Source
	logger *slog.Logger
}

// NewRecorder creates a [Recorder] writing to dir. A nil logger selects
// [slog.Default].
func NewRecorder(dir string, source versionboard.Source, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{dir: dir, source: source, logger: logger}
}

// Record fetches every ref and writes its payload, stopping at the first
// failure. It returns the paths written.
func (r *Recorder) Record(ctx context.Context, refs []versionboard.SourceRef) ([]string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}

	paths := make([]string, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return paths, err
		}

		payload, err := r.source.Fetch(ctx, ref)
		if err != nil {
			return paths, err
		}

		var data []byte
		switch payload.Kind {
		case versionboard.SourceAPI:
			data = pretty.Pretty(payload.JSON)
		case versionboard.SourceHTML:
			data = []byte(payload.HTML)
		default:
			return paths, fmt.Errorf("source %s: unknown payload kind %q", ref.ID, payload.Kind)
		}

		path := Path(r.dir, ref)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write snapshot %s: %w", path, err)
		}
		r.logger.Info("snapshot written", "source", ref.ID, "path", path, "bytes", len(data))
		paths = append(paths, path)
	}
	return paths, nil
}

// Source replays payloads recorded by a [Recorder].
type Source struct {
	dir string
}

// NewSource creates a [Source] reading from dir.
func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

// Fetch implements versionboard.Source. A missing or unreadable snapshot is
// a transport failure.
func (s *Source) Fetch(ctx context.Context, ref versionboard.SourceRef) (versionboard.RawPayload, error) {
	if err := ctx.Err(); err != nil {
		return versionboard.RawPayload{}, &versionboard.TransportError{Source: ref.ID, Err: err}
	}

	path := Path(s.dir, ref)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("no snapshot at %s", path)
		}
		return versionboard.RawPayload{}, &versionboard.TransportError{Source: ref.ID, Err: err}
	}

	switch ref.Kind {
	case versionboard.SourceAPI:
		return versionboard.StructuredPayload(data), nil
	case versionboard.SourceHTML:
		return versionboard.MarkupPayload(string(data)), nil
	default:
		return versionboard.RawPayload{}, &versionboard.TransportError{
			Source: ref.ID,
			Err:    fmt.Errorf("unknown source kind %q", ref.Kind),
		}
	}
}

package versionboard

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// boardConfig holds mutable state during Board construction.
type boardConfig struct {
	port            int
	interval        time.Duration
	logger          *slog.Logger
	reportCallbacks []func(*Report)
	errorCallbacks  []func(error)
}

// BoardOption configures a [Board] during construction.
//
// Built-in options: [WithPort], [WithInterval], [WithBoardLogger],
// [WithReportCallback], [WithErrorCallback].
type BoardOption func(*boardConfig) error

// WithPort sets the HTTP port. Defaults to 8080.
//
// Returns an error if the port is outside 1-65535.
func WithPort(port int) BoardOption {
	return func(cfg *boardConfig) error {
		if port < 1 || port > 65535 {
			return fmt.Errorf("port must be between 1 and 65535, got %d", port)
		}
		cfg.port = port
		return nil
	}
}

// WithInterval sets the time between regenerations. Defaults to one hour.
//
// Returns an error if the interval is not positive.
func WithInterval(d time.Duration) BoardOption {
	return func(cfg *boardConfig) error {
		if d <= 0 {
			return errors.New("interval must be positive")
		}
		cfg.interval = d
		return nil
	}
}

// WithBoardLogger sets the logger of the board and its HTTP server. If not
// specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithBoardLogger(logger *slog.Logger) BoardOption {
	return func(cfg *boardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithReportCallback registers a function called after every successful
// generation, once the report is stored. Callbacks run synchronously on the
// generation goroutine; a panicking callback is logged and ignored.
//
// Use it to publish each report:
//
//	versionboard.WithReportCallback(func(r *versionboard.Report) {
//	    page, _ := versionboard.RenderPageBytes(r)
//	    _ = publisher.Publish(ctx, "index.html", page)
//	})
//
// Returns an error if fn is nil.
func WithReportCallback(fn func(*Report)) BoardOption {
	return func(cfg *boardConfig) error {
		if fn == nil {
			return errors.New("report callback cannot be nil")
		}
		cfg.reportCallbacks = append(cfg.reportCallbacks, fn)
		return nil
	}
}

// WithErrorCallback registers a function called after every failed
// generation. Same rules as [WithReportCallback].
//
// Returns an error if fn is nil.
func WithErrorCallback(fn func(error)) BoardOption {
	return func(cfg *boardConfig) error {
		if fn == nil {
			return errors.New("error callback cannot be nil")
		}
		cfg.errorCallbacks = append(cfg.errorCallbacks, fn)
		return nil
	}
}

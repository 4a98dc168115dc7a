package store

import "time"

// Row is one (service, version, documentation link) entry.
type Row struct {
	Service string `json:"service"`
	Version string `json:"version"`
	DocURL  string `json:"doc_url"`
}

// Failure names a service left out of a report and why.
type Failure struct {
	Service string `json:"service"`
	Error   string `json:"error"`
}

// Report is the storage representation of a generated report, decoupled
// from the SDK types so the server can evolve independently.
type Report struct {
	Title            string    `json:"title"`
	GeneratedAt      time.Time `json:"generated_at"`
	GeneratorVersion string    `json:"generator_version"`
	Rows             []Row     `json:"rows"`
	Failures         []Failure `json:"failures,omitempty"`

	// Page is the rendered HTML page of the report.
	Page []byte `json:"-"`
}

// EventType distinguishes successful and failed generations.
type EventType string

const (
	EventReport EventType = "report"
	EventFailed EventType = "failed"
)

// Event announces a generation attempt.
type Event struct {
	Type        EventType `json:"type"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        int       `json:"rows"`
	Failures    int       `json:"failures"`

	// Error is set on [EventFailed] events.
	Error string `json:"error,omitempty"`
}

// Status summarises the state of the store.
type Status struct {
	// HasReport is false until the first successful generation.
	HasReport   bool      `json:"has_report"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`

	// LastError is the error of the most recent attempt, empty if it
	// succeeded.
	LastError   string    `json:"last_error,omitempty"`
	LastAttempt time.Time `json:"last_attempt,omitempty"`
}

// Store defines storage of the latest report and subscription to updates.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// Update replaces the stored report and notifies all subscribers.
	Update(report Report)

	// RecordFailure records a failed generation attempt and notifies all
	// subscribers. The stored report is left in place.
	RecordFailure(at time.Time, err error)

	// Latest returns the stored report. ok is false before the first
	// successful generation.
	Latest() (report Report, ok bool)

	// Status returns a summary of the store.
	Status() Status

	// Subscribe returns a channel that receives events.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Event

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Event)
}

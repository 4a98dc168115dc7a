package store

import (
	"sync"
	"time"
)

const subscriberBuffer = 16

// MemoryStore is an in-memory implementation of [Store].
//
// Subscribers receive events via buffered channels. Events are sent
// non-blocking; if a subscriber's buffer is full, the event is dropped for
// that subscriber.
type MemoryStore struct {
	mu          sync.RWMutex
	report      *Report
	lastError   string
	lastAttempt time.Time

	subMu       sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewMemoryStore creates a new in-memory [Store] implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Update stores report, clears the last error and notifies subscribers.
func (m *MemoryStore) Update(report Report) {
	stored := copyReport(report)

	m.mu.Lock()
	m.report = &stored
	m.lastError = ""
	m.lastAttempt = report.GeneratedAt
	m.mu.Unlock()

	m.notifySubscribers(Event{
		Type:        EventReport,
		GeneratedAt: report.GeneratedAt,
		Rows:        len(report.Rows),
		Failures:    len(report.Failures),
	})
}

// RecordFailure implements [Store].
func (m *MemoryStore) RecordFailure(at time.Time, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}

	m.mu.Lock()
	m.lastError = msg
	m.lastAttempt = at
	m.mu.Unlock()

	m.notifySubscribers(Event{Type: EventFailed, GeneratedAt: at, Error: msg})
}

// Latest returns a copy of the stored report.
func (m *MemoryStore) Latest() (Report, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.report == nil {
		return Report{}, false
	}
	return copyReport(*m.report), true
}

// Status implements [Store].
func (m *MemoryStore) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		HasReport:   m.report != nil,
		LastError:   m.lastError,
		LastAttempt: m.lastAttempt,
	}
	if m.report != nil {
		s.GeneratedAt = m.report.GeneratedAt
	}
	return s
}

// Subscribe creates a new subscription.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource
// leaks.
func (m *MemoryStore) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel. Safe to call
// multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

func (m *MemoryStore) notifySubscribers(e Event) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- e:
		default:
			// subscriber is slow, drop the event
		}
	}
}

func copyReport(r Report) Report {
	r.Rows = append([]Row(nil), r.Rows...)
	r.Failures = append([]Failure(nil), r.Failures...)
	r.Page = append([]byte(nil), r.Page...)
	return r
}

// Package auditlog keeps a small in-memory trail of trading events for the
// operator: entries, exits, circuit-breaker trips. Newest entries come
// first and the log is capped, so it is a display buffer, not durable
// storage; the sqlite journal owns durability.
package auditlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/markethours"
)

// Severity classifies an audit entry.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
	SeverityAlert Severity = "ALERT"
)

// DefaultCapacity is the number of entries retained.
const DefaultCapacity = 100

// Entry is one recorded audit line.
type Entry struct {
	TS       time.Time `json:"ts"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// String renders the entry the way the operator log shows it.
func (e Entry) String() string {
	return fmt.Sprintf("[%s] [%s] %s", e.TS.In(markethours.IST).Format("15:04:05"), e.Severity, e.Message)
}

// Log is a bounded, newest-first audit log. Safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	cap     int
	now     func() time.Time
}

// New creates a Log retaining at most capacity entries. capacity <= 0 uses
// DefaultCapacity.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		entries: make([]Entry, 0, capacity),
		cap:     capacity,
		now:     time.Now,
	}
}

// Record adds a formatted entry at the front, evicting the oldest entry
// once the log is full.
func (l *Log) Record(sev Severity, format string, args ...any) {
	e := Entry{TS: l.now(), Severity: sev, Message: fmt.Sprintf(format, args...)}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == l.cap {
		l.entries = l.entries[:l.cap-1]
	}
	l.entries = append([]Entry{e}, l.entries...)
}

// Snapshot returns a copy of the entries, newest first.
func (l *Log) Snapshot() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := make([]Entry, len(l.entries))
	copy(cp, l.entries)
	return cp
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

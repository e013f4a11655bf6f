// Package audit records security-relevant events as pipe-delimited
// key=value lines, one line per event.
package audit

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Actions.
const (
	ActionLogin     = "login"
	ActionLogout    = "logout"
	ActionDashboard = "dashboard"
	ActionSearch    = "search"
	ActionSession   = "session"
)

// Outcomes.
const (
	OutcomeAttempt       = "attempt"
	OutcomeSuccess       = "success"
	OutcomeFailure       = "failure"
	OutcomeCompleted     = "completed"
	OutcomeError         = "error"
	OutcomeAnomalousRole = "anomalous_role"
)

// Event is one audit record. Zero values render as "-".
type Event struct {
	Time     time.Time
	IP       string
	UserName string
	Role     string
	UserID   int64
	Action   string
	Outcome  string
	// Query is the scoping tag of a data access, e.g. "all_posts_full".
	Query string
	// Matches is the number of rows returned; nil when not applicable.
	Matches *int
	Detail  string
}

// Count returns a pointer for Event.Matches.
func Count(n int) *int { return &n }

// Recorder persists audit events.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}

// LineRecorder writes each event as a single line to w. It is safe for
// concurrent use.
type LineRecorder struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

func NewLineRecorder(w io.Writer) *LineRecorder {
	return &LineRecorder{w: w, now: time.Now}
}

func (r *LineRecorder) Record(_ context.Context, e Event) {
	if e.Time.IsZero() {
		e.Time = r.now()
	}
	line := Format(e) + "\n"

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.w, line)
}

// Format renders e without a trailing newline:
//
//	timestamp=2024-01-02T03:04:05Z | ip=10.0.0.1 | username=admin | role=admin | id=1 | action=login | outcome=success
//
// query, matches and detail are appended only when set.
func Format(e Event) string {
	var b strings.Builder

	field(&b, "timestamp", e.Time.UTC().Format(time.RFC3339))
	field(&b, "ip", e.IP)
	field(&b, "username", e.UserName)
	field(&b, "role", e.Role)
	if e.UserID != 0 {
		field(&b, "id", strconv.FormatInt(e.UserID, 10))
	} else {
		field(&b, "id", "")
	}
	field(&b, "action", e.Action)
	field(&b, "outcome", e.Outcome)

	if e.Query != "" {
		field(&b, "query", e.Query)
	}
	if e.Matches != nil {
		field(&b, "matches", strconv.Itoa(*e.Matches))
	}
	if e.Detail != "" {
		field(&b, "detail", e.Detail)
	}

	return b.String()
}

const missing = "-"

var sanitizer = strings.NewReplacer("|", "/", "\r", " ", "\n", " ")

func field(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteString(" | ")
	}
	b.WriteString(key)
	b.WriteByte('=')
	value = strings.TrimSpace(sanitizer.Replace(value))
	if value == "" {
		value = missing
	}
	b.WriteString(value)
}

package engine

import (
	"github.com/google/uuid"
)

// LogState is the lifecycle of a log subscription.
type LogState int

const (
	LogClosed LogState = iota
	LogConnecting
	LogStreaming
	LogFailed
)

func (s LogState) String() string {
	switch s {
	case LogConnecting:
		return "connecting"
	case LogStreaming:
		return "streaming"
	case LogFailed:
		return "failed"
	default:
		return "closed"
	}
}

// LogSession holds at most one live log subscription and its scrollback
// buffer. Sessions are exclusive, not generational: every Open mints a
// fresh identity token, and events carrying any other token are dropped.
// That is what keeps lines from a torn-down subscription out of the buffer
// even when they were already in flight.
type LogSession struct {
	state  LogState
	scanID int
	token  uuid.UUID
	buf    []string
	err    error
	closer func() error
}

func NewLogSession() *LogSession {
	return &LogSession{}
}

// Open tears down any existing subscription, clears the buffer, and
// returns the identity token for the new session. The caller dials the
// transport and reports back via Attach / Fail, stamping every event with
// this token.
func (s *LogSession) Open(scanID int) uuid.UUID {
	s.teardown()
	s.state = LogConnecting
	s.scanID = scanID
	s.token = uuid.New()
	s.buf = nil
	s.err = nil
	return s.token
}

// Attach reports a successful dial. The closer is invoked on the next
// teardown. Returns false when the session moved on while the dial was in
// flight; the caller must close the orphaned transport itself.
func (s *LogSession) Attach(token uuid.UUID, closer func() error) bool {
	if token != s.token || s.state != LogConnecting {
		return false
	}
	s.state = LogStreaming
	s.closer = closer
	return true
}

// Append adds one line in arrival order. Lines with a stale token are
// dropped silently.
func (s *LogSession) Append(token uuid.UUID, line string) bool {
	if token != s.token || s.state != LogStreaming {
		return false
	}
	s.buf = append(s.buf, line)
	return true
}

// Fail records a transport error for the current session. There is no
// automatic reconnect: the user reopens explicitly, which makes a dead
// subscription visible instead of silently masked.
func (s *LogSession) Fail(token uuid.UUID, err error) bool {
	if token != s.token {
		return false
	}
	s.teardown()
	s.state = LogFailed
	s.err = err
	return true
}

// Finish records a clean end of stream for the current session. The
// scrollback stays readable; only the live subscription is gone. A finish
// carrying a stale token is ignored like any other stale event.
func (s *LogSession) Finish(token uuid.UUID) bool {
	if token != s.token {
		return false
	}
	s.teardown()
	s.state = LogClosed
	s.err = nil
	return true
}

// Close tears down the active subscription and clears the buffer.
func (s *LogSession) Close() {
	s.teardown()
	s.state = LogClosed
	s.scanID = 0
	s.token = uuid.UUID{}
	s.buf = nil
	s.err = nil
}

func (s *LogSession) teardown() {
	if s.closer != nil {
		_ = s.closer()
		s.closer = nil
	}
}

func (s *LogSession) State() LogState { return s.state }
func (s *LogSession) ScanID() int     { return s.scanID }
func (s *LogSession) Err() error      { return s.err }

// Lines returns a copy of the scrollback buffer.
func (s *LogSession) Lines() []string {
	return append([]string(nil), s.buf...)
}

// Len avoids the copy when only the count is needed.
func (s *LogSession) Len() int { return len(s.buf) }

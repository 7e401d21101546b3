package engine

import (
	"errors"
	"testing"
)

func TestLogSessionAppendsInArrivalOrder(t *testing.T) {
	s := NewLogSession()
	token := s.Open(1)
	s.Attach(token, func() error { return nil })

	s.Append(token, "first")
	s.Append(token, "second")

	lines := s.Lines()
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Fatalf("lines = %v, want [first second]", lines)
	}
}

func TestLogSessionReopenClearsBufferAndDropsOldLines(t *testing.T) {
	s := NewLogSession()
	oldToken := s.Open(1)
	s.Attach(oldToken, func() error { return nil })
	s.Append(oldToken, "old line")

	newToken := s.Open(2)
	if got := s.Len(); got != 0 {
		t.Fatalf("buffer not empty after reopen: %d lines", got)
	}

	// A message from the old subscription was still in flight.
	if s.Append(oldToken, "stale line") {
		t.Fatal("stale-token line was appended")
	}
	if got := s.Len(); got != 0 {
		t.Fatalf("stale line landed in the new session: %d lines", got)
	}

	s.Attach(newToken, func() error { return nil })
	if !s.Append(newToken, "fresh line") {
		t.Fatal("current-token line was dropped")
	}
}

func TestLogSessionOpenTearsDownPreviousTransport(t *testing.T) {
	s := NewLogSession()
	closed := false
	token := s.Open(1)
	s.Attach(token, func() error {
		closed = true
		return nil
	})

	s.Open(2)
	if !closed {
		t.Fatal("previous transport not torn down before new session")
	}
}

func TestLogSessionAttachRefusesStaleDial(t *testing.T) {
	s := NewLogSession()
	oldToken := s.Open(1)
	s.Open(2)

	if s.Attach(oldToken, func() error { return nil }) {
		t.Fatal("stale dial attached to current session")
	}
	if s.State() != LogConnecting {
		t.Fatalf("state = %v, want connecting", s.State())
	}
}

func TestLogSessionFailStopsStreamWithoutReconnect(t *testing.T) {
	s := NewLogSession()
	token := s.Open(1)
	s.Attach(token, func() error { return nil })

	wantErr := errors.New("connection reset")
	if !s.Fail(token, wantErr) {
		t.Fatal("current-session failure ignored")
	}
	if s.State() != LogFailed {
		t.Fatalf("state = %v, want failed", s.State())
	}
	if !errors.Is(s.Err(), wantErr) {
		t.Fatalf("err = %v, want %v", s.Err(), wantErr)
	}

	// Failure of an already-replaced session must not touch the new one.
	newToken := s.Open(2)
	if s.Fail(token, errors.New("late error")) {
		t.Fatal("stale failure applied to new session")
	}
	if s.State() != LogConnecting {
		t.Fatalf("state = %v, want connecting", s.State())
	}
	_ = newToken
}

func TestLogSessionCleanEndKeepsScrollback(t *testing.T) {
	s := NewLogSession()
	token := s.Open(1)
	s.Attach(token, func() error { return nil })
	s.Append(token, "scan complete")

	if !s.Finish(token) {
		t.Fatal("current-session finish ignored")
	}
	if s.State() != LogClosed {
		t.Fatalf("state = %v, want closed", s.State())
	}
	if s.Err() != nil {
		t.Fatalf("clean end left an error: %v", s.Err())
	}
	if s.Len() != 1 {
		t.Fatalf("scrollback cleared on clean end: %d lines", s.Len())
	}

	// A finish from a replaced session must not touch the new one.
	s.Open(2)
	if s.Finish(token) {
		t.Fatal("stale finish applied")
	}
	if s.State() != LogConnecting {
		t.Fatalf("state = %v, want connecting", s.State())
	}
}

func TestLogSessionCloseClearsEverything(t *testing.T) {
	s := NewLogSession()
	token := s.Open(1)
	s.Attach(token, func() error { return nil })
	s.Append(token, "line")

	s.Close()
	if s.State() != LogClosed {
		t.Fatalf("state = %v, want closed", s.State())
	}
	if s.Len() != 0 {
		t.Fatalf("buffer not cleared: %d lines", s.Len())
	}
	if s.Append(token, "after close") {
		t.Fatal("append succeeded after close")
	}
}

package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// LogStream is one WebSocket subscription to a scan's log channel. Lines
// arrive on Lines() in transport order until the channel closes; after
// that Err() reports why the stream ended (nil on a clean close).
//
// The read loop runs on its own goroutine; the consumer is expected to
// drain Lines() from a single event loop.
type LogStream struct {
	conn  *websocket.Conn
	lines chan string
	done  chan struct{}

	mu     sync.Mutex
	err    error
	closed bool
}

// StreamLogs opens the per-scan log subscription. The returned stream is
// already connected; tearing down the passed context closes it.
func (c *Client) StreamLogs(ctx context.Context, scanID int) (*LogStream, error) {
	u := fmt.Sprintf("%s/api/scans/%d/logs/ws", c.wsBase, scanID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}

	s := &LogStream{
		conn:  conn,
		lines: make(chan string, 64),
		done:  make(chan struct{}),
	}

	go func() {
		<-ctx.Done()
		s.Close()
	}()
	go s.readLoop(u)

	return s, nil
}

func (s *LogStream) readLoop(u string) {
	defer close(s.lines)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			if !s.closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.err = &TransportError{URL: u, Err: err}
			}
			s.mu.Unlock()
			return
		}
		// A consumer that moved on stops draining; without the done case
		// the send would block forever once the buffer fills, pinning
		// this goroutine past Close.
		select {
		case s.lines <- string(data):
		case <-s.done:
			return
		}
	}
}

// Lines returns the ordered message channel. It is closed when the
// subscription ends for any reason.
func (s *LogStream) Lines() <-chan string { return s.lines }

// Err reports the terminal error of the stream, if any. Only meaningful
// after Lines() has closed.
func (s *LogStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears the subscription down. Safe to call more than once and
// concurrently with the read loop.
func (s *LogStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	if s.done != nil {
		close(s.done)
	}
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

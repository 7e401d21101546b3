package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func logStreamServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
}

func TestLogStreamDeliversLinesInOrder(t *testing.T) {
	srv := logStreamServer(t, func(conn *websocket.Conn) {
		for _, line := range []string{"starting amass", "found a.example.com"} {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
		}
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.ReadMessage()
	})
	defer srv.Close()

	c := NewClient(srv.URL, "")
	stream, err := c.StreamLogs(context.Background(), 1)
	if err != nil {
		t.Fatalf("StreamLogs: %v", err)
	}
	defer stream.Close()

	var got []string
	for line := range stream.Lines() {
		got = append(got, line)
	}
	if len(got) != 2 || got[0] != "starting amass" || got[1] != "found a.example.com" {
		t.Fatalf("lines = %v", got)
	}
	if stream.Err() != nil {
		t.Fatalf("clean close reported an error: %v", stream.Err())
	}
}

func TestLogStreamCloseUnblocksReadLoop(t *testing.T) {
	srv := logStreamServer(t, func(conn *websocket.Conn) {
		// Far more lines than the stream buffers, with nobody draining.
		for i := 0; i < 200; i++ {
			if err := conn.WriteMessage(websocket.TextMessage, []byte("line")); err != nil {
				return
			}
		}
		conn.ReadMessage()
	})
	defer srv.Close()

	c := NewClient(srv.URL, "")
	stream, err := c.StreamLogs(context.Background(), 1)
	if err != nil {
		t.Fatalf("StreamLogs: %v", err)
	}

	// Let the buffer fill so the read loop is parked on the channel send.
	time.Sleep(100 * time.Millisecond)
	stream.Close()

	// The read loop closes lines on exit; if it stays blocked on the send
	// this never sees the channel close and times out.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-stream.Lines():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("read loop still running after Close")
		}
	}
}

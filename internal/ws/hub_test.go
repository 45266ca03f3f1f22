package ws

import (
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type recordingSubscriber struct {
	received chan []byte
	closed   chan struct{}
	fail     bool
}

func newRecordingSubscriber() *recordingSubscriber {
	return &recordingSubscriber{received: make(chan []byte, 8), closed: make(chan struct{})}
}

func (s *recordingSubscriber) Send(payload []byte) error {
	if s.fail {
		return errors.New("broken pipe")
	}
	s.received <- payload
	return nil
}

func (s *recordingSubscriber) Close() {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
}

func waitFor(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case payload := <-ch:
		return payload
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for payload")
		return nil
	}
}

func TestHubDeliversOnlyToOrganization(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	mine := newRecordingSubscriber()
	theirs := newRecordingSubscriber()
	hub.Register("wo1", mine)
	hub.Register("wo2", theirs)

	if !hub.Broadcast("wo1", []byte(`{"type":"shift.started"}`)) {
		t.Fatalf("expected broadcast to be queued")
	}
	if got := string(waitFor(t, mine.received)); got != `{"type":"shift.started"}` {
		t.Fatalf("unexpected payload %s", got)
	}
	if hub.Subscribers("wo2") != 1 {
		t.Fatalf("expected wo2 subscriber to remain")
	}
	select {
	case <-theirs.received:
		t.Fatalf("other organization must not receive the event")
	default:
	}
}

func TestHubDropsFailingSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	broken := newRecordingSubscriber()
	broken.fail = true
	hub.Register("wo1", broken)
	hub.Broadcast("wo1", []byte("x"))

	select {
	case <-broken.closed:
	case <-time.After(time.Second):
		t.Fatalf("expected failing subscriber to be closed")
	}
	if n := hub.Subscribers("wo1"); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
}

func TestHubCloseStopsBroadcasts(t *testing.T) {
	hub := NewHub()
	sub := newRecordingSubscriber()
	hub.Register("wo1", sub)
	hub.Unregister("wo1", sub)
	hub.Close()
	if hub.Broadcast("wo1", []byte("late")) {
		t.Fatalf("expected closed hub to refuse broadcasts")
	}
}

func TestSSEClientFramesEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	client := NewSSEClient(rec, rec, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := client.Send([]byte(`{"a":1}`)); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if err := client.Heartbeat(); err != nil {
		t.Fatalf("Heartbeat returned error: %v", err)
	}
	client.Close()
	if err := client.Send([]byte("after")); err != io.EOF {
		t.Fatalf("expected io.EOF after close, got %v", err)
	}
	select {
	case <-client.Done():
	default:
		t.Fatalf("expected Done to be closed")
	}
	body := rec.Body.String()
	if !strings.Contains(body, "data: {\"a\":1}\n\n") || !strings.Contains(body, ": ping\n\n") {
		t.Fatalf("unexpected stream body %q", body)
	}
}

package activity

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/ws"
)

type channelSubscriber chan []byte

func (c channelSubscriber) Send(payload []byte) error { c <- payload; return nil }
func (c channelSubscriber) Close()                    {}

func TestPublishBroadcastsToOrganization(t *testing.T) {
	hub := ws.NewHub()
	defer hub.Close()
	sub := make(channelSubscriber, 1)
	hub.Register("wo1", sub)

	svc := New(hub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.Publish(domain.ActivityEvent{Type: domain.ActivityShiftStarted, OrganizationID: "wo1", EmployeeID: "we1", ShiftID: "ws1", At: 1000})

	select {
	case raw := <-sub:
		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if decoded["type"] != "shift.started" || decoded["shiftId"] != "ws1" {
			t.Fatalf("unexpected payload %v", decoded)
		}
		if _, ok := decoded["screenshotId"]; ok {
			t.Fatalf("empty ids must be omitted: %v", decoded)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}
}

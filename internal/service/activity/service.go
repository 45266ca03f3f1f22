package activity

import (
	"encoding/json"
	"time"

	"log/slog"

	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/ws"
)

// Publisher receives activity events from mutating services.
type Publisher interface {
	Publish(event domain.ActivityEvent)
}

// Service streams organization activity to live subscribers.
type Service struct {
	hub    *ws.Hub
	logger *slog.Logger
}

// New constructs an activity service.
func New(hub *ws.Hub, logger *slog.Logger) Service {
	return Service{hub: hub, logger: logger}
}

// Publish broadcasts event to the organization's subscribers. Delivery is best effort.
func (s Service) Publish(event domain.ActivityEvent) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	data, err := MarshalEvent(event)
	if err != nil {
		s.logger.Warn("failed to marshal activity payload", "error", err)
		return
	}
	if !s.hub.Broadcast(event.OrganizationID, data) {
		s.logger.Warn("activity event dropped", "type", event.Type, "organization_id", event.OrganizationID)
	}
}

// Hub returns the websocket hub (useful for HTTP handlers).
func (s Service) Hub() *ws.Hub {
	return s.hub
}

// MarshalEvent formats an activity event for streaming payloads.
func MarshalEvent(event domain.ActivityEvent) ([]byte, error) {
	payload := map[string]any{
		"type":           event.Type,
		"organizationId": event.OrganizationID,
		"employeeId":     event.EmployeeID,
		"at":             event.At,
		"createdAt":      event.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	for key, value := range map[string]string{
		"shiftId":      event.ShiftID,
		"screenshotId": event.ScreenshotID,
		"projectId":    event.ProjectID,
		"taskId":       event.TaskID,
	} {
		if value != "" {
			payload[key] = value
		}
	}
	return json.Marshal(payload)
}

// Discard is a Publisher that drops every event.
type Discard struct{}

// Publish implements Publisher.
func (Discard) Publish(domain.ActivityEvent) {}

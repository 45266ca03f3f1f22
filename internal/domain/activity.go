package domain

import "time"

// Activity event types streamed to organization subscribers.
const (
	ActivityShiftStarted       = "shift.started"
	ActivityShiftEnded         = "shift.ended"
	ActivityShiftDeleted       = "shift.deleted"
	ActivityScreenshotCaptured = "screenshot.captured"
	ActivityScreenshotDeleted  = "screenshot.deleted"
)

// ActivityEvent is a live notification about tracked work inside an organization.
type ActivityEvent struct {
	Type           string
	OrganizationID string
	EmployeeID     string
	ShiftID        string
	ScreenshotID   string
	ProjectID      string
	TaskID         string
	At             int64
	CreatedAt      time.Time
}

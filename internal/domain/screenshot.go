package domain

// Screenshot is one capture taken during a shift. Timestamp is epoch milliseconds.
type Screenshot struct {
	ID                string             `json:"id"`
	Timestamp         int64              `json:"timestamp"`
	EmployeeID        string             `json:"employeeId"`
	ShiftID           string             `json:"shiftId"`
	OrganizationID    string             `json:"organizationId"`
	TeamID            string             `json:"teamId,omitempty"`
	ProjectID         string             `json:"projectId,omitempty"`
	TaskID            string             `json:"taskId,omitempty"`
	Site              string             `json:"site,omitempty"`
	Productivity      *float64           `json:"productivity,omitempty"`
	App               string             `json:"app,omitempty"`
	AppFileName       string             `json:"appFileName,omitempty"`
	AppFilePath       string             `json:"appFilePath,omitempty"`
	Title             string             `json:"title,omitempty"`
	URL               string             `json:"url,omitempty"`
	Document          string             `json:"document,omitempty"`
	WindowID          string             `json:"windowId,omitempty"`
	TaskStatus        string             `json:"taskStatus,omitempty"`
	TaskPriority      string             `json:"taskPriority,omitempty"`
	Name              string             `json:"name,omitempty"`
	SystemPermissions *SystemPermissions `json:"systemPermissions,omitempty"`
	Active            bool               `json:"active"`
	Processed         bool               `json:"processed"`
	Device
}

// ScreenshotPage is one page of a cursor listing. Next is nil at the end of the stream.
type ScreenshotPage struct {
	Data []Screenshot `json:"data"`
	Next *string      `json:"next"`
}

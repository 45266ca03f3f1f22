package domain

// Default vocabularies applied to new projects and tasks.
var (
	DefaultProjectStatuses   = []string{"To do", "On hold", "In progress", "Done"}
	DefaultProjectPriorities = []string{"low", "medium", "high"}
)

const (
	DefaultTaskStatus   = "To Do"
	DefaultTaskPriority = "low"
)

// Payroll holds billing rates for a project.
type Payroll struct {
	BillRate         float64 `json:"billRate"`
	OvertimeBillRate float64 `json:"overtimeBillRate"`
}

// ScreenshotSettings controls capture for a project.
type ScreenshotSettings struct {
	ScreenshotEnabled bool `json:"screenshotEnabled"`
}

// Project groups tasks and tracked time.
type Project struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Description        string             `json:"description,omitempty"`
	OrganizationID     string             `json:"organizationId"`
	CreatorID          string             `json:"creatorId"`
	Archived           bool               `json:"archived"`
	Billable           bool               `json:"billable"`
	Statuses           []string           `json:"statuses"`
	Priorities         []string           `json:"priorities"`
	Payroll            *Payroll           `json:"payroll,omitempty"`
	ScreenshotSettings ScreenshotSettings `json:"screenshotSettings"`
	Employees          []string           `json:"employees"`
	Teams              []string           `json:"teams"`
	CreatedAt          int64              `json:"createdAt"`
}

// Task is a unit of work inside a project.
type Task struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	ProjectID      string   `json:"projectId"`
	OrganizationID string   `json:"organizationId"`
	CreatorID      string   `json:"creatorId"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	Billable       bool     `json:"billable"`
	Deadline       *int64   `json:"deadline"`
	Labels         []string `json:"labels"`
	Employees      []string `json:"employees"`
	Teams          []string `json:"teams"`
	CreatedAt      int64    `json:"createdAt"`
}

package domain

// Placeholder names used when a referenced entity no longer resolves.
const (
	UnknownProjectName  = "Unknown Project"
	UnknownEmployeeName = "Unknown Employee"
)

// ProjectTimeRow is one completed shift projected for time analytics.
type ProjectTimeRow struct {
	ProjectID    string  `json:"projectId"`
	ProjectName  string  `json:"projectName"`
	TaskID       *string `json:"taskId"`
	TaskName     *string `json:"taskName"`
	EmployeeID   string  `json:"employeeId"`
	EmployeeName string  `json:"employeeName"`
	Time         int64   `json:"time"`
	Date         int64   `json:"date"`
}

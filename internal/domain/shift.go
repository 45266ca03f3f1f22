package domain

// ShiftType records how a shift was started.
type ShiftType string

const (
	ShiftManual    ShiftType = "manual"
	ShiftAutomated ShiftType = "automated"
	ShiftScheduled ShiftType = "scheduled"
	ShiftLeave     ShiftType = "leave"
)

// Valid reports whether t is a known shift type.
func (t ShiftType) Valid() bool {
	switch t {
	case ShiftManual, ShiftAutomated, ShiftScheduled, ShiftLeave:
		return true
	}
	return false
}

// Device describes the machine an agent reported from.
type Device struct {
	User      string `json:"user,omitempty"`
	Domain    string `json:"domain,omitempty"`
	Computer  string `json:"computer,omitempty"`
	Hwid      string `json:"hwid,omitempty"`
	OS        string `json:"os,omitempty"`
	OSVersion string `json:"osVersion,omitempty"`
}

// Shift is one continuous tracked interval. End is nil while the shift is open.
// Times are epoch milliseconds.
type Shift struct {
	ID                 string    `json:"id"`
	Type               ShiftType `json:"type"`
	Start              int64     `json:"start"`
	End                *int64    `json:"end"`
	TimezoneOffset     int64     `json:"timezoneOffset"`
	Name               string    `json:"name,omitempty"`
	EmployeeID         string    `json:"employeeId"`
	TeamID             string    `json:"teamId,omitempty"`
	OrganizationID     string    `json:"organizationId"`
	ProjectID          string    `json:"projectId,omitempty"`
	TaskID             string    `json:"taskId,omitempty"`
	Paid               bool      `json:"paid"`
	PayRate            float64   `json:"payRate"`
	OvertimePayRate    float64   `json:"overtimePayRate"`
	OvertimeStart      *int64    `json:"overtimeStart,omitempty"`
	DeletedScreenshots int       `json:"deletedScreenshots"`
	Device
}

// Open reports whether the shift is still in progress.
func (s Shift) Open() bool { return s.End == nil }

// Duration returns end-start for completed shifts and zero otherwise.
func (s Shift) Duration() int64 {
	if s.End == nil {
		return 0
	}
	return *s.End - s.Start
}

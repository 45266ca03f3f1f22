package domain

// EmployeeType distinguishes remote from on-site staff.
type EmployeeType string

const (
	EmployeePersonal EmployeeType = "personal"
	EmployeeOffice   EmployeeType = "office"
)

// Valid reports whether t is a known employee type.
func (t EmployeeType) Valid() bool {
	return t == EmployeePersonal || t == EmployeeOffice
}

// SystemPermissions mirrors the capture permissions reported by desktop agents.
type SystemPermissions struct {
	Accessibility                 string `json:"accessibility,omitempty"`
	ScreenAndSystemAudioRecording string `json:"screenAndSystemAudioRecording,omitempty"`
}

// Employee is a tracked member of an organization.
type Employee struct {
	ID                string             `json:"id"`
	Email             string             `json:"email"`
	Name              string             `json:"name"`
	Title             string             `json:"title,omitempty"`
	PasswordHash      string             `json:"-"`
	TeamID            string             `json:"teamId,omitempty"`
	Type              EmployeeType       `json:"type"`
	OrganizationID    string             `json:"organizationId"`
	Deactivated       *int64             `json:"deactivated"`
	Invited           *int64             `json:"invited"`
	SystemPermissions *SystemPermissions `json:"systemPermissions,omitempty"`
	Projects          []string           `json:"projects"`
	CreatedAt         int64              `json:"createdAt"`
}

// Active reports whether the employee has not been deactivated.
func (e Employee) Active() bool { return e.Deactivated == nil }

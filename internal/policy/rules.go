package policy

import "github.com/splax/shiftwatch/internal/domain"

// Admin governs admin records. Employees never manage admins; admins may not delete themselves.
func Admin(p domain.Principal, action Action, target domain.Admin) Decision {
	if !p.IsAdmin() {
		return Deny("Only admins can manage admins")
	}
	if d := SameOrganization(p, target.OrganizationID, adminReason(action)); !d.Allowed {
		return d
	}
	if action == Delete && target.ID == p.ID {
		return Decision{Reason: "Cannot delete yourself", conflict: true}
	}
	return Allow()
}

func adminReason(action Action) string {
	switch action {
	case Update:
		return "Not enough permissions to update this admin"
	case Delete:
		return "Not enough permissions to delete this admin"
	case Create:
		return "Cannot create admin for different organization"
	}
	return "Not enough permissions to access this admin"
}

// Employee governs employee records. Employees may read their own record and set their own password.
func Employee(p domain.Principal, action Action, target domain.Employee) Decision {
	if p.IsAdmin() {
		return SameOrganization(p, target.OrganizationID, employeeReason(action))
	}
	switch action {
	case Read, Update:
		if target.ID == p.ID {
			return Allow()
		}
	}
	return Deny(employeeReason(action))
}

// EmployeeAdmin governs employee operations reserved for admins: create, edit, deactivate.
func EmployeeAdmin(p domain.Principal, action Action, target domain.Employee) Decision {
	if !p.IsAdmin() {
		return Deny("Only admins can manage employees")
	}
	return SameOrganization(p, target.OrganizationID, employeeReason(action))
}

func employeeReason(action Action) string {
	switch action {
	case Create:
		return "Cannot create employee for different organization"
	case Update:
		return "Not enough permissions to update this employee"
	case Delete:
		return "Not enough permissions to deactivate this employee"
	}
	return "Not enough permissions to access this employee"
}

// Team governs teams. Employees may read the team they belong to.
func Team(p domain.Principal, action Action, target domain.Team) Decision {
	if p.IsAdmin() {
		return SameOrganization(p, target.OrganizationID, "Not enough permissions to access this team")
	}
	if action == Read && target.ID != "" && target.ID == p.TeamID {
		return Allow()
	}
	return Deny("Only admins can manage teams")
}

// Project governs projects. Employees may read projects they are members of; writes are admin only.
func Project(p domain.Principal, action Action, target domain.Project) Decision {
	if p.IsAdmin() {
		return SameOrganization(p, target.OrganizationID, projectReason(action))
	}
	if action != Read {
		return Deny("Only admins can " + string(action) + " projects")
	}
	if target.OrganizationID == p.OrganizationID && IsMember(p, target.Employees, target.Teams, target.CreatorID) {
		return Allow()
	}
	return Deny(projectReason(action))
}

func projectReason(action Action) string {
	switch action {
	case Create:
		return "Cannot create project for different organization"
	case Update:
		return "Not enough permissions to update this project"
	case Delete:
		return "Not enough permissions to delete this project"
	}
	return "Not enough permissions to access this project"
}

// Task governs tasks. parent is the task's project; it may be nil when the project is gone.
// Employees read and update tasks they are members of, or whose project they belong to;
// they create tasks inside projects they belong to and delete only tasks they created.
func Task(p domain.Principal, action Action, target domain.Task, parent *domain.Project) Decision {
	if p.IsAdmin() {
		return SameOrganization(p, target.OrganizationID, taskReason(action))
	}
	if target.OrganizationID != p.OrganizationID {
		return Deny(taskReason(action))
	}
	projectMember := parent != nil && IsMember(p, parent.Employees, parent.Teams, parent.CreatorID)
	switch action {
	case Create:
		if projectMember {
			return Allow()
		}
	case Read, Update:
		if projectMember || IsMember(p, target.Employees, target.Teams, target.CreatorID) {
			return Allow()
		}
	case Delete:
		if target.CreatorID == p.ID {
			return Allow()
		}
	}
	return Deny(taskReason(action))
}

func taskReason(action Action) string {
	switch action {
	case Create:
		return "Not enough permissions to create task in this project"
	case Update:
		return "Not enough permissions to update this task"
	case Delete:
		return "Not enough permissions to delete this task"
	}
	return "Not enough permissions to access this task"
}

// Shift governs shifts: admins within their organization, employees on their own shifts.
func Shift(p domain.Principal, action Action, target domain.Shift) Decision {
	if p.IsAdmin() {
		return SameOrganization(p, target.OrganizationID, "Not enough permissions to "+verb(action)+" this shift")
	}
	if target.EmployeeID == p.ID && target.OrganizationID == p.OrganizationID {
		return Allow()
	}
	return Deny("Cannot " + verb(action) + " shift for another employee")
}

// Screenshot governs screenshots with the same scoping as shifts.
func Screenshot(p domain.Principal, action Action, target domain.Screenshot) Decision {
	if p.IsAdmin() {
		return SameOrganization(p, target.OrganizationID, "Not enough permissions to "+verb(action)+" this screenshot")
	}
	if target.EmployeeID == p.ID && target.OrganizationID == p.OrganizationID {
		return Allow()
	}
	return Deny("Cannot " + verb(action) + " screenshot for another employee")
}

// TrackFor governs whose time p may record: employees only their own, admins any employee of their organization.
func TrackFor(p domain.Principal, employee domain.Employee, resource string) Decision {
	if p.IsAdmin() {
		return SameOrganization(p, employee.OrganizationID, "Not enough permissions to create "+resource+" for this employee")
	}
	if employee.ID == p.ID {
		return Allow()
	}
	return Deny("Cannot create " + resource + " for another employee")
}

// TrackOnProject governs recording time against a project.
func TrackOnProject(p domain.Principal, project domain.Project) Decision {
	const reason = "Not enough permissions to track time for this project"
	if p.IsAdmin() {
		return SameOrganization(p, project.OrganizationID, reason)
	}
	if project.OrganizationID == p.OrganizationID && IsMember(p, project.Employees, project.Teams, project.CreatorID) {
		return Allow()
	}
	return Deny(reason)
}

// TrackOnTask governs recording time against a task.
func TrackOnTask(p domain.Principal, task domain.Task) Decision {
	const reason = "Not enough permissions to track time for this task"
	if p.IsAdmin() {
		return SameOrganization(p, task.OrganizationID, reason)
	}
	if task.OrganizationID == p.OrganizationID && IsMember(p, task.Employees, task.Teams, task.CreatorID) {
		return Allow()
	}
	return Deny(reason)
}

func verb(action Action) string {
	if action == Read {
		return "access"
	}
	return string(action)
}

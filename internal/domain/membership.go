package domain

// EntityKind names a linkable entity type.
type EntityKind string

const (
	EntityEmployee EntityKind = "employee"
	EntityTeam     EntityKind = "team"
	EntityProject  EntityKind = "project"
	EntityTask     EntityKind = "task"
	EntityShift    EntityKind = "shift"
)

// Link names a many-to-many relationship seen from its owning side.
type Link string

const (
	LinkEmployeeProjects Link = "employee.projects"
	LinkProjectEmployees Link = "project.employees"
	LinkProjectTeams     Link = "project.teams"
	LinkTaskEmployees    Link = "task.employees"
	LinkTaskTeams        Link = "task.teams"
)

// Owner returns the entity kind that owns the link.
func (l Link) Owner() EntityKind {
	switch l {
	case LinkEmployeeProjects:
		return EntityEmployee
	case LinkProjectEmployees, LinkProjectTeams:
		return EntityProject
	case LinkTaskEmployees, LinkTaskTeams:
		return EntityTask
	}
	return ""
}

// Member returns the entity kind on the candidate side of the link.
func (l Link) Member() EntityKind {
	switch l {
	case LinkEmployeeProjects:
		return EntityProject
	case LinkProjectEmployees, LinkTaskEmployees:
		return EntityEmployee
	case LinkProjectTeams, LinkTaskTeams:
		return EntityTeam
	}
	return ""
}

// Valid reports whether l is a known link.
func (l Link) Valid() bool { return l.Owner() != "" }

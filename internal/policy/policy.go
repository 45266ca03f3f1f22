// Package policy decides whether a principal may act on a target entity.
// Rules are pure: callers fetch the target and pass it in.
package policy

import (
	"net/http"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
)

// Action is an operation on a resource.
type Action string

const (
	Read   Action = "read"
	Create Action = "create"
	Update Action = "update"
	Delete Action = "delete"
)

// Decision is the outcome of a rule.
type Decision struct {
	Allowed bool
	Reason  string
	// conflict marks denials that are state preconditions rather than missing authority.
	conflict bool
}

// Allow returns a permitting decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny returns a refusing decision with reason.
func Deny(reason string) Decision { return Decision{Reason: reason} }

// Err converts a denial to an application error, or nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.conflict {
		return apperr.Conflict(http.StatusBadRequest, d.Reason)
	}
	return apperr.Forbidden(d.Reason)
}

// SameOrganization is the admin-org rule.
func SameOrganization(p domain.Principal, organizationID, reason string) Decision {
	if organizationID != "" && organizationID == p.OrganizationID {
		return Allow()
	}
	return Deny(reason)
}

// AdminOnly denies every employee.
func AdminOnly(p domain.Principal, reason string) Decision {
	if p.IsAdmin() {
		return Allow()
	}
	return Deny(reason)
}

// IsMember reports whether p belongs to a member set directly, through its team, or as creator.
func IsMember(p domain.Principal, employees, teams []string, creatorID string) bool {
	if creatorID != "" && creatorID == p.ID {
		return true
	}
	for _, id := range employees {
		if id == p.ID {
			return true
		}
	}
	if p.TeamID == "" {
		return false
	}
	for _, id := range teams {
		if id == p.TeamID {
			return true
		}
	}
	return false
}

package domain

// PrincipalKind discriminates the two kinds of authenticated actor.
type PrincipalKind string

const (
	PrincipalAdmin    PrincipalKind = "admin"
	PrincipalEmployee PrincipalKind = "employee"
)

// TokenKind names the credential a principal presented.
type TokenKind string

const (
	TokenAccess TokenKind = "access"
	TokenAPIKey TokenKind = "api_key"
)

// Principal is the resolved actor of a request. Kind is fixed at resolution time.
type Principal struct {
	Kind           PrincipalKind
	ID             string
	OrganizationID string
	TeamID         string
	TokenKind      TokenKind
}

// IsAdmin reports whether the principal is an organization admin.
func (p Principal) IsAdmin() bool { return p.Kind == PrincipalAdmin }

// IsEmployee reports whether the principal is an employee.
func (p Principal) IsEmployee() bool { return p.Kind == PrincipalEmployee }

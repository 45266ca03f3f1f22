package domain

// Organization is the tenant boundary every other entity belongs to.
type Organization struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

// Admin has full authority inside one organization.
type Admin struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	PasswordHash   string `json:"-"`
	OrganizationID string `json:"organizationId"`
	SealedAPIKey   string `json:"-"`
	CreatedAt      int64  `json:"createdAt"`
}

// Team groups employees inside an organization.
type Team struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	OrganizationID string `json:"organizationId"`
	CreatedAt      int64  `json:"createdAt"`
}

package domain

import "time"

// OrganizationStatus represents the plan status of an organization.
type OrganizationStatus string

// Organization plan statuses.
const (
	OrganizationStatusActive    OrganizationStatus = "active"
	OrganizationStatusSuspended OrganizationStatus = "suspended"
	OrganizationStatusTrial     OrganizationStatus = "trial"
)

// IsValid checks if the organization status is valid.
func (s OrganizationStatus) IsValid() bool {
	switch s {
	case OrganizationStatusActive, OrganizationStatusSuspended, OrganizationStatusTrial:
		return true
	}
	return false
}

// IsListed reports whether the organization appears in the public directory.
func (s OrganizationStatus) IsListed() bool {
	return s == OrganizationStatusActive || s == OrganizationStatusTrial
}

// Organization owns services; incidents belong to it only transitively
// through services. Its overall operational status is never persisted,
// it is always aggregated on read from its services' statuses.
type Organization struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Description      string             `json:"description"`
	Website          string             `json:"website,omitempty"`
	Industry         string             `json:"industry,omitempty"`
	CompanySize      string             `json:"company_size,omitempty"`
	Phone            string             `json:"phone,omitempty"`
	Address          string             `json:"address,omitempty"`
	SubscriptionCode string             `json:"-"`
	Status           OrganizationStatus `json:"status"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

package domain

import "time"

// ServiceStatus represents the operational status of a service.
type ServiceStatus string

// Service statuses.
const (
	ServiceStatusOperational   ServiceStatus = "operational"
	ServiceStatusDegraded      ServiceStatus = "degraded"
	ServiceStatusPartialOutage ServiceStatus = "partial_outage"
	ServiceStatusMajorOutage   ServiceStatus = "major_outage"
	ServiceStatusMaintenance   ServiceStatus = "maintenance"
)

// IsValid checks if the service status is valid.
func (s ServiceStatus) IsValid() bool {
	switch s {
	case ServiceStatusOperational, ServiceStatusDegraded,
		ServiceStatusPartialOutage, ServiceStatusMajorOutage,
		ServiceStatusMaintenance:
		return true
	}
	return false
}

// Service represents a monitored component of an organization.
//
// Status is derived from the service's active incidents and persisted
// write-through; it may also be set directly by an admin (maintenance is
// only ever set that way). UptimePercentage is tracked independently and
// is not derived from incidents.
type Service struct {
	ID               string        `json:"id"`
	OrganizationID   string        `json:"organization_id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Status           ServiceStatus `json:"status"`
	UptimePercentage float64       `json:"uptime_percentage"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

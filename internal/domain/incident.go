package domain

import "time"

type IncidentStatus string

const (
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusIdentified    IncidentStatus = "identified"
	IncidentStatusMonitoring    IncidentStatus = "monitoring"
	IncidentStatusResolved      IncidentStatus = "resolved"
)

// IsValid checks if the incident status is valid.
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusInvestigating, IncidentStatusIdentified,
		IncidentStatusMonitoring, IncidentStatusResolved:
		return true
	}
	return false
}

type IncidentImpact string

const (
	IncidentImpactLow      IncidentImpact = "low"
	IncidentImpactMedium   IncidentImpact = "medium"
	IncidentImpactHigh     IncidentImpact = "high"
	IncidentImpactCritical IncidentImpact = "critical"
)

// IsValid checks if the incident impact is valid.
func (i IncidentImpact) IsValid() bool {
	switch i {
	case IncidentImpactLow, IncidentImpactMedium,
		IncidentImpactHigh, IncidentImpactCritical:
		return true
	}
	return false
}

// Incident represents a disruption affecting exactly one service.
//
// Invariant: ResolvedAt is non-nil iff Status == resolved. The description
// is an append-only log: status updates with a message append a timestamped
// note, never overwrite earlier text.
type Incident struct {
	ID          string         `json:"id"`
	ServiceID   string         `json:"service_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      IncidentStatus `json:"status"`
	Impact      IncidentImpact `json:"impact"`
	CreatedBy   string         `json:"created_by"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsActive reports whether the incident still affects its service.
func (i *Incident) IsActive() bool {
	return i.Status != IncidentStatusResolved
}

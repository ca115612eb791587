// Package status derives service and organization operational status
// from the set of open incidents.
package status

import "github.com/statuskite/statuskite/internal/domain"

// impactRank is the single total order over incident impact, least to
// most severe. Both the mapper and the timeline legend rank impacts
// through this table; it must not be duplicated elsewhere.
var impactRank = map[domain.IncidentImpact]int{
	domain.IncidentImpactLow:      1,
	domain.IncidentImpactMedium:   2,
	domain.IncidentImpactHigh:     3,
	domain.IncidentImpactCritical: 4,
}

// ImpactRank returns the severity rank of an impact. Higher is more
// severe; unknown impacts rank below low.
func ImpactRank(impact domain.IncidentImpact) int {
	return impactRank[impact]
}

// ImpactsBySeverity lists impacts most severe first.
var ImpactsBySeverity = []domain.IncidentImpact{
	domain.IncidentImpactCritical,
	domain.IncidentImpactHigh,
	domain.IncidentImpactMedium,
	domain.IncidentImpactLow,
}

// statusPrecedence orders service statuses for organization aggregation,
// most severe first. This is intentionally a separate order from
// impactRank: maintenance is a valid service status but is never
// incident-derived, so it ranks below the outage tiers and above plain
// operational.
var statusPrecedence = []domain.ServiceStatus{
	domain.ServiceStatusMajorOutage,
	domain.ServiceStatusPartialOutage,
	domain.ServiceStatusDegraded,
	domain.ServiceStatusMaintenance,
	domain.ServiceStatusOperational,
}

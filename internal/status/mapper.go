package status

import "github.com/statuskite/statuskite/internal/domain"

// FromIncidents maps a service's active incidents to its operational
// status. The most severe impact present wins: critical → major_outage,
// high → partial_outage, medium or low → degraded. With no active
// incidents the service is operational.
//
// Pure and total: no side effects, resolved incidents in the input are
// ignored, and maintenance is never returned (it can only be set by a
// direct status edit).
func FromIncidents(incidents []domain.Incident) domain.ServiceStatus {
	worst := 0
	for i := range incidents {
		if !incidents[i].IsActive() {
			continue
		}
		if r := ImpactRank(incidents[i].Impact); r > worst {
			worst = r
		}
	}

	switch {
	case worst >= ImpactRank(domain.IncidentImpactCritical):
		return domain.ServiceStatusMajorOutage
	case worst >= ImpactRank(domain.IncidentImpactHigh):
		return domain.ServiceStatusPartialOutage
	case worst >= ImpactRank(domain.IncidentImpactLow):
		return domain.ServiceStatusDegraded
	default:
		return domain.ServiceStatusOperational
	}
}

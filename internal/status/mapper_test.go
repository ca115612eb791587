package status

import (
	"testing"

	"github.com/statuskite/statuskite/internal/domain"
	"github.com/stretchr/testify/assert"
)

func active(impact domain.IncidentImpact) domain.Incident {
	return domain.Incident{Status: domain.IncidentStatusInvestigating, Impact: impact}
}

func TestFromIncidents(t *testing.T) {
	tests := []struct {
		name      string
		incidents []domain.Incident
		want      domain.ServiceStatus
	}{
		{
			name:      "no incidents is operational",
			incidents: nil,
			want:      domain.ServiceStatusOperational,
		},
		{
			name:      "single critical is major outage",
			incidents: []domain.Incident{active(domain.IncidentImpactCritical)},
			want:      domain.ServiceStatusMajorOutage,
		},
		{
			name:      "single high is partial outage",
			incidents: []domain.Incident{active(domain.IncidentImpactHigh)},
			want:      domain.ServiceStatusPartialOutage,
		},
		{
			name:      "single medium is degraded",
			incidents: []domain.Incident{active(domain.IncidentImpactMedium)},
			want:      domain.ServiceStatusDegraded,
		},
		{
			name:      "single low is degraded",
			incidents: []domain.Incident{active(domain.IncidentImpactLow)},
			want:      domain.ServiceStatusDegraded,
		},
		{
			name: "max severity wins over lower tiers",
			incidents: []domain.Incident{
				active(domain.IncidentImpactLow),
				active(domain.IncidentImpactCritical),
				active(domain.IncidentImpactMedium),
			},
			want: domain.ServiceStatusMajorOutage,
		},
		{
			name: "low plus medium stays degraded",
			incidents: []domain.Incident{
				active(domain.IncidentImpactLow),
				active(domain.IncidentImpactMedium),
			},
			want: domain.ServiceStatusDegraded,
		},
		{
			name: "resolved incidents are ignored",
			incidents: []domain.Incident{
				{Status: domain.IncidentStatusResolved, Impact: domain.IncidentImpactCritical},
			},
			want: domain.ServiceStatusOperational,
		},
		{
			name: "resolved critical does not mask active medium",
			incidents: []domain.Incident{
				{Status: domain.IncidentStatusResolved, Impact: domain.IncidentImpactCritical},
				active(domain.IncidentImpactMedium),
			},
			want: domain.ServiceStatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromIncidents(tt.incidents))
		})
	}
}

func TestImpactRank_Ordering(t *testing.T) {
	assert.Greater(t, ImpactRank(domain.IncidentImpactCritical), ImpactRank(domain.IncidentImpactHigh))
	assert.Greater(t, ImpactRank(domain.IncidentImpactHigh), ImpactRank(domain.IncidentImpactMedium))
	assert.Greater(t, ImpactRank(domain.IncidentImpactMedium), ImpactRank(domain.IncidentImpactLow))
	assert.Greater(t, ImpactRank(domain.IncidentImpactLow), ImpactRank(domain.IncidentImpact("unknown")))
}

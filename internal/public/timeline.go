// Package public serves the unauthenticated status page and incident
// timeline of an organization.
package public

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/pkg/metrics"
	"github.com/statuskite/statuskite/internal/status"
)

// DefaultWindowDays is the timeline window used when the caller does
// not ask for one.
const DefaultWindowDays = 30

// impactColors maps incident impact to the hex color rendered on the
// timeline. Presentation metadata is embedded at computation time so
// consumers never rank impacts themselves.
var impactColors = map[domain.IncidentImpact]string{
	domain.IncidentImpactCritical: "#dc2626",
	domain.IncidentImpactHigh:     "#ea580c",
	domain.IncidentImpactMedium:   "#ca8a04",
	domain.IncidentImpactLow:      "#16a34a",
}

const defaultColor = "#6b7280"

// ImpactColor returns the timeline color for an impact level.
func ImpactColor(impact domain.IncidentImpact) string {
	if color, ok := impactColors[impact]; ok {
		return color
	}
	return defaultColor
}

// Block is one incident's rendered time span on the timeline.
type Block struct {
	IncidentID    string                `json:"incident_id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Impact        domain.IncidentImpact `json:"impact"`
	Status        domain.IncidentStatus `json:"status"`
	Color         string                `json:"color"`
	StartTime     time.Time             `json:"start_time"`
	EndTime       time.Time             `json:"end_time"`
	DurationHours float64               `json:"duration_hours"`
	IsOngoing     bool                  `json:"is_ongoing"`
}

// ServiceTimeline groups one service's in-window incidents.
type ServiceTimeline struct {
	ServiceID   string               `json:"service_id"`
	ServiceName string               `json:"service_name"`
	Status      domain.ServiceStatus `json:"status"`
	Blocks      []Block              `json:"blocks"`
}

// Summary aggregates the window's incidents across the organization.
// MeanResolutionHours covers resolved incidents only; ongoing ones are
// excluded from both numerator and denominator.
type Summary struct {
	TotalIncidents      int     `json:"total_incidents"`
	CriticalCount       int     `json:"critical_count"`
	HighCount           int     `json:"high_count"`
	OngoingCount        int     `json:"ongoing_count"`
	MeanResolutionHours float64 `json:"mean_resolution_hours"`
}

// LegendEntry pairs an impact level with its timeline color.
type LegendEntry struct {
	Impact domain.IncidentImpact `json:"impact"`
	Color  string                `json:"color"`
}

// TimelineReport is the full timeline of an organization over a window.
type TimelineReport struct {
	OrganizationID   string            `json:"organization_id"`
	OrganizationName string            `json:"organization_name"`
	WindowDays       int               `json:"window_days"`
	GeneratedAt      time.Time         `json:"generated_at"`
	Services         []ServiceTimeline `json:"services"`
	Summary          Summary           `json:"summary"`
	Legend           []LegendEntry     `json:"legend"`
}

// Builder builds incident timeline reports.
type Builder struct {
	repo Repository
}

// NewBuilder creates a new timeline builder.
func NewBuilder(repo Repository) *Builder {
	return &Builder{repo: repo}
}

// Build renders the incident timeline of an organization over the last
// windowDays days. The evaluation instant is sampled once and reused
// for every open incident's end time, so durations within one report
// are internally consistent.
func (b *Builder) Build(ctx context.Context, identifier string, windowDays int) (*TimelineReport, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	org, err := b.repo.GetOrganization(ctx, identifier)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -windowDays)

	services, err := b.repo.ListServices(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	incidents, err := b.repo.ListIncidentsSince(ctx, org.ID, since)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}

	blocksByService := make(map[string][]Block)
	var summary Summary
	var resolvedHours float64
	var resolvedCount int

	for i := range incidents {
		incident := &incidents[i]
		block := buildBlock(incident, now)
		blocksByService[incident.ServiceID] = append(blocksByService[incident.ServiceID], block)

		summary.TotalIncidents++
		switch incident.Impact {
		case domain.IncidentImpactCritical:
			summary.CriticalCount++
		case domain.IncidentImpactHigh:
			summary.HighCount++
		}
		if block.IsOngoing {
			summary.OngoingCount++
		} else {
			resolvedHours += block.DurationHours
			resolvedCount++
		}
	}
	if resolvedCount > 0 {
		summary.MeanResolutionHours = round2(resolvedHours / float64(resolvedCount))
	}

	report := &TimelineReport{
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		WindowDays:       windowDays,
		GeneratedAt:      now,
		Services:         make([]ServiceTimeline, 0, len(services)),
		Summary:          summary,
		Legend:           legend(),
	}
	for i := range services {
		service := &services[i]
		blocks := blocksByService[service.ID]
		if blocks == nil {
			blocks = make([]Block, 0)
		}
		report.Services = append(report.Services, ServiceTimeline{
			ServiceID:   service.ID,
			ServiceName: service.Name,
			Status:      service.Status,
			Blocks:      blocks,
		})
	}

	metrics.TimelineBuilds.Inc()
	return report, nil
}

func buildBlock(incident *domain.Incident, now time.Time) Block {
	end := now
	ongoing := incident.ResolvedAt == nil
	if !ongoing {
		end = *incident.ResolvedAt
	}
	return Block{
		IncidentID:    incident.ID,
		Title:         incident.Title,
		Description:   incident.Description,
		Impact:        incident.Impact,
		Status:        incident.Status,
		Color:         ImpactColor(incident.Impact),
		StartTime:     incident.CreatedAt,
		EndTime:       end,
		DurationHours: round2(end.Sub(incident.CreatedAt).Hours()),
		IsOngoing:     ongoing,
	}
}

// legend lists impact colors most severe first, following the one
// severity ranking.
func legend() []LegendEntry {
	entries := make([]LegendEntry, 0, len(status.ImpactsBySeverity))
	for _, impact := range status.ImpactsBySeverity {
		entries = append(entries, LegendEntry{Impact: impact, Color: ImpactColor(impact)})
	}
	return entries
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

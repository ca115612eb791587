package notify

import "time"

// EventType identifies what happened to an incident.
type EventType string

// Incident event types.
const (
	EventIncidentCreated       EventType = "incident_created"
	EventIncidentStatusChanged EventType = "incident_status_changed"
	EventIncidentResolved      EventType = "incident_resolved"
)

// QueueStatus represents the delivery state of a queue item.
type QueueStatus string

// Queue statuses.
const (
	QueueStatusPending    QueueStatus = "pending"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusSent       QueueStatus = "sent"
	QueueStatusFailed     QueueStatus = "failed"
)

// QueueItem is one pending webhook delivery.
type QueueItem struct {
	ID            string
	ChannelID     string
	IncidentID    string
	EventType     EventType
	Payload       Payload
	Status        QueueStatus
	Attempts      int
	MaxAttempts   int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	SentAt        *time.Time
}

// QueueStats counts queue items per delivery state.
type QueueStats struct {
	Pending    int
	Processing int
	Sent       int
	Failed     int
}

// Payload is the event document delivered to webhook endpoints. It is
// stored verbatim in the queue so retries resend exactly what was
// enqueued.
type Payload struct {
	Event            EventType `json:"event"`
	IncidentID       string    `json:"incident_id"`
	IncidentTitle    string    `json:"incident_title"`
	IncidentStatus   string    `json:"incident_status"`
	IncidentImpact   string    `json:"incident_impact"`
	ServiceID        string    `json:"service_id"`
	ServiceName      string    `json:"service_name"`
	OrganizationID   string    `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	OccurredAt       time.Time `json:"occurred_at"`
}

package notify

import (
	"context"
	"time"

	"github.com/statuskite/statuskite/internal/domain"
)

// ServiceContext names the service and organization an incident event
// belongs to, for payload construction and channel fan-out.
type ServiceContext struct {
	ServiceID        string
	ServiceName      string
	OrganizationID   string
	OrganizationName string
}

// Repository defines the interface for webhook channel and delivery
// queue storage.
type Repository interface {
	// Channel CRUD, scoped to an organization.
	CreateChannel(ctx context.Context, channel *domain.WebhookChannel) error
	GetChannel(ctx context.Context, organizationID, channelID string) (*domain.WebhookChannel, error)
	ListChannels(ctx context.Context, organizationID string) ([]domain.WebhookChannel, error)
	UpdateChannel(ctx context.Context, channel *domain.WebhookChannel) error
	DeleteChannel(ctx context.Context, organizationID, channelID string) error

	// GetChannelByID is unscoped; the worker trusts queue rows.
	GetChannelByID(ctx context.Context, channelID string) (*domain.WebhookChannel, error)
	ListEnabledChannels(ctx context.Context, organizationID string) ([]domain.WebhookChannel, error)

	GetServiceContext(ctx context.Context, serviceID string) (*ServiceContext, error)

	// Queue operations. FetchPending claims due items so concurrent
	// workers never double-deliver.
	Enqueue(ctx context.Context, items []QueueItem) error
	FetchPending(ctx context.Context, limit int) ([]*QueueItem, error)
	MarkAsSent(ctx context.Context, itemID string) error
	MarkAsFailed(ctx context.Context, itemID string, cause error) error
	MarkForRetry(ctx context.Context, itemID string, cause error, nextAttemptAt time.Time) error
	GetQueueStats(ctx context.Context) (*QueueStats, error)
}

// Package postgres provides PostgreSQL implementation of the notify repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/notify"
)

// Repository implements the notify.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const channelColumns = `id, organization_id, name, url, is_enabled, created_at, updated_at`

func scanChannel(row pgx.Row, channel *domain.WebhookChannel) error {
	return row.Scan(
		&channel.ID,
		&channel.OrganizationID,
		&channel.Name,
		&channel.URL,
		&channel.IsEnabled,
		&channel.CreatedAt,
		&channel.UpdatedAt,
	)
}

// CreateChannel creates a new webhook channel.
func (r *Repository) CreateChannel(ctx context.Context, channel *domain.WebhookChannel) error {
	query := `
		INSERT INTO webhook_channels (organization_id, name, url, is_enabled)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		channel.OrganizationID,
		channel.Name,
		channel.URL,
		channel.IsEnabled,
	).Scan(&channel.ID, &channel.CreatedAt, &channel.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return notify.ErrNameTaken
		}
		return fmt.Errorf("create channel: %w", err)
	}
	return nil
}

// GetChannel retrieves a webhook channel scoped to an organization.
func (r *Repository) GetChannel(ctx context.Context, organizationID, channelID string) (*domain.WebhookChannel, error) {
	query := `SELECT ` + channelColumns + ` FROM webhook_channels WHERE organization_id = $1 AND id = $2`

	var channel domain.WebhookChannel
	if err := scanChannel(r.db.QueryRow(ctx, query, organizationID, channelID), &channel); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notify.ErrChannelNotFound
		}
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return &channel, nil
}

// GetChannelByID retrieves a webhook channel without organization scoping.
func (r *Repository) GetChannelByID(ctx context.Context, channelID string) (*domain.WebhookChannel, error) {
	query := `SELECT ` + channelColumns + ` FROM webhook_channels WHERE id = $1`

	var channel domain.WebhookChannel
	if err := scanChannel(r.db.QueryRow(ctx, query, channelID), &channel); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notify.ErrChannelNotFound
		}
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return &channel, nil
}

// ListChannels retrieves all webhook channels of an organization.
func (r *Repository) ListChannels(ctx context.Context, organizationID string) ([]domain.WebhookChannel, error) {
	query := `
		SELECT ` + channelColumns + `
		FROM webhook_channels
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`
	return r.listChannels(ctx, query, organizationID)
}

// ListEnabledChannels retrieves the organization's enabled webhook channels.
func (r *Repository) ListEnabledChannels(ctx context.Context, organizationID string) ([]domain.WebhookChannel, error) {
	query := `
		SELECT ` + channelColumns + `
		FROM webhook_channels
		WHERE organization_id = $1 AND is_enabled
		ORDER BY created_at
	`
	return r.listChannels(ctx, query, organizationID)
}

func (r *Repository) listChannels(ctx context.Context, query string, args ...any) ([]domain.WebhookChannel, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	channels := make([]domain.WebhookChannel, 0)
	for rows.Next() {
		var channel domain.WebhookChannel
		if err := scanChannel(rows, &channel); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channels: %w", err)
	}
	return channels, nil
}

// UpdateChannel updates an existing webhook channel.
func (r *Repository) UpdateChannel(ctx context.Context, channel *domain.WebhookChannel) error {
	query := `
		UPDATE webhook_channels
		SET name = $3, url = $4, is_enabled = $5, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		channel.OrganizationID,
		channel.ID,
		channel.Name,
		channel.URL,
		channel.IsEnabled,
	).Scan(&channel.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notify.ErrChannelNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return notify.ErrNameTaken
		}
		return fmt.Errorf("update channel: %w", err)
	}
	return nil
}

// DeleteChannel removes a webhook channel. Queued deliveries cascade at
// the schema level.
func (r *Repository) DeleteChannel(ctx context.Context, organizationID, channelID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM webhook_channels WHERE organization_id = $1 AND id = $2`,
		organizationID, channelID,
	)
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notify.ErrChannelNotFound
	}
	return nil
}

// GetServiceContext resolves the service and organization an incident
// event belongs to.
func (r *Repository) GetServiceContext(ctx context.Context, serviceID string) (*notify.ServiceContext, error) {
	query := `
		SELECT s.id, s.name, o.id, o.name
		FROM services s
		JOIN organizations o ON o.id = s.organization_id
		WHERE s.id = $1
	`
	var out notify.ServiceContext
	err := r.db.QueryRow(ctx, query, serviceID).Scan(
		&out.ServiceID,
		&out.ServiceName,
		&out.OrganizationID,
		&out.OrganizationName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notify.ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service context: %w", err)
	}
	return &out, nil
}

// Enqueue inserts queue items in one batch.
func (r *Repository) Enqueue(ctx context.Context, items []notify.QueueItem) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO notification_queue (id, channel_id, incident_id, event_type, payload, status, max_attempts)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
	`
	for i := range items {
		item := &items[i]
		batch.Queue(query, item.ID, item.ChannelID, item.IncidentID, item.EventType, item.Payload, item.MaxAttempts)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("enqueue notification: %w", err)
		}
	}
	return nil
}

// FetchPending claims up to limit due deliveries. Claimed rows move to
// processing so a concurrent worker cannot pick them up again.
func (r *Repository) FetchPending(ctx context.Context, limit int) ([]*notify.QueueItem, error) {
	query := `
		UPDATE notification_queue
		SET status = 'processing', updated_at = NOW()
		WHERE id IN (
			SELECT id FROM notification_queue
			WHERE status = 'pending' AND next_attempt_at <= NOW()
			ORDER BY next_attempt_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, channel_id, incident_id, event_type, payload, status, attempts, max_attempts, next_attempt_at, last_error, created_at, updated_at, sent_at
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch pending: %w", err)
	}
	defer rows.Close()

	items := make([]*notify.QueueItem, 0)
	for rows.Next() {
		var item notify.QueueItem
		err := rows.Scan(
			&item.ID,
			&item.ChannelID,
			&item.IncidentID,
			&item.EventType,
			&item.Payload,
			&item.Status,
			&item.Attempts,
			&item.MaxAttempts,
			&item.NextAttemptAt,
			&item.LastError,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.SentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan queue item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue items: %w", err)
	}
	return items, nil
}

// MarkAsSent finalizes a successful delivery.
func (r *Repository) MarkAsSent(ctx context.Context, itemID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notification_queue
		SET status = 'sent', sent_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, itemID)
	if err != nil {
		return fmt.Errorf("mark as sent: %w", err)
	}
	return nil
}

// MarkAsFailed finalizes a delivery that will not be retried.
func (r *Repository) MarkAsFailed(ctx context.Context, itemID string, cause error) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notification_queue
		SET status = 'failed', attempts = attempts + 1, last_error = $2, updated_at = NOW()
		WHERE id = $1
	`, itemID, cause.Error())
	if err != nil {
		return fmt.Errorf("mark as failed: %w", err)
	}
	return nil
}

// MarkForRetry returns a delivery to the queue for a later attempt.
func (r *Repository) MarkForRetry(ctx context.Context, itemID string, cause error, nextAttemptAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notification_queue
		SET status = 'pending', attempts = attempts + 1, last_error = $2, next_attempt_at = $3, updated_at = NOW()
		WHERE id = $1
	`, itemID, cause.Error(), nextAttemptAt)
	if err != nil {
		return fmt.Errorf("mark for retry: %w", err)
	}
	return nil
}

// GetQueueStats counts queue items per delivery state.
func (r *Repository) GetQueueStats(ctx context.Context) (*notify.QueueStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'processing'),
			COUNT(*) FILTER (WHERE status = 'sent'),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM notification_queue
	`
	var stats notify.QueueStats
	err := r.db.QueryRow(ctx, query).Scan(&stats.Pending, &stats.Processing, &stats.Sent, &stats.Failed)
	if err != nil {
		return nil, fmt.Errorf("get queue stats: %w", err)
	}
	return &stats, nil
}

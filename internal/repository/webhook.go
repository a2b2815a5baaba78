package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hookstash/hookstash/internal/model"
)

// ErrWebhookNotFound indicates no webhook record exists for the id.
var ErrWebhookNotFound = errors.New("webhook not found")

// CreateWebhook inserts an immutable webhook record.
func (r *Repository) CreateWebhook(ctx context.Context, webhook *model.Webhook) error {
	query := `
		INSERT INTO webhooks (id, source, event, payload, received_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		webhook.ID,
		webhook.Source,
		webhook.Event,
		webhook.Payload,
		webhook.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}

	return nil
}

// GetWebhookByID retrieves a webhook record by ID.
func (r *Repository) GetWebhookByID(ctx context.Context, id string) (*model.Webhook, error) {
	query := `
		SELECT id, source, event, payload, received_at
		FROM webhooks
		WHERE id = $1
	`

	var webhook model.Webhook
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&webhook.ID,
		&webhook.Source,
		&webhook.Event,
		&webhook.Payload,
		&webhook.ReceivedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWebhookNotFound
		}
		return nil, fmt.Errorf("failed to get webhook: %w", err)
	}

	return &webhook, nil
}

// ListWebhooks retrieves one page of webhook records ordered by received_at
// descending. Records sharing a timestamp are ordered by id descending so
// the ordering stays deterministic across pages.
func (r *Repository) ListWebhooks(ctx context.Context, offset, limit int) ([]*model.Webhook, error) {
	query := `
		SELECT id, source, event, payload, received_at
		FROM webhooks
		ORDER BY received_at DESC, id DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []*model.Webhook
	for rows.Next() {
		var webhook model.Webhook
		if err := rows.Scan(
			&webhook.ID,
			&webhook.Source,
			&webhook.Event,
			&webhook.Payload,
			&webhook.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan webhook: %w", err)
		}
		webhooks = append(webhooks, &webhook)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate webhooks: %w", err)
	}

	return webhooks, nil
}

// CountWebhooks returns the total number of stored webhook records.
func (r *Repository) CountWebhooks(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM webhooks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count webhooks: %w", err)
	}
	return count, nil
}

// DeleteWebhook removes a webhook record. Returns ErrWebhookNotFound if no
// row matched.
func (r *Repository) DeleteWebhook(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM webhooks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWebhookNotFound
	}
	return nil
}

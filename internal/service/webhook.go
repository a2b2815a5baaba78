package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hookstash/hookstash/internal/metrics"
	"github.com/hookstash/hookstash/internal/model"
	"github.com/hookstash/hookstash/internal/repository"
)

// Webhook service errors.
var (
	ErrSourceRequired  = errors.New("source is required")
	ErrEventRequired   = errors.New("event is required")
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidLimit    = errors.New("limit must be at least 1")
	ErrWebhookNotFound = errors.New("webhook not found")
)

// WebhookStore is the persistence gateway for webhook records.
type WebhookStore interface {
	CreateWebhook(ctx context.Context, webhook *model.Webhook) error
	GetWebhookByID(ctx context.Context, id string) (*model.Webhook, error)
	ListWebhooks(ctx context.Context, offset, limit int) ([]*model.Webhook, error)
	CountWebhooks(ctx context.Context) (int64, error)
	DeleteWebhook(ctx context.Context, id string) error
}

// ListWebhooksResult is one page of webhook records plus pagination metadata.
type ListWebhooksResult struct {
	Webhooks   []*model.Webhook
	Pagination model.Pagination
}

// WebhookService handles webhook ingestion and listing.
type WebhookService struct {
	store   WebhookStore
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(store WebhookStore, logger *slog.Logger, recorder metrics.Recorder) *WebhookService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &WebhookService{
		store:   store,
		logger:  logger.With("service", "webhook"),
		metrics: recorder,
	}
}

// Ingest validates and persists an inbound event, returning the assigned
// record. The payload is stored opaquely; no deduplication and no schema
// checks.
func (s *WebhookService) Ingest(ctx context.Context, source, event string, payload json.RawMessage) (*model.Webhook, error) {
	if source == "" {
		return nil, ErrSourceRequired
	}
	if event == "" {
		return nil, ErrEventRequired
	}

	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	webhook := &model.Webhook{
		ID:         ulid.Make().String(),
		Source:     source,
		Event:      event,
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}

	if err := s.store.CreateWebhook(ctx, webhook); err != nil {
		return nil, fmt.Errorf("store webhook: %w", err)
	}

	s.metrics.IncWebhookIngested(source)
	s.logger.Info("webhook ingested",
		"webhook_id", webhook.ID,
		"source", source,
		"event", event,
	)

	return webhook, nil
}

// GetByID returns a stored webhook record or ErrWebhookNotFound.
func (s *WebhookService) GetByID(ctx context.Context, id string) (*model.Webhook, error) {
	webhook, err := s.store.GetWebhookByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrWebhookNotFound) {
			return nil, ErrWebhookNotFound
		}
		return nil, err
	}
	return webhook, nil
}

// List returns one page of records, most recent first, plus pagination
// metadata. Zero values take the defaults (page 1, limit 10); the limit is
// capped at the maximum. The total count is queried independently of the
// page window.
func (s *WebhookService) List(ctx context.Context, page, limit int) (*ListWebhooksResult, error) {
	if page == 0 {
		page = model.DefaultPage
	}
	if limit == 0 {
		limit = model.DefaultLimit
	}
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	if limit > model.MaxLimit {
		limit = model.MaxLimit
	}

	offset := (page - 1) * limit

	webhooks, err := s.store.ListWebhooks(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}

	total, err := s.store.CountWebhooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count webhooks: %w", err)
	}

	return &ListWebhooksResult{
		Webhooks:   webhooks,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}

// Count returns the total number of stored webhook records.
func (s *WebhookService) Count(ctx context.Context) (int64, error) {
	return s.store.CountWebhooks(ctx)
}

// Delete removes a webhook record. Administrative only; ingestion never
// deletes.
func (s *WebhookService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteWebhook(ctx, id); err != nil {
		if errors.Is(err, repository.ErrWebhookNotFound) {
			return ErrWebhookNotFound
		}
		return err
	}

	s.logger.Info("webhook deleted", "webhook_id", id)
	return nil
}

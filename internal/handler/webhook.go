package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hookstash/hookstash/internal/handler/dto"
	"github.com/hookstash/hookstash/internal/service"
)

// WebhookHandler handles webhook ingestion and listing endpoints.
type WebhookHandler struct {
	svc    *service.WebhookService
	logger *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(svc *service.WebhookService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		svc:    svc,
		logger: logger.With("handler", "webhook"),
	}
}

// Create handles POST /webhooks.
func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	webhook, err := h.svc.Ingest(r.Context(), req.Source, req.Event, req.Payload)
	if err != nil {
		h.handleWebhookError(w, err)
		return
	}

	writeData(w, http.StatusCreated, dto.CreateWebhookResponse{ID: webhook.ID}, "Webhook received")
}

// List handles GET /webhooks. Page and limit violations are rejected here,
// before the service is reached.
func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, ok := parsePositiveInt(query.Get("page"))
	if !ok {
		writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}

	limit, ok := parsePositiveInt(query.Get("limit"))
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	result, err := h.svc.List(r.Context(), page, limit)
	if err != nil {
		h.handleWebhookError(w, err)
		return
	}

	writeData(w, http.StatusOK, dto.ToListWebhooksResponse(result.Webhooks, result.Pagination), "")
}

// Get handles GET /webhooks/{id}.
func (h *WebhookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	webhook, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.handleWebhookError(w, err)
		return
	}

	writeData(w, http.StatusOK, dto.ToWebhookResponse(webhook), "")
}

// Delete handles DELETE /webhooks/{id}.
func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.handleWebhookError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parsePositiveInt parses an optional positive integer query parameter.
// An empty value yields 0, letting the service apply its default.
func parsePositiveInt(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// handleWebhookError maps webhook service errors to HTTP statuses.
func (h *WebhookHandler) handleWebhookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSourceRequired),
		errors.Is(err, service.ErrEventRequired),
		errors.Is(err, service.ErrInvalidPage),
		errors.Is(err, service.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrWebhookNotFound):
		writeError(w, http.StatusNotFound, "Webhook not found")
	default:
		h.logger.Error("webhook request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

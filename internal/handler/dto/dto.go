// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"encoding/json"
	"time"

	"github.com/hookstash/hookstash/internal/model"
)

// Envelope is the uniform wrapper for successful JSON responses.
type Envelope struct {
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message,omitempty"`
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UserResponse is the sanitized user view. The password hash is never
// included.
type UserResponse struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoginResponse is the payload for a successful login.
type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// RefreshResponse is the payload for a successful token rotation.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ToUserResponse converts a User model to its sanitized view.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// CreateWebhookRequest is the body for POST /webhooks.
type CreateWebhookRequest struct {
	Source  string          `json:"source"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// CreateWebhookResponse carries the id assigned to an ingested webhook.
type CreateWebhookResponse struct {
	ID string `json:"id"`
}

// WebhookResponse represents a stored webhook record.
type WebhookResponse struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	Event      string          `json:"event"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// ListWebhooksResponse is a page of webhook records plus pagination
// metadata.
type ListWebhooksResponse struct {
	Data       []WebhookResponse `json:"data"`
	Pagination model.Pagination  `json:"pagination"`
}

// ToWebhookResponse converts a Webhook model to its API view.
func ToWebhookResponse(webhook *model.Webhook) WebhookResponse {
	return WebhookResponse{
		ID:         webhook.ID,
		Source:     webhook.Source,
		Event:      webhook.Event,
		Payload:    webhook.Payload,
		ReceivedAt: webhook.ReceivedAt,
	}
}

// ToListWebhooksResponse converts a listing result to its API view.
func ToListWebhooksResponse(webhooks []*model.Webhook, pagination model.Pagination) ListWebhooksResponse {
	data := make([]WebhookResponse, len(webhooks))
	for i, w := range webhooks {
		data[i] = ToWebhookResponse(w)
	}
	return ListWebhooksResponse{Data: data, Pagination: pagination}
}

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hookstash/hookstash/internal/auth"
	"github.com/hookstash/hookstash/internal/model"
)

type stubValidator struct {
	authCtx *model.AuthContext
	err     error
}

func (s *stubValidator) ValidateAccessToken(token string) (*model.AuthContext, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.authCtx, nil
}

func TestAuth_ValidToken(t *testing.T) {
	validator := &stubValidator{authCtx: &model.AuthContext{UserID: "u1", Username: "alice"}}

	var captured *model.AuthContext
	handler := Auth(validator, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = auth.AuthFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if captured == nil || captured.UserID != "u1" {
		t.Errorf("auth context not injected: %+v", captured)
	}
}

func TestAuth_Failures(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		validator *stubValidator
	}{
		{"missing header", "", &stubValidator{}},
		{"no bearer prefix", "Basic abc", &stubValidator{}},
		{"invalid token", "Bearer bad", &stubValidator{err: errors.New("invalid")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := Auth(tt.validator, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rec.Code)
			}
			if called {
				t.Error("handler must not run on auth failure")
			}
		})
	}
}

//go:build integration

package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/hookstash/hookstash/internal/model"
	"github.com/hookstash/hookstash/internal/testutil"
)

func TestIntegrationRefreshTokenRepository_SaveAndGet(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := testutil.NewTestUser(t, "alice")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	token := &model.RefreshToken{
		Token:     testutil.UniqueID("rt"),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	if err := repo.SaveRefreshToken(ctx, token); err != nil {
		t.Fatalf("SaveRefreshToken failed: %v", err)
	}

	retrieved, err := repo.GetRefreshToken(ctx, token.Token)
	if err != nil {
		t.Fatalf("GetRefreshToken failed: %v", err)
	}
	if retrieved.UserID != user.ID {
		t.Errorf("UserID mismatch: got %q, want %q", retrieved.UserID, user.ID)
	}
	if !retrieved.ExpiresAt.After(time.Now()) {
		t.Error("ExpiresAt should be in the future")
	}
}

func TestIntegrationRefreshTokenRepository_Delete(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := testutil.NewTestUser(t, "alice")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	token := &model.RefreshToken{
		Token:     testutil.UniqueID("rt"),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	if err := repo.SaveRefreshToken(ctx, token); err != nil {
		t.Fatalf("SaveRefreshToken failed: %v", err)
	}

	if err := repo.DeleteRefreshToken(ctx, token.Token); err != nil {
		t.Fatalf("DeleteRefreshToken failed: %v", err)
	}

	if _, err := repo.GetRefreshToken(ctx, token.Token); !errors.Is(err, ErrRefreshTokenNotFound) {
		t.Errorf("expected ErrRefreshTokenNotFound, got: %v", err)
	}

	// Deleting again is a no-op.
	if err := repo.DeleteRefreshToken(ctx, token.Token); err != nil {
		t.Errorf("repeat delete should not fail: %v", err)
	}
}

func TestIntegrationRefreshTokenRepository_DeleteByUser(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := testutil.NewTestUser(t, "alice")
	bob := testutil.NewTestUser(t, "bob")
	for _, u := range []*model.User{alice, bob} {
		if err := repo.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	for i := 0; i < 2; i++ {
		token := &model.RefreshToken{
			Token:     testutil.UniqueID("rt-alice"),
			UserID:    alice.ID,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}
		if err := repo.SaveRefreshToken(ctx, token); err != nil {
			t.Fatalf("SaveRefreshToken failed: %v", err)
		}
	}
	bobToken := &model.RefreshToken{
		Token:     testutil.UniqueID("rt-bob"),
		UserID:    bob.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	if err := repo.SaveRefreshToken(ctx, bobToken); err != nil {
		t.Fatalf("SaveRefreshToken failed: %v", err)
	}

	if err := repo.DeleteRefreshTokensByUser(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteRefreshTokensByUser failed: %v", err)
	}

	count, err := repo.CountRefreshTokens(ctx)
	if err != nil {
		t.Fatalf("CountRefreshTokens failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 remaining token, got %d", count)
	}
	if _, err := repo.GetRefreshToken(ctx, bobToken.Token); err != nil {
		t.Errorf("bob's token should survive: %v", err)
	}
}

func TestIntegrationRefreshTokenRepository_DeleteExpired(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := testutil.NewTestUser(t, "alice")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	expired := &model.RefreshToken{
		Token:     testutil.UniqueID("rt-old"),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	live := &model.RefreshToken{
		Token:     testutil.UniqueID("rt-new"),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	for _, tok := range []*model.RefreshToken{expired, live} {
		if err := repo.SaveRefreshToken(ctx, tok); err != nil {
			t.Fatalf("SaveRefreshToken failed: %v", err)
		}
	}

	removed, err := repo.DeleteExpiredRefreshTokens(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredRefreshTokens failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	if _, err := repo.GetRefreshToken(ctx, live.Token); err != nil {
		t.Errorf("live token should survive: %v", err)
	}
}

func TestIntegrationRefreshTokenRepository_CascadeOnUserDelete(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := testutil.NewTestUser(t, "alice")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	token := &model.RefreshToken{
		Token:     testutil.UniqueID("rt"),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	if err := repo.SaveRefreshToken(ctx, token); err != nil {
		t.Fatalf("SaveRefreshToken failed: %v", err)
	}

	if _, err := repo.Pool().Exec(ctx, "DELETE FROM users WHERE id = $1", user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := repo.GetRefreshToken(ctx, token.Token); !errors.Is(err, ErrRefreshTokenNotFound) {
		t.Errorf("expected cascade delete, got: %v", err)
	}
}

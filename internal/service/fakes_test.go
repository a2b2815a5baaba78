package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hookstash/hookstash/internal/model"
	"github.com/hookstash/hookstash/internal/repository"
)

// fakeUserStore is an in-memory UserStore for tests.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by id
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) UserExistsByUsername(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

// fakeTokenStore is an in-memory RefreshTokenStore for tests.
type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*model.RefreshToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]*model.RefreshToken)}
}

func (f *fakeTokenStore) SaveRefreshToken(_ context.Context, token *model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *token
	f.tokens[token.Token] = &clone
	return nil
}

func (f *fakeTokenStore) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTokenStore) DeleteRefreshToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

func (f *fakeTokenStore) DeleteRefreshTokensByUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, k)
		}
	}
	return nil
}

func (f *fakeTokenStore) DeleteExpiredRefreshTokens(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	now := time.Now()
	for k, t := range f.tokens {
		if t.ExpiresAt.Before(now) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeTokenStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

func (f *fakeTokenStore) has(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[token]
	return ok
}

// fakeWebhookStore is an in-memory WebhookStore for tests. Listing mirrors
// the SQL ordering: received_at descending, id descending on ties.
type fakeWebhookStore struct {
	mu       sync.Mutex
	webhooks map[string]*model.Webhook
}

func newFakeWebhookStore() *fakeWebhookStore {
	return &fakeWebhookStore{webhooks: make(map[string]*model.Webhook)}
}

func (f *fakeWebhookStore) CreateWebhook(_ context.Context, webhook *model.Webhook) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *webhook
	f.webhooks[webhook.ID] = &clone
	return nil
}

func (f *fakeWebhookStore) GetWebhookByID(_ context.Context, id string) (*model.Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.webhooks[id]
	if !ok {
		return nil, repository.ErrWebhookNotFound
	}
	clone := *w
	return &clone, nil
}

func (f *fakeWebhookStore) ListWebhooks(_ context.Context, offset, limit int) ([]*model.Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := make([]*model.Webhook, 0, len(f.webhooks))
	for _, w := range f.webhooks {
		clone := *w
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].ReceivedAt.Equal(all[j].ReceivedAt) {
			return all[i].ReceivedAt.After(all[j].ReceivedAt)
		}
		return all[i].ID > all[j].ID
	})

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeWebhookStore) CountWebhooks(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.webhooks)), nil
}

func (f *fakeWebhookStore) DeleteWebhook(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.webhooks[id]; !ok {
		return repository.ErrWebhookNotFound
	}
	delete(f.webhooks, id)
	return nil
}

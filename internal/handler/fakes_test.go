package handler

import (
	"context"
	"sort"

	"github.com/hookstash/hookstash/internal/model"
	"github.com/hookstash/hookstash/internal/repository"
)

// In-memory stores backing the services under test. Handler tests are
// single-goroutine so no locking is needed here.

type fakeUserStore struct {
	byID       map[string]*model.User
	byUsername map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:       make(map[string]*model.User),
		byUsername: make(map[string]*model.User),
	}
}

func (s *fakeUserStore) CreateUser(ctx context.Context, user *model.User) error {
	if _, ok := s.byUsername[user.Username]; ok {
		return repository.ErrUsernameExists
	}
	u := *user
	s.byID[u.ID] = &u
	s.byUsername[u.Username] = &u
	return nil
}

func (s *fakeUserStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (s *fakeUserStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, ok := s.byUsername[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (s *fakeUserStore) UserExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, ok := s.byUsername[username]
	return ok, nil
}

type fakeTokenStore struct {
	tokens map[string]*model.RefreshToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]*model.RefreshToken)}
}

func (s *fakeTokenStore) SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	t := *token
	s.tokens[t.Token] = &t
	return nil
}

func (s *fakeTokenStore) GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	t, ok := s.tokens[token]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	c := *t
	return &c, nil
}

func (s *fakeTokenStore) DeleteRefreshToken(ctx context.Context, token string) error {
	delete(s.tokens, token)
	return nil
}

func (s *fakeTokenStore) DeleteRefreshTokensByUser(ctx context.Context, userID string) error {
	for k, t := range s.tokens {
		if t.UserID == userID {
			delete(s.tokens, k)
		}
	}
	return nil
}

func (s *fakeTokenStore) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	return 0, nil
}

type fakeWebhookStore struct {
	webhooks map[string]*model.Webhook
}

func newFakeWebhookStore() *fakeWebhookStore {
	return &fakeWebhookStore{webhooks: make(map[string]*model.Webhook)}
}

func (s *fakeWebhookStore) CreateWebhook(ctx context.Context, webhook *model.Webhook) error {
	w := *webhook
	s.webhooks[w.ID] = &w
	return nil
}

func (s *fakeWebhookStore) GetWebhookByID(ctx context.Context, id string) (*model.Webhook, error) {
	w, ok := s.webhooks[id]
	if !ok {
		return nil, repository.ErrWebhookNotFound
	}
	c := *w
	return &c, nil
}

func (s *fakeWebhookStore) ListWebhooks(ctx context.Context, offset, limit int) ([]*model.Webhook, error) {
	all := make([]*model.Webhook, 0, len(s.webhooks))
	for _, w := range s.webhooks {
		c := *w
		all = append(all, &c)
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
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *fakeWebhookStore) CountWebhooks(ctx context.Context) (int64, error) {
	return int64(len(s.webhooks)), nil
}

func (s *fakeWebhookStore) DeleteWebhook(ctx context.Context, id string) error {
	if _, ok := s.webhooks[id]; !ok {
		return repository.ErrWebhookNotFound
	}
	delete(s.webhooks, id)
	return nil
}

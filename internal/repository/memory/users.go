package memory

import (
	"context"
	"sync"

	"github.com/prasertw/voltbook/internal/domain/models"
	"github.com/prasertw/voltbook/internal/repository"
)

// UserStore is an in-memory whitelist used by tests.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]models.UserAccount
}

// NewUserStore builds an empty whitelist.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]models.UserAccount)}
}

// Put seeds one account. The account's ID is the document id.
func (s *UserStore) Put(account models.UserAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[account.ID] = account
}

// GetByID fetches one whitelist entry.
func (s *UserStore) GetByID(_ context.Context, id string) (*models.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &account, nil
}

// List returns every whitelisted account.
func (s *UserStore) List(_ context.Context) ([]models.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.UserAccount, 0, len(s.users))
	for _, account := range s.users {
		out = append(out, account)
	}
	return out, nil
}

// UpdateRole sets the role of one whitelist entry.
func (s *UserStore) UpdateRole(_ context.Context, id string, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.Role = role
	s.users[id] = account
	return nil
}

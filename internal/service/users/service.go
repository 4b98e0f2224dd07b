package users

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/prasertw/voltbook/internal/domain/models"
	"github.com/prasertw/voltbook/internal/repository"
)

// ErrInvalidRole rejects role values outside the known set.
var ErrInvalidRole = errors.New("role must be user or admin")

// Service manages the whitelist of accounts allowed into the system. Role
// checks themselves happen in the auth middleware; this service only reads
// and mutates the stored accounts.
type Service struct {
	store  repository.UserStore
	logger *zap.Logger
}

// NewService wires a user management service instance.
func NewService(store repository.UserStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// List returns every whitelisted account.
func (s *Service) List(ctx context.Context) ([]models.UserAccount, error) {
	return s.store.List(ctx)
}

// Profile fetches one account by document id.
func (s *Service) Profile(ctx context.Context, id string) (*models.UserAccount, error) {
	return s.store.GetByID(ctx, id)
}

// UpdateRole changes an account's role.
func (s *Service) UpdateRole(ctx context.Context, id string, role string) error {
	if role != models.RoleUser && role != models.RoleAdmin {
		return ErrInvalidRole
	}
	if err := s.store.UpdateRole(ctx, id, role); err != nil {
		return err
	}
	s.logger.Info("user role updated", zap.String("id", id), zap.String("role", role))
	return nil
}

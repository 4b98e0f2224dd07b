package repository

import (
	"context"
	"errors"

	"github.com/prasertw/voltbook/internal/domain/models"
)

// ErrUnavailable wraps any store or network failure. Callers surface it to
// the user as retryable; nothing in this codebase retries internally.
var ErrUnavailable = errors.New("store unavailable")

// ErrNotFound is returned by id lookups when no document matches.
var ErrNotFound = errors.New("document not found")

// Filters is a set of field -> value equality constraints for Find. Values
// match with their stored type: a user number stays a string (a leading zero
// is data, not formatting), month and year are ints.
type Filters map[string]any

// RecordStore is the generic document contract for billing records. Find
// returns an unordered result set; ordering is the caller's business.
type RecordStore interface {
	Insert(ctx context.Context, rec models.BillingRecord) (string, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.BillingRecord, error)
	Find(ctx context.Context, filters Filters) ([]models.BillingRecord, error)
}

// UserStore reads and mutates the whitelist collection.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.UserAccount, error)
	List(ctx context.Context) ([]models.UserAccount, error)
	UpdateRole(ctx context.Context, id string, role string) error
}

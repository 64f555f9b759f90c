// Package cache fronts user profile reads with an optional Redis cache.
// Only profiles are cached; balances and transfers are always recomputed.
package cache

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// UserCache resolves user profiles by ID.
type UserCache interface {
	// GetUser returns storage.ErrNotFound (wrapped) for an unknown user.
	GetUser(ctx context.Context, id string) (*models.User, error)

	// GetUsers returns the users that exist among ids, keyed by ID.
	GetUsers(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// Passthrough reads straight from the store.
type Passthrough struct {
	users storage.UserStore
}

var _ UserCache = (*Passthrough)(nil)

// NewPassthrough returns a UserCache with no caching.
func NewPassthrough(users storage.UserStore) *Passthrough {
	return &Passthrough{users: users}
}

func (p *Passthrough) GetUser(ctx context.Context, id string) (*models.User, error) {
	return p.users.GetUserByID(ctx, id)
}

func (p *Passthrough) GetUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	return p.users.GetUsersByIDs(ctx, ids)
}

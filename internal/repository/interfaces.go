package repository

import (
	"context"

	"github.com/jafarshop/stockimport/internal/domain"
)

// IdempotencyKeyRepository defines idempotency key data access methods
type IdempotencyKeyRepository interface {
	// GetByKey returns nil, nil when the key is unknown
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// Repositories aggregates all repositories. IdempotencyKey is nil when no
// database is configured.
type Repositories struct {
	IdempotencyKey IdempotencyKeyRepository
}

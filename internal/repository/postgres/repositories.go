package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/jafarshop/stockimport/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		IdempotencyKey: NewIdempotencyKeyRepository(db, logger),
	}
}

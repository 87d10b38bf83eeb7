package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/confreg/registration-api/internal/domain/entity"
)

// IdempotencyRepository stores the replay keys guarding checkout and
// payment recording. Keys are scoped per user, so GetByKey takes both.
type IdempotencyRepository interface {
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired is run periodically to drop stale keys
	DeleteExpired(ctx context.Context) error
}

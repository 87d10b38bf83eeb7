package repository

import (
	"context"

	domainRepo "github.com/confreg/registration-api/internal/domain/repository"
	"gorm.io/gorm"
)

type ctxKey string

const (
	// TxKey is the context key carrying an open transaction
	TxKey ctxKey = "tx"
)

// WithTx adds a transaction handle to context
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, TxKey, tx)
}

// dbFromContext returns the transaction carried by ctx, or the fallback
// handle when no transaction is open. Every repository method routes its
// queries through this so that operations composed under TxManager.Do
// share one transaction.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(TxKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a new transaction manager
func NewTxManager(db *gorm.DB) domainRepo.TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested calls join the already-open transaction
	if _, ok := ctx.Value(TxKey).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}

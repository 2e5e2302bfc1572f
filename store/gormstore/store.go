// Package gormstore implements the persistence ports over GORM/Postgres.
package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shopverse/storefront-api/store"
)

type Store struct {
	db *gorm.DB
}

// New wraps a GORM connection. The connection must be opened with
// TranslateError enabled so duplicate-key violations surface as
// gorm.ErrDuplicatedKey.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Products() store.ProductStore           { return &productStore{db: s.db} }
func (s *Store) Carts() store.CartStore                 { return &cartStore{db: s.db} }
func (s *Store) Orders() store.OrderStore               { return &orderStore{db: s.db} }
func (s *Store) PaymentEvents() store.PaymentEventStore { return &eventStore{db: s.db} }

// Atomic runs fn in a database transaction. Row locks taken via GetForUpdate
// are held until the transaction commits or rolls back.
func (s *Store) Atomic(ctx context.Context, fn func(store.Stores) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// translate maps GORM errors to the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	default:
		return err
	}
}

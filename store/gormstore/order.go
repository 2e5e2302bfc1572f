package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopverse/storefront-api/models"
	"github.com/shopverse/storefront-api/store"
)

type orderStore struct {
	db *gorm.DB
}

func (s *orderStore) Create(ctx context.Context, o *models.Order) error {
	return translate(s.db.WithContext(ctx).Create(o).Error)
}

func (s *orderStore) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *orderStore) GetForUpdate(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	// The locking clause applies to the orders query; Items load separately
	// and are immutable anyway.
	err := s.db.WithContext(ctx).
		Preload("Items").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *orderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, translate(err)
	}
	return orders, nil
}

func (s *orderStore) Save(ctx context.Context, o *models.Order) error {
	// Omit Items: order lines are immutable after creation.
	return translate(s.db.WithContext(ctx).Omit("Items").Save(o).Error)
}

func (s *orderStore) SetPaymentIntent(ctx context.Context, orderID uint, intentID string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_intent_id", intentID)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type eventStore struct {
	db *gorm.DB
}

func (s *eventStore) Insert(ctx context.Context, ev *models.PaymentEvent) error {
	return translate(s.db.WithContext(ctx).Create(ev).Error)
}

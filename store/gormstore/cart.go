package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/shopverse/storefront-api/models"
	"github.com/shopverse/storefront-api/store"
)

type cartStore struct {
	db *gorm.DB
}

func (s *cartStore) GetByUser(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}

func (s *cartStore) Create(ctx context.Context, c *models.Cart) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *cartStore) FindItem(ctx context.Context, cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartID, itemID).
		First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (s *cartStore) FindItemByProduct(ctx context.Context, cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (s *cartStore) SaveItem(ctx context.Context, item *models.CartItem) error {
	return translate(s.db.WithContext(ctx).Save(item).Error)
}

func (s *cartStore) DeleteItem(ctx context.Context, cartID, itemID uint) error {
	res := s.db.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartID, itemID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *cartStore) ClearItems(ctx context.Context, cartID uint) error {
	return translate(s.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error)
}

// Package checkout turns a validated cart into an immutable order. Stock
// check, stock decrement, order insert and cart clear run as one atomic unit,
// so two concurrent checkouts can never oversubscribe inventory and a failed
// checkout leaves the cart untouched.
package checkout

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopverse/storefront-api/apperr"
	"github.com/shopverse/storefront-api/models"
	"github.com/shopverse/storefront-api/store"
)

type Service struct {
	stores store.Stores
}

func NewService(stores store.Stores) *Service {
	return &Service{stores: stores}
}

// CreateOrder validates and prices the user's cart, decrements stock, persists
// the order and clears the cart in a single transaction. Prices are re-read
// under a row lock at this instant and frozen into the order lines; client
// values are never trusted.
func (s *Service) CreateOrder(ctx context.Context, userID, shippingAddress, notes string) (*models.Order, error) {
	if shippingAddress == "" {
		return nil, apperr.New(apperr.CodeInvalidInput, "shipping address is required")
	}

	var created *models.Order
	err := s.stores.Atomic(ctx, func(tx store.Stores) error {
		cart, err := tx.Carts().GetByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.CodeEmptyCart, "cart is empty")
			}
			return apperr.Wrap(apperr.CodeInternal, "failed to load cart", err)
		}
		if len(cart.Items) == 0 {
			return apperr.New(apperr.CodeEmptyCart, "cart is empty")
		}

		// Lock products in ascending id order; two checkouts sharing products
		// then always acquire locks in the same order and cannot deadlock.
		lines := append([]models.CartItem(nil), cart.Items...)
		sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(lines))

		for _, line := range lines {
			product, err := tx.Products().GetForUpdate(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return apperr.Newf(apperr.CodeInsufficientStock, "product %d is no longer available", line.ProductID)
				}
				return apperr.Wrap(apperr.CodeInternal, "failed to load product", err)
			}
			if !product.IsActive {
				return apperr.Newf(apperr.CodeInsufficientStock, "product %d is no longer available", line.ProductID)
			}
			// All-or-nothing: any shortfall rejects the whole order.
			if line.Quantity > product.Stock {
				return apperr.Newf(apperr.CodeInsufficientStock, "insufficient stock for product %d", product.ID)
			}

			if err := tx.Products().UpdateStock(ctx, product.ID, product.Stock-line.Quantity); err != nil {
				return apperr.Wrap(apperr.CodeInternal, "failed to reserve stock", err)
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			orderItems = append(orderItems, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    line.Quantity,
			})
		}

		order := &models.Order{
			OrderNumber:     newOrderNumber(),
			UserID:          userID,
			Items:           orderItems,
			TotalAmount:     total,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
			ShippingAddress: shippingAddress,
			Notes:           notes,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return apperr.Wrap(apperr.CodeInternal, "failed to create order", err)
		}
		if err := tx.Carts().ClearItems(ctx, cart.ID); err != nil {
			return apperr.Wrap(apperr.CodeInternal, "failed to clear cart", err)
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetOrder loads an order. A non-empty userID enforces ownership: someone
// else's order is indistinguishable from a missing one.
func (s *Service) GetOrder(ctx context.Context, userID string, orderID uint) (*models.Order, error) {
	order, err := s.stores.Orders().Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "order not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load order", err)
	}
	if userID != "" && order.UserID != userID {
		return nil, apperr.New(apperr.CodeNotFound, "order not found")
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.stores.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list orders", err)
	}
	return orders, nil
}

func newOrderNumber() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

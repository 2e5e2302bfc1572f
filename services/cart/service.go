// Package cart implements the cart ledger: the mutable mapping from a user to
// their in-progress (product, quantity) selection.
package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopverse/storefront-api/apperr"
	"github.com/shopverse/storefront-api/models"
	"github.com/shopverse/storefront-api/store"
)

type Service struct {
	stores store.Stores
	// locks linearizes mutations per user so interleaved add/update/remove
	// calls cannot lose updates. Different users proceed in parallel.
	locks sync.Map // userID -> *sync.Mutex
}

func NewService(stores store.Stores) *Service {
	return &Service{stores: stores}
}

func (s *Service) userLock(userID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// GetOrCreate returns the user's cart, creating an empty one on first access.
// Carts are reused indefinitely and never deleted.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.stores.Carts().GetByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load cart", err)
	}

	fresh := &models.Cart{UserID: userID}
	if err := s.stores.Carts().Create(ctx, fresh); err != nil {
		// Lost a create race; the winner's cart is the cart.
		if errors.Is(err, store.ErrDuplicate) {
			return s.stores.Carts().GetByUser(ctx, userID)
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to create cart", err)
	}
	return fresh, nil
}

// AddLine adds quantity of a product to the cart. Quantities for the same
// product sum into a single line; the summed quantity must not exceed current
// stock.
func (s *Service) AddLine(ctx context.Context, userID string, productID uint, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperr.New(apperr.CodeInvalidInput, "quantity must be at least 1")
	}

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	product, err := s.stores.Products().Get(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "product not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load product", err)
	}
	if !product.IsActive {
		// Deactivated products behave as absent.
		return nil, apperr.New(apperr.CodeNotFound, "product not found")
	}

	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.stores.Carts().FindItemByProduct(ctx, cart.ID, productID)
	switch {
	case err == nil:
		newQty := item.Quantity + quantity
		if product.Stock < newQty {
			return nil, apperr.Newf(apperr.CodeOutOfStock, "insufficient stock for %q", product.Name)
		}
		item.Quantity = newQty
		item.AddedAt = time.Now()
		if err := s.stores.Carts().SaveItem(ctx, item); err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, "failed to update cart item", err)
		}
	case errors.Is(err, store.ErrNotFound):
		if product.Stock < quantity {
			return nil, apperr.Newf(apperr.CodeOutOfStock, "insufficient stock for %q", product.Name)
		}
		fresh := &models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   time.Now(),
		}
		if err := s.stores.Carts().SaveItem(ctx, fresh); err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, "failed to add cart item", err)
		}
	default:
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load cart item", err)
	}

	return s.refresh(ctx, userID)
}

// SetLineQuantity replaces a line's quantity. Quantities below 1 are rejected;
// removal is its own operation.
func (s *Service) SetLineQuantity(ctx context.Context, userID string, lineID uint, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperr.New(apperr.CodeInvalidInput, "quantity must be at least 1, use remove instead")
	}

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	cart, err := s.stores.Carts().GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "cart item not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load cart", err)
	}

	item, err := s.stores.Carts().FindItem(ctx, cart.ID, lineID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "cart item not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load cart item", err)
	}

	product, err := s.stores.Products().Get(ctx, item.ProductID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load product", err)
	}
	if product.Stock < quantity {
		return nil, apperr.Newf(apperr.CodeOutOfStock, "insufficient stock for %q", product.Name)
	}

	item.Quantity = quantity
	if err := s.stores.Carts().SaveItem(ctx, item); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to update cart item", err)
	}

	return s.refresh(ctx, userID)
}

// RemoveLine deletes a line from the caller's cart.
func (s *Service) RemoveLine(ctx context.Context, userID string, lineID uint) (*models.Cart, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	cart, err := s.stores.Carts().GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "cart item not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load cart", err)
	}

	if err := s.stores.Carts().DeleteItem(ctx, cart.ID, lineID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "cart item not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to remove cart item", err)
	}

	return s.refresh(ctx, userID)
}

// Clear removes every line. A no-op on an empty or absent cart.
func (s *Service) Clear(ctx context.Context, userID string) error {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	cart, err := s.stores.Carts().GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return apperr.Wrap(apperr.CodeInternal, "failed to load cart", err)
	}
	if err := s.stores.Carts().ClearItems(ctx, cart.ID); err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to clear cart", err)
	}
	return nil
}

// Total quotes the cart at live product prices. This is deliberately distinct
// from the frozen prices captured at order creation.
func (s *Service) Total(ctx context.Context, userID string) (decimal.Decimal, error) {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, item := range cart.Items {
		product, err := s.stores.Products().Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return decimal.Zero, apperr.Wrap(apperr.CodeInternal, "failed to load product", err)
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

func (s *Service) refresh(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.stores.Carts().GetByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to reload cart", err)
	}
	return cart, nil
}

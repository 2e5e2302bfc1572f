// Package store defines the persistence ports the services are written
// against. gormstore implements them over Postgres, memstore over maps for
// unit tests and the dev profile.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/shopverse/storefront-api/models"
)

var (
	// ErrNotFound is returned when an entity does not exist. Implementations
	// translate their own not-found errors to this sentinel.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("store: duplicate key")
)

// ProductFilter mirrors the catalog query surface: only active products,
// optional category/search/price-range filters, sorted and paginated.
type ProductFilter struct {
	Category  string
	Search    string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type ProductPage struct {
	Products   []models.Product `json:"products"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

type ProductStore interface {
	Get(ctx context.Context, id uint) (*models.Product, error)
	// GetForUpdate reads a product under a row lock. Only meaningful inside
	// Atomic; callers own the lock until the transaction ends.
	GetForUpdate(ctx context.Context, id uint) (*models.Product, error)
	UpdateStock(ctx context.Context, id uint, stock int) error
	List(ctx context.Context, f ProductFilter) (*ProductPage, error)
	Create(ctx context.Context, p *models.Product) error
}

type CartStore interface {
	// GetByUser loads the user's cart with items, ErrNotFound if absent.
	GetByUser(ctx context.Context, userID string) (*models.Cart, error)
	Create(ctx context.Context, c *models.Cart) error
	// FindItem locates an item by id within the given cart; ownership is part
	// of the lookup, so a foreign item is ErrNotFound.
	FindItem(ctx context.Context, cartID, itemID uint) (*models.CartItem, error)
	FindItemByProduct(ctx context.Context, cartID, productID uint) (*models.CartItem, error)
	SaveItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID, itemID uint) error
	ClearItems(ctx context.Context, cartID uint) error
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id uint) (*models.Order, error)
	// GetForUpdate reads an order under a row lock. Status transitions must go
	// through it inside Atomic so concurrent mutations cannot act on stale reads.
	GetForUpdate(ctx context.Context, id uint) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	Save(ctx context.Context, o *models.Order) error
	// SetPaymentIntent records the provider's intent reference without touching
	// any other column.
	SetPaymentIntent(ctx context.Context, orderID uint, intentID string) error
}

type PaymentEventStore interface {
	// Insert records a processed provider event; ErrDuplicate on replay.
	Insert(ctx context.Context, ev *models.PaymentEvent) error
}

// Stores bundles the ports. Atomic runs fn inside one transaction: every store
// obtained from the Stores passed to fn operates on that transaction, and any
// error rolls the whole unit back.
type Stores interface {
	Products() ProductStore
	Carts() CartStore
	Orders() OrderStore
	PaymentEvents() PaymentEventStore
	Atomic(ctx context.Context, fn func(Stores) error) error
}

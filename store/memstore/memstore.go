// Package memstore is a map-backed implementation of the persistence ports,
// used by unit tests and the dev profile. Atomic serializes on one mutex and
// restores a snapshot on error, matching the rollback semantics the services
// rely on.
package memstore

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopverse/storefront-api/models"
	"github.com/shopverse/storefront-api/store"
)

type data struct {
	products     map[uint]models.Product
	carts        map[uint]models.Cart
	cartIDByUser map[string]uint
	orders       map[uint]models.Order
	events       map[string]models.PaymentEvent

	nextProductID uint
	nextCartID    uint
	nextItemID    uint
	nextOrderID   uint
	nextLineID    uint
}

func (d *data) clone() *data {
	c := &data{
		products:      make(map[uint]models.Product, len(d.products)),
		carts:         make(map[uint]models.Cart, len(d.carts)),
		cartIDByUser:  make(map[string]uint, len(d.cartIDByUser)),
		orders:        make(map[uint]models.Order, len(d.orders)),
		events:        make(map[string]models.PaymentEvent, len(d.events)),
		nextProductID: d.nextProductID,
		nextCartID:    d.nextCartID,
		nextItemID:    d.nextItemID,
		nextOrderID:   d.nextOrderID,
		nextLineID:    d.nextLineID,
	}
	for id, p := range d.products {
		c.products[id] = p
	}
	for id, cart := range d.carts {
		cart.Items = append([]models.CartItem(nil), cart.Items...)
		c.carts[id] = cart
	}
	for u, id := range d.cartIDByUser {
		c.cartIDByUser[u] = id
	}
	for id, o := range d.orders {
		o.Items = append([]models.OrderItem(nil), o.Items...)
		c.orders[id] = o
	}
	for id, ev := range d.events {
		c.events[id] = ev
	}
	return c
}

type Store struct {
	mu   *sync.Mutex
	d    *data
	inTx bool
}

func New() *Store {
	return &Store{
		mu: &sync.Mutex{},
		d: &data{
			products:     make(map[uint]models.Product),
			carts:        make(map[uint]models.Cart),
			cartIDByUser: make(map[string]uint),
			orders:       make(map[uint]models.Order),
			events:       make(map[string]models.PaymentEvent),
		},
	}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Products() store.ProductStore           { return (*productStore)(s) }
func (s *Store) Carts() store.CartStore                 { return (*cartStore)(s) }
func (s *Store) Orders() store.OrderStore               { return (*orderStore)(s) }
func (s *Store) PaymentEvents() store.PaymentEventStore { return (*eventStore)(s) }

// Atomic holds the store lock for the duration of fn, which makes concurrent
// checkouts fully serialized, and restores the pre-transaction snapshot when
// fn fails.
func (s *Store) Atomic(_ context.Context, fn func(store.Stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.d.clone()
	tx := &Store{mu: s.mu, d: s.d, inTx: true}
	if err := fn(tx); err != nil {
		*s.d = *snap
		return err
	}
	return nil
}

// --- products ---

type productStore Store

func (s *productStore) Get(_ context.Context, id uint) (*models.Product, error) {
	defer (*Store)(s).lock()()
	p, ok := s.d.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *productStore) GetForUpdate(ctx context.Context, id uint) (*models.Product, error) {
	// The whole store is locked inside Atomic, which subsumes a row lock.
	return s.Get(ctx, id)
}

func (s *productStore) UpdateStock(_ context.Context, id uint, stock int) error {
	defer (*Store)(s).lock()()
	p, ok := s.d.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	s.d.products[id] = p
	return nil
}

func (s *productStore) Create(_ context.Context, p *models.Product) error {
	defer (*Store)(s).lock()()
	if p.ID == 0 {
		s.d.nextProductID++
		p.ID = s.d.nextProductID
	} else if p.ID > s.d.nextProductID {
		s.d.nextProductID = p.ID
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.d.products[p.ID] = *p
	return nil
}

func (s *productStore) List(_ context.Context, f store.ProductFilter) (*store.ProductPage, error) {
	defer (*Store)(s).lock()()

	var matched []models.Product
	for _, p := range s.d.products {
		if !p.IsActive {
			continue
		}
		if f.Category != "" && string(p.Category) != f.Category {
			continue
		}
		if f.Search != "" && !matchesSearch(p, f.Search) {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		matched = append(matched, p)
	}

	asc := f.SortOrder == "asc" || f.SortOrder == "ASC"
	sort.Slice(matched, func(i, j int) bool {
		var less bool
		switch f.SortBy {
		case "price":
			less = matched[i].Price.LessThan(matched[j].Price)
		case "name":
			less = matched[i].Name < matched[j].Name
		case "rating":
			less = matched[i].Rating < matched[j].Rating
		default:
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}
	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	return &store.ProductPage{
		Products:   matched[start:end],
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func matchesSearch(p models.Product, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// --- carts ---

type cartStore Store

func (s *cartStore) GetByUser(_ context.Context, userID string) (*models.Cart, error) {
	defer (*Store)(s).lock()()
	id, ok := s.d.cartIDByUser[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cart := s.d.carts[id]
	cart.Items = append([]models.CartItem(nil), cart.Items...)
	return &cart, nil
}

func (s *cartStore) Create(_ context.Context, c *models.Cart) error {
	defer (*Store)(s).lock()()
	if _, exists := s.d.cartIDByUser[c.UserID]; exists {
		return store.ErrDuplicate
	}
	s.d.nextCartID++
	c.ID = s.d.nextCartID
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.d.carts[c.ID] = *c
	s.d.cartIDByUser[c.UserID] = c.ID
	return nil
}

func (s *cartStore) FindItem(_ context.Context, cartID, itemID uint) (*models.CartItem, error) {
	defer (*Store)(s).lock()()
	cart, ok := s.d.carts[cartID]
	if !ok {
		return nil, store.ErrNotFound
	}
	for _, item := range cart.Items {
		if item.ID == itemID {
			return &item, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *cartStore) FindItemByProduct(_ context.Context, cartID, productID uint) (*models.CartItem, error) {
	defer (*Store)(s).lock()()
	cart, ok := s.d.carts[cartID]
	if !ok {
		return nil, store.ErrNotFound
	}
	for _, item := range cart.Items {
		if item.ProductID == productID {
			return &item, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *cartStore) SaveItem(_ context.Context, item *models.CartItem) error {
	defer (*Store)(s).lock()()
	cart, ok := s.d.carts[item.CartID]
	if !ok {
		return store.ErrNotFound
	}
	if item.ID == 0 {
		s.d.nextItemID++
		item.ID = s.d.nextItemID
		cart.Items = append(append([]models.CartItem(nil), cart.Items...), *item)
	} else {
		items := append([]models.CartItem(nil), cart.Items...)
		found := false
		for i := range items {
			if items[i].ID == item.ID {
				items[i] = *item
				found = true
				break
			}
		}
		if !found {
			return store.ErrNotFound
		}
		cart.Items = items
	}
	cart.UpdatedAt = time.Now()
	s.d.carts[cart.ID] = cart
	return nil
}

func (s *cartStore) DeleteItem(_ context.Context, cartID, itemID uint) error {
	defer (*Store)(s).lock()()
	cart, ok := s.d.carts[cartID]
	if !ok {
		return store.ErrNotFound
	}
	items := append([]models.CartItem(nil), cart.Items...)
	for i := range items {
		if items[i].ID == itemID {
			cart.Items = append(items[:i], items[i+1:]...)
			cart.UpdatedAt = time.Now()
			s.d.carts[cart.ID] = cart
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *cartStore) ClearItems(_ context.Context, cartID uint) error {
	defer (*Store)(s).lock()()
	cart, ok := s.d.carts[cartID]
	if !ok {
		return store.ErrNotFound
	}
	cart.Items = nil
	cart.UpdatedAt = time.Now()
	s.d.carts[cartID] = cart
	return nil
}

// --- orders ---

type orderStore Store

func (s *orderStore) Create(_ context.Context, o *models.Order) error {
	defer (*Store)(s).lock()()
	s.d.nextOrderID++
	o.ID = s.d.nextOrderID
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	items := append([]models.OrderItem(nil), o.Items...)
	for i := range items {
		s.d.nextLineID++
		items[i].ID = s.d.nextLineID
		items[i].OrderID = o.ID
	}
	o.Items = items
	s.d.orders[o.ID] = *o
	return nil
}

func (s *orderStore) Get(_ context.Context, id uint) (*models.Order, error) {
	defer (*Store)(s).lock()()
	o, ok := s.d.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return &o, nil
}

func (s *orderStore) GetForUpdate(ctx context.Context, id uint) (*models.Order, error) {
	// The whole store is locked inside Atomic, which subsumes a row lock.
	return s.Get(ctx, id)
}

func (s *orderStore) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	defer (*Store)(s).lock()()
	var out []models.Order
	for _, o := range s.d.orders {
		if o.UserID == userID {
			o.Items = append([]models.OrderItem(nil), o.Items...)
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *orderStore) Save(_ context.Context, o *models.Order) error {
	defer (*Store)(s).lock()()
	existing, ok := s.d.orders[o.ID]
	if !ok {
		return store.ErrNotFound
	}
	o.UpdatedAt = time.Now()
	// Order lines are immutable after creation.
	o.Items = existing.Items
	s.d.orders[o.ID] = *o
	return nil
}

func (s *orderStore) SetPaymentIntent(_ context.Context, orderID uint, intentID string) error {
	defer (*Store)(s).lock()()
	o, ok := s.d.orders[orderID]
	if !ok {
		return store.ErrNotFound
	}
	o.PaymentIntentID = intentID
	o.UpdatedAt = time.Now()
	s.d.orders[orderID] = o
	return nil
}

// --- payment events ---

type eventStore Store

func (s *eventStore) Insert(_ context.Context, ev *models.PaymentEvent) error {
	defer (*Store)(s).lock()()
	if _, exists := s.d.events[ev.EventID]; exists {
		return store.ErrDuplicate
	}
	ev.ProcessedAt = time.Now()
	s.d.events[ev.EventID] = *ev
	return nil
}

package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shopverse/storefront-api/models"
	"github.com/shopverse/storefront-api/store"
)

func seedProduct(t *testing.T, s *Store, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     "Desk Lamp",
		Price:    decimal.RequireFromString("25.00"),
		Stock:    stock,
		IsActive: true,
	}
	if err := s.Products().Create(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func TestAtomicCommits(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := seedProduct(t, s, 5)

	err := s.Atomic(ctx, func(tx store.Stores) error {
		return tx.Products().UpdateStock(ctx, p.ID, 1)
	})
	if err != nil {
		t.Fatalf("atomic: %v", err)
	}

	got, err := s.Products().Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stock != 1 {
		t.Errorf("stock = %d, want 1", got.Stock)
	}
}

func TestAtomicRollsBackEveryWrite(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := seedProduct(t, s, 5)

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx store.Stores) error {
		if err := tx.Products().UpdateStock(ctx, p.ID, 0); err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, &models.Order{UserID: "u1"}); err != nil {
			return err
		}
		if err := tx.PaymentEvents().Insert(ctx, &models.PaymentEvent{EventID: "evt_1"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	got, err := s.Products().Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stock != 5 {
		t.Errorf("stock = %d, rollback must restore the snapshot", got.Stock)
	}
	orders, err := s.Orders().ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("order survived a rollback: %+v", orders)
	}
	// the event id must be insertable again after the rollback
	if err := s.PaymentEvents().Insert(ctx, &models.PaymentEvent{EventID: "evt_1"}); err != nil {
		t.Errorf("insert after rollback: %v", err)
	}
}

func TestCartCreateEnforcesOneCartPerUser(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Carts().Create(ctx, &models.Cart{UserID: "u1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := s.Carts().Create(ctx, &models.Cart{UserID: "u1"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("err = %v, want store.ErrDuplicate", err)
	}
}

func TestPaymentEventInsertIsUnique(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.PaymentEvents().Insert(ctx, &models.PaymentEvent{EventID: "evt_1"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := s.PaymentEvents().Insert(ctx, &models.PaymentEvent{EventID: "evt_1"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("err = %v, want store.ErrDuplicate", err)
	}
}

func TestOrderSaveKeepsLinesImmutable(t *testing.T) {
	s := New()
	ctx := context.Background()

	o := &models.Order{
		UserID: "u1",
		Items: []models.OrderItem{
			{ProductID: 1, ProductName: "Desk Lamp", UnitPrice: decimal.RequireFromString("25.00"), Quantity: 2},
		},
	}
	if err := s.Orders().Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}

	o.Status = models.OrderStatusProcessing
	o.Items = nil
	if err := s.Orders().Save(ctx, o); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Orders().Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.OrderStatusProcessing {
		t.Errorf("status = %s", got.Status)
	}
	if len(got.Items) != 1 {
		t.Errorf("order lines must survive a save: %+v", got.Items)
	}
}

func TestSetPaymentIntentLeavesOtherFieldsAlone(t *testing.T) {
	s := New()
	ctx := context.Background()

	o := &models.Order{UserID: "u1", PaymentStatus: models.PaymentStatusPaid}
	if err := s.Orders().Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Orders().SetPaymentIntent(ctx, o.ID, "pi_1"); err != nil {
		t.Fatalf("set payment intent: %v", err)
	}

	got, err := s.Orders().GetForUpdate(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PaymentIntentID != "pi_1" || got.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("unexpected order: %+v", got)
	}

	if err := s.Orders().SetPaymentIntent(ctx, 404, "pi_1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want store.ErrNotFound", err)
	}
}

func TestListPaginatesAndSorts(t *testing.T) {
	s := New()
	ctx := context.Background()
	prices := []string{"10.00", "30.00", "20.00"}
	for i, price := range prices {
		p := &models.Product{
			Name:     string(rune('a' + i)),
			Price:    decimal.RequireFromString(price),
			Stock:    1,
			IsActive: true,
		}
		if err := s.Products().Create(ctx, p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	// inactive products never list
	if err := s.Products().Create(ctx, &models.Product{Name: "hidden", Price: decimal.RequireFromString("5.00")}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	page, err := s.Products().List(ctx, store.ProductFilter{SortBy: "price", SortOrder: "asc", Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 {
		t.Fatalf("total = %d, pages = %d", page.Total, page.TotalPages)
	}
	if len(page.Products) != 2 || !page.Products[0].Price.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("unexpected first page: %+v", page.Products)
	}

	page, err = s.Products().List(ctx, store.ProductFilter{SortBy: "price", SortOrder: "asc", Limit: 2, Page: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page.Products) != 1 || !page.Products[0].Price.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("unexpected second page: %+v", page.Products)
	}
}

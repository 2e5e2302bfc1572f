package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shopverse/storefront-api/apperr"
	"github.com/shopverse/storefront-api/models"
	"github.com/shopverse/storefront-api/store/memstore"
)

func seedProduct(t *testing.T, s *memstore.Store, name string, price string, stock int, active bool) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: active,
	}
	require.NoError(t, s.Products().Create(context.Background(), p))
	return p
}

func TestGetOrCreateIsLazyAndReused(t *testing.T) {
	s := memstore.New()
	svc := NewService(s)
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, first.Items)

	second, err := svc.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestAddLineSumsQuantitiesIntoOneLine(t *testing.T) {
	s := memstore.New()
	svc := NewService(s)
	ctx := context.Background()
	p := seedProduct(t, s, "Desk Lamp", "25.00", 10, true)

	_, err := svc.AddLine(ctx, "u1", p.ID, 2)
	require.NoError(t, err)
	cart, err := svc.AddLine(ctx, "u1", p.ID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	require.Equal(t, p.ID, cart.Items[0].ProductID)
	require.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddLineRejectsBadInput(t *testing.T) {
	s := memstore.New()
	svc := NewService(s)
	ctx := context.Background()
	p := seedProduct(t, s, "Desk Lamp", "25.00", 3, true)
	inactive := seedProduct(t, s, "Retired Lamp", "19.00", 3, false)

	_, err := svc.AddLine(ctx, "u1", p.ID, 0)
	require.True(t, apperr.Is(err, apperr.CodeInvalidInput))

	_, err = svc.AddLine(ctx, "u1", 999, 1)
	require.True(t, apperr.Is(err, apperr.CodeNotFound))

	_, err = svc.AddLine(ctx, "u1", inactive.ID, 1)
	require.True(t, apperr.Is(err, apperr.CodeNotFound))

	// 2 + 2 > stock of 3
	_, err = svc.AddLine(ctx, "u1", p.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, "u1", p.ID, 2)
	require.True(t, apperr.Is(err, apperr.CodeOutOfStock))

	// the failed add must not have changed the line
	cart, err := svc.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 2, cart.Items[0].Quantity)
}

func TestSetLineQuantity(t *testing.T) {
	s := memstore.New()
	svc := NewService(s)
	ctx := context.Background()
	p := seedProduct(t, s, "Desk Lamp", "25.00", 5, true)

	cart, err := svc.AddLine(ctx, "u1", p.ID, 1)
	require.NoError(t, err)
	lineID := cart.Items[0].ID

	cart, err = svc.SetLineQuantity(ctx, "u1", lineID, 4)
	require.NoError(t, err)
	require.Equal(t, 4, cart.Items[0].Quantity)

	_, err = svc.SetLineQuantity(ctx, "u1", lineID, 6)
	require.True(t, apperr.Is(err, apperr.CodeOutOfStock))

	_, err = svc.SetLineQuantity(ctx, "u1", lineID, 0)
	require.True(t, apperr.Is(err, apperr.CodeInvalidInput))

	// a line in someone else's cart is not found
	_, err = svc.SetLineQuantity(ctx, "u2", lineID, 1)
	require.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestRemoveLineAndClear(t *testing.T) {
	s := memstore.New()
	svc := NewService(s)
	ctx := context.Background()
	p1 := seedProduct(t, s, "Desk Lamp", "25.00", 5, true)
	p2 := seedProduct(t, s, "Mug", "9.50", 5, true)

	cart, err := svc.AddLine(ctx, "u1", p1.ID, 1)
	require.NoError(t, err)
	lineID := cart.Items[0].ID
	_, err = svc.AddLine(ctx, "u1", p2.ID, 2)
	require.NoError(t, err)

	cart, err = svc.RemoveLine(ctx, "u1", lineID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	_, err = svc.RemoveLine(ctx, "u1", lineID)
	require.True(t, apperr.Is(err, apperr.CodeNotFound))

	require.NoError(t, svc.Clear(ctx, "u1"))
	cart, err = svc.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, cart.Items)

	// clearing an empty or absent cart is a no-op
	require.NoError(t, svc.Clear(ctx, "u1"))
	require.NoError(t, svc.Clear(ctx, "nobody"))
}

func TestTotalUsesLivePrices(t *testing.T) {
	s := memstore.New()
	svc := NewService(s)
	ctx := context.Background()
	p := seedProduct(t, s, "Desk Lamp", "25.00", 5, true)

	_, err := svc.AddLine(ctx, "u1", p.ID, 2)
	require.NoError(t, err)

	total, err := svc.Total(ctx, "u1")
	require.NoError(t, err)
	require.True(t, total.Equal(decimal.RequireFromString("50.00")), "got %s", total)

	// a price change is reflected immediately in the quote
	p.Price = decimal.RequireFromString("30.00")
	require.NoError(t, s.Products().Create(ctx, p))

	total, err = svc.Total(ctx, "u1")
	require.NoError(t, err)
	require.True(t, total.Equal(decimal.RequireFromString("60.00")), "got %s", total)
}

func TestConcurrentAddsForSameUserDoNotLoseUpdates(t *testing.T) {
	s := memstore.New()
	svc := NewService(s)
	ctx := context.Background()
	p := seedProduct(t, s, "Desk Lamp", "25.00", 100, true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddLine(ctx, "u1", p.ID, 1)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	cart, err := svc.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 20, cart.Items[0].Quantity)
}

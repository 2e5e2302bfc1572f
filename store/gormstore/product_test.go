package gormstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shopverse/storefront-api/store"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return New(db), mock
}

func TestProductGetNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
		WithArgs(42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Products().Get(context.Background(), 42)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want store.ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestProductGetForUpdateTakesRowLock(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* FOR UPDATE`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock", "is_active"}).
			AddRow(7, "Desk Lamp", "25.00", 3, true))

	p, err := s.Products().GetForUpdate(context.Background(), 7)
	if err != nil {
		t.Fatalf("get for update: %v", err)
	}
	if p.Stock != 3 || p.Name != "Desk Lamp" {
		t.Errorf("unexpected product: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestProductUpdateStock(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.Products().UpdateStock(context.Background(), 7, 2); err != nil {
		t.Fatalf("update stock: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestProductListFiltersInactive(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE is_active = \$1`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE is_active = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(true, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock", "is_active"}).
			AddRow(1, "Desk Lamp", "25.00", 3, true))

	page, err := s.Products().List(context.Background(), store.ProductFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || len(page.Products) != 1 || page.TotalPages != 1 {
		t.Errorf("unexpected page: %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestAtomicRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("boom")
	err := s.Atomic(context.Background(), func(store.Stores) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestTranslate(t *testing.T) {
	if got := translate(gorm.ErrRecordNotFound); !errors.Is(got, store.ErrNotFound) {
		t.Errorf("record not found -> %v", got)
	}
	if got := translate(gorm.ErrDuplicatedKey); !errors.Is(got, store.ErrDuplicate) {
		t.Errorf("duplicated key -> %v", got)
	}
	if got := translate(nil); got != nil {
		t.Errorf("nil -> %v", got)
	}
	other := errors.New("connection reset")
	if got := translate(other); !errors.Is(got, other) {
		t.Errorf("other -> %v", got)
	}
}

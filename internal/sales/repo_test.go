package sales

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/pkg/db/models"
	"github.com/retailware/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
)

func setupSalesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	salesTable := `
CREATE TABLE IF NOT EXISTS sales (
  id TEXT PRIMARY KEY,
  number INTEGER NOT NULL UNIQUE,
  branch_id TEXT NOT NULL,
  customer_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL,
  subtotal NUMERIC NOT NULL,
  tax_amount NUMERIC NOT NULL DEFAULT 0,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  paid_amount NUMERIC NOT NULL DEFAULT 0,
  credit_amount NUMERIC NOT NULL DEFAULT 0,
  gift_card_amount NUMERIC NOT NULL DEFAULT 0,
  points_redeemed INTEGER NOT NULL DEFAULT 0,
  points_discount NUMERIC NOT NULL DEFAULT 0,
  points_earned INTEGER NOT NULL DEFAULT 0,
  stock_restored INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`
	saleItems := `
CREATE TABLE IF NOT EXISTS sale_items (
  id TEXT PRIMARY KEY,
  sale_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit TEXT NOT NULL,
  qty NUMERIC NOT NULL,
  unit_price NUMERIC NOT NULL,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	paymentsTable := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  sale_id TEXT NOT NULL,
  method TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  description TEXT,
  received_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(salesTable).Error)
	require.NoError(t, db.Exec(saleItems).Error)
	require.NoError(t, db.Exec(paymentsTable).Error)
	return db
}

func newSale(t *testing.T, db *gorm.DB, number int64) *models.Sale {
	t.Helper()

	sale := &models.Sale{
		ID:            uuid.New(),
		Number:        number,
		BranchID:      uuid.New(),
		Status:        enums.SaleStatusCompleted,
		PaymentStatus: enums.PaymentStatusPaid,
		Subtotal:      decimal.NewFromInt(100),
		Total:         decimal.NewFromInt(100),
		PaidAmount:    decimal.NewFromInt(100),
	}
	require.NoError(t, NewRepository(db).Create(context.Background(), sale))
	return sale
}

func TestRepoNextNumberMonotonic(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewRepository(db)

	first, err := repo.NextNumber(context.Background())
	require.NoError(t, err)

	newSale(t, db, first)
	second, err := repo.NextNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first+1, second)
}

func TestRepoNextNumberSkipsDeletedSales(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewRepository(db)

	number, err := repo.NextNumber(context.Background())
	require.NoError(t, err)
	sale := newSale(t, db, number)
	require.NoError(t, repo.SoftDelete(context.Background(), sale.ID))

	// A deleted sale keeps its receipt number; it is never handed out again.
	next, err := repo.NextNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, number+1, next)
}

func TestRepoSoftDeleteAndRestore(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewRepository(db)

	number, err := repo.NextNumber(context.Background())
	require.NoError(t, err)
	sale := newSale(t, db, number)

	require.NoError(t, repo.SoftDelete(context.Background(), sale.ID))
	_, err = repo.FindByID(context.Background(), sale.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	found, err := repo.FindByIDUnscoped(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.True(t, found.DeletedAt.Valid)

	require.NoError(t, repo.Restore(context.Background(), sale.ID))
	found, err = repo.FindByID(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.False(t, found.DeletedAt.Valid)

	// Restoring a live sale is a state conflict.
	err = repo.Restore(context.Background(), sale.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

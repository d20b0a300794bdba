package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	"github.com/orchardlabs/storefront-backend/pkg/razorpay"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  owner_id TEXT NOT NULL,
  gateway_key_id TEXT,
  gateway_key_secret TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  sell_when_out_of_stock INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  full_name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT NOT NULL,
  shipping_address TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  customer_id TEXT,
  is_paid INTEGER NOT NULL DEFAULT 0,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  order_status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL DEFAULT 'gateway',
  phone TEXT NOT NULL,
  email TEXT NOT NULL,
  address TEXT NOT NULL,
  gateway_order_id TEXT UNIQUE,
  gateway_payment_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  price NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedStore(t *testing.T, db *gorm.DB) *models.Store {
	t.Helper()
	store := &models.Store{Name: "Test Store", OwnerID: uuid.New()}
	require.NoError(t, db.Create(store).Error)
	return store
}

func seedProduct(t *testing.T, db *gorm.DB, storeID uuid.UUID, name, price string, stock int, bypass bool) *models.Product {
	t.Helper()
	product := &models.Product{
		StoreID:            storeID,
		Name:               name,
		Price:              decimal.RequireFromString(price),
		StockQuantity:      stock,
		SellWhenOutOfStock: bypass,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// stubGateway mints predictable remote orders and records calls.
type stubGateway struct {
	orders  int
	lastAmt int64
	err     error
}

func (g *stubGateway) CreateOrder(_ context.Context, params razorpay.OrderParams) (*razorpay.RemoteOrder, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.orders++
	g.lastAmt = params.AmountMinor
	return &razorpay.RemoteOrder{
		ID:          "order_stub_1",
		AmountMinor: params.AmountMinor,
		Currency:    params.Currency,
	}, nil
}

func (g *stubGateway) KeyID() string    { return "rzp_test_key" }
func (g *stubGateway) Currency() string { return "INR" }

type stubResolver struct {
	gateway Gateway
	err     error
}

func (r *stubResolver) ForStore(*models.Store) (Gateway, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.gateway, nil
}

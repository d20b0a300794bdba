package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
)

func setupStoresTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:stores_" + uuid.NewString() + "?mode=memory&cache=shared"
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
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

type stubGate struct {
	err   error
	calls int
}

func (g *stubGate) EnsureCanCreateStore(context.Context, uuid.UUID) error {
	g.calls++
	return g.err
}

func TestCreateStoreHappyPath(t *testing.T) {
	db := setupStoresTestDB(t)
	gate := &stubGate{}
	svc, err := NewService(NewRepository(db), gate)
	require.NoError(t, err)

	userID := uuid.New()
	store, err := svc.CreateStore(context.Background(), userID, CreateStoreInput{Name: "  Hill Goods  "})
	require.NoError(t, err)
	assert.Equal(t, "Hill Goods", store.Name)
	assert.Equal(t, userID, store.OwnerID)
	assert.Equal(t, 1, gate.calls)
}

func TestCreateStoreDeniedByGate(t *testing.T) {
	db := setupStoresTestDB(t)
	gate := &stubGate{err: pkgerrors.New(pkgerrors.CodeForbidden, "quota reached")}
	svc, err := NewService(NewRepository(db), gate)
	require.NoError(t, err)

	_, err = svc.CreateStore(context.Background(), uuid.New(), CreateStoreInput{Name: "Denied"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	count, cerr := NewRepository(db).CountByOwner(context.Background(), uuid.New())
	require.NoError(t, cerr)
	assert.Zero(t, count)
}

func TestCreateStoreRequiresName(t *testing.T) {
	db := setupStoresTestDB(t)
	gate := &stubGate{}
	svc, err := NewService(NewRepository(db), gate)
	require.NoError(t, err)

	_, err = svc.CreateStore(context.Background(), uuid.New(), CreateStoreInput{Name: "   "})
	require.Error(t, err)
	assert.Zero(t, gate.calls, "gate must not run for invalid input")
}

func TestGetOwnedStoreEnforcesOwnership(t *testing.T) {
	db := setupStoresTestDB(t)
	svc, err := NewService(NewRepository(db), &stubGate{})
	require.NoError(t, err)

	owner := uuid.New()
	store, err := svc.CreateStore(context.Background(), owner, CreateStoreInput{Name: "Mine"})
	require.NoError(t, err)

	_, err = svc.GetOwnedStore(context.Background(), owner, store.ID)
	require.NoError(t, err)

	_, err = svc.GetOwnedStore(context.Background(), uuid.New(), store.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	_, err = svc.GetOwnedStore(context.Background(), owner, uuid.New())
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestSetGatewayCredentials(t *testing.T) {
	db := setupStoresTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, &stubGate{})
	require.NoError(t, err)

	owner := uuid.New()
	store, err := svc.CreateStore(context.Background(), owner, CreateStoreInput{Name: "Gateway Store"})
	require.NoError(t, err)

	require.NoError(t, svc.SetGatewayCredentials(context.Background(), owner, store.ID, "rzp_key", "rzp_secret"))

	stored, err := repo.FindByID(context.Background(), store.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasGatewayCredentials())

	// one-sided pair is rejected
	err = svc.SetGatewayCredentials(context.Background(), owner, store.ID, "rzp_key", "")
	require.Error(t, err)

	// empty pair clears the credentials
	require.NoError(t, svc.SetGatewayCredentials(context.Background(), owner, store.ID, "", ""))
	stored, err = repo.FindByID(context.Background(), store.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasGatewayCredentials())
}

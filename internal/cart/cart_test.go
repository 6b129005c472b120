// internal/cart/cart_test.go
package cart

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phstore/internal/platform/apperr"
	"phstore/internal/platform/postgres/postgrestest"
)

func seedUser(t *testing.T, db *sql.DB, email string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(`INSERT INTO users (id, name, email) VALUES ($1, $2, $3)`, id, "Test User", email)
	require.NoError(t, err)
	return id
}

func seedProduct(t *testing.T, db *sql.DB, name string, price int64, stock int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(`
		INSERT INTO products (id, name, price, stock, category_id)
		VALUES ($1, $2, $3, $4, NULL)
	`, id, name, price, stock)
	require.NoError(t, err)
	return id
}

func TestGetOrCreateOpenCart(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()
	userID := seedUser(t, db, "cart-open@example.com")

	first, err := svc.GetOrCreateOpenCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, first.UserID)
	assert.False(t, first.Processed)
	assert.Zero(t, first.Total)

	second, err := svc.GetOrCreateOpenCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "repeated calls must return the same open cart")
}

func TestSetLineItemQuantityMaintainsTotal(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	userID := seedUser(t, db, "cart-total@example.com")
	productID := seedProduct(t, db, "Acetaminophen", 1500, 20)

	cart, err := svc.GetOrCreateOpenCart(ctx, userID)
	require.NoError(t, err)

	cart, err = svc.SetLineItemQuantity(ctx, userID, cart.ID, productID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), cart.Total)

	// Replacing the quantity must not double-count the old contribution.
	cart, err = svc.SetLineItemQuantity(ctx, userID, cart.ID, productID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), cart.Total)

	// Quantity zero removes the line.
	cart, err = svc.SetLineItemQuantity(ctx, userID, cart.ID, productID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cart.Total)

	view, err := svc.ActiveCartView(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestSetLineItemQuantityMultipleProducts(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	userID := seedUser(t, db, "cart-multi@example.com")
	aspirin := seedProduct(t, db, "Aspirin", 800, 50)
	ibuprofen := seedProduct(t, db, "Ibuprofen", 1200, 50)

	cart, err := svc.GetOrCreateOpenCart(ctx, userID)
	require.NoError(t, err)

	_, err = svc.SetLineItemQuantity(ctx, userID, cart.ID, aspirin, 3)
	require.NoError(t, err)
	cart, err = svc.SetLineItemQuantity(ctx, userID, cart.ID, ibuprofen, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3*800+2*1200), cart.Total)

	view, err := svc.ActiveCartView(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, cart.Total, view.Total)
}

func TestSetLineItemQuantityInsufficientStock(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	userID := seedUser(t, db, "cart-stock@example.com")
	productID := seedProduct(t, db, "Vitamin C", 500, 3)

	cart, err := svc.GetOrCreateOpenCart(ctx, userID)
	require.NoError(t, err)

	_, err = svc.SetLineItemQuantity(ctx, userID, cart.ID, productID, 4)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))

	// The failed write must leave the cart untouched.
	cart, err = svc.GetOrCreateOpenCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cart.Total)
}

func TestSetLineItemQuantityValidation(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	userID := seedUser(t, db, "cart-validate@example.com")
	productID := seedProduct(t, db, "Bandages", 300, 10)

	cart, err := svc.GetOrCreateOpenCart(ctx, userID)
	require.NoError(t, err)

	_, err = svc.SetLineItemQuantity(ctx, userID, cart.ID, productID, -1)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	// Zero quantity is only valid for removing an existing line.
	_, err = svc.SetLineItemQuantity(ctx, userID, cart.ID, productID, 0)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	_, err = svc.SetLineItemQuantity(ctx, userID, cart.ID, uuid.New(), 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.SetLineItemQuantity(ctx, userID, uuid.New(), productID, 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSetLineItemQuantityForeignCart(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "cart-owner@example.com")
	intruder := seedUser(t, db, "cart-intruder@example.com")
	productID := seedProduct(t, db, "Thermometer", 9000, 5)

	cart, err := svc.GetOrCreateOpenCart(ctx, owner)
	require.NoError(t, err)

	_, err = svc.SetLineItemQuantity(ctx, intruder, cart.ID, productID, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestRemoveLineItem(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	userID := seedUser(t, db, "cart-remove@example.com")
	aspirin := seedProduct(t, db, "Aspirin", 800, 50)
	gauze := seedProduct(t, db, "Gauze", 400, 50)

	cart, err := svc.GetOrCreateOpenCart(ctx, userID)
	require.NoError(t, err)
	_, err = svc.SetLineItemQuantity(ctx, userID, cart.ID, aspirin, 2)
	require.NoError(t, err)
	_, err = svc.SetLineItemQuantity(ctx, userID, cart.ID, gauze, 3)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveLineItem(ctx, userID, cart.ID, aspirin))

	cart, err = svc.GetOrCreateOpenCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3*400), cart.Total)

	// Removing it again is not found.
	err = svc.RemoveLineItem(ctx, userID, cart.ID, aspirin)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRemoveLineItemForeignCartLooksMissing(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "remove-owner@example.com")
	intruder := seedUser(t, db, "remove-intruder@example.com")
	productID := seedProduct(t, db, "Syrup", 2500, 10)

	cart, err := svc.GetOrCreateOpenCart(ctx, owner)
	require.NoError(t, err)
	_, err = svc.SetLineItemQuantity(ctx, owner, cart.ID, productID, 1)
	require.NoError(t, err)

	// A foreign cart surfaces as not found, not forbidden, so cart ids
	// cannot be probed through this endpoint.
	err = svc.RemoveLineItem(ctx, intruder, cart.ID, productID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestOnlyOneOpenCartPerUser(t *testing.T) {
	db := postgrestest.Setup(t)

	userID := seedUser(t, db, "cart-unique@example.com")

	_, err := db.Exec(`INSERT INTO carts (id, user_id) VALUES ($1, $2)`, uuid.New(), userID)
	require.NoError(t, err)

	// The partial unique index rejects a second open cart outright.
	_, err = db.Exec(`INSERT INTO carts (id, user_id) VALUES ($1, $2)`, uuid.New(), userID)
	require.Error(t, err)

	// A processed cart does not count against the limit.
	_, err = db.Exec(`INSERT INTO carts (id, user_id, processed) VALUES ($1, $2, TRUE)`, uuid.New(), userID)
	require.NoError(t, err)
}

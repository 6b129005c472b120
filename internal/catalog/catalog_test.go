// internal/catalog/catalog_test.go
package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phstore/internal/platform/apperr"
	"phstore/internal/platform/postgres/postgrestest"
)

func TestProductLifecycle(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "Analgesics")
	require.NoError(t, err)

	created, err := svc.CreateProduct(ctx, &Product{
		Name:        "Aspirin",
		Price:       800,
		Stock:       20,
		Description: "100mg tablets",
		CategoryID:  category.ID,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	loaded, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", loaded.Name)
	assert.Equal(t, int64(800), loaded.Price)
	assert.Equal(t, 20, loaded.Stock)
	assert.Equal(t, category.ID, loaded.CategoryID)

	loaded.Name = "Aspirin Forte"
	loaded.Price = 950
	loaded.Stock = 9999 // must be ignored, stock belongs to the ledger
	require.NoError(t, svc.UpdateProduct(ctx, loaded))

	updated, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aspirin Forte", updated.Name)
	assert.Equal(t, int64(950), updated.Price)
	assert.Equal(t, 20, updated.Stock, "updates must not touch stock")

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))
	_, err = svc.GetProduct(ctx, created.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestProductWithoutCategory(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, &Product{Name: "Gauze", Price: 400, Stock: 5})
	require.NoError(t, err)

	loaded, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, loaded.CategoryID)
}

func TestCreateProductValidation(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, &Product{Name: "", Price: 100, Stock: 1})
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	_, err = svc.CreateProduct(ctx, &Product{Name: "Free", Price: 0, Stock: 1})
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	_, err = svc.CreateProduct(ctx, &Product{Name: "Negative", Price: 100, Stock: -1})
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestDeleteProductWithHistoryConflicts(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, &Product{Name: "Ibuprofen", Price: 1200, Stock: 10})
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO stock_history (id, product_id, stock_before, delta, stock_after)
		VALUES ($1, $2, 10, 5, 15)
	`, uuid.New(), created.ID)
	require.NoError(t, err)

	err = svc.DeleteProduct(ctx, created.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestLowStockProducts(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, &Product{Name: "Plenty", Price: 100, Stock: 50})
	require.NoError(t, err)
	low, err := svc.CreateProduct(ctx, &Product{Name: "Scarce", Price: 100, Stock: 3})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, &Product{Name: "Borderline", Price: 100, Stock: lowStockThreshold})
	require.NoError(t, err)

	products, err := svc.LowStockProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, low.ID, products[0].ID)
}

func TestCategoryLifecycle(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, "")
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	category, err := svc.CreateCategory(ctx, "Vitamins")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateCategory(ctx, category.ID, "Supplements"))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.UpdateCategory(ctx, uuid.New(), "X")))

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Supplements", categories[0].Name)

	// A category with products refuses deletion.
	_, err = svc.CreateProduct(ctx, &Product{Name: "Vitamin C", Price: 500, Stock: 10, CategoryID: category.ID})
	require.NoError(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(svc.DeleteCategory(ctx, category.ID)))
}

func TestListProducts(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, &Product{Name: "Zinc", Price: 300, Stock: 10})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, &Product{Name: "Aspirin", Price: 800, Stock: 10})
	require.NoError(t, err)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Aspirin", products[0].Name, "products are listed by name")
	assert.Equal(t, "Zinc", products[1].Name)
}

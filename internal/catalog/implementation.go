// internal/catalog/implementation.go
package catalog

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"phstore/internal/platform/apperr"
	"phstore/internal/platform/postgres"
)

// service implements the Service interface.
type service struct {
	db *sql.DB
}

// NewService creates a new catalog service instance.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// CreateProduct adds a product to the catalog.
func (s *service) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if p.Name == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "product name is required")
	}
	if p.Price <= 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, "product price must be positive")
	}
	if p.Stock < 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, "product stock cannot be negative")
	}

	p.ID = uuid.New()
	// The category is optional; the zero uuid maps to NULL in storage.
	query := `
		INSERT INTO products (id, name, price, stock, description, image_ref, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '00000000-0000-0000-0000-000000000000'::uuid))
	`
	_, err := s.db.ExecContext(ctx, query, p.ID, p.Name, p.Price, p.Stock, p.Description, p.ImageRef, p.CategoryID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return p, nil
}

// GetProduct retrieves a product by ID.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `
		SELECT id, name, price, stock, description, image_ref,
		       COALESCE(category_id, '00000000-0000-0000-0000-000000000000'::uuid)
		FROM products
		WHERE id = $1
	`
	p := &Product{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.Description,
		&p.ImageRef,
		&p.CategoryID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.Newf(apperr.KindNotFound, "product %s not found", id)
		}
		return nil, apperr.Internal(err)
	}

	return p, nil
}

// ListProducts returns all products ordered by name.
func (s *service) ListProducts(ctx context.Context) ([]*Product, error) {
	query := `
		SELECT id, name, price, stock, description, image_ref,
		       COALESCE(category_id, '00000000-0000-0000-0000-000000000000'::uuid)
		FROM products
		ORDER BY name
	`
	return s.queryProducts(ctx, query)
}

// LowStockProducts returns products below the restock threshold.
func (s *service) LowStockProducts(ctx context.Context) ([]*Product, error) {
	query := `
		SELECT id, name, price, stock, description, image_ref,
		       COALESCE(category_id, '00000000-0000-0000-0000-000000000000'::uuid)
		FROM products
		WHERE stock < $1
		ORDER BY stock
	`
	return s.queryProducts(ctx, query, lowStockThreshold)
}

func (s *service) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p := &Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Description, &p.ImageRef, &p.CategoryID); err != nil {
			return nil, apperr.Internal(err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err)
	}

	return products, nil
}

// UpdateProduct replaces a product's descriptive fields. Stock is owned by
// the inventory ledger and is not touched here.
func (s *service) UpdateProduct(ctx context.Context, p *Product) error {
	if p.Price <= 0 {
		return apperr.New(apperr.KindInvalidArgument, "product price must be positive")
	}

	query := `
		UPDATE products
		SET name = $1, price = $2, description = $3, image_ref = $4,
		    category_id = NULLIF($5, '00000000-0000-0000-0000-000000000000'::uuid)
		WHERE id = $6
	`
	res, err := s.db.ExecContext(ctx, query, p.Name, p.Price, p.Description, p.ImageRef, p.CategoryID, p.ID)
	if err != nil {
		return apperr.Internal(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Newf(apperr.KindNotFound, "product %s not found", p.ID)
	}
	return nil
}

// DeleteProduct removes a product. Products referenced by invoices, carts
// or stock history are protected by restrict-on-delete foreign keys.
func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperr.Wrap(apperr.KindConflict, "product has purchase or stock history", err)
		}
		return apperr.Internal(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Newf(apperr.KindNotFound, "product %s not found", id)
	}
	return nil
}

// CreateCategory adds a category.
func (s *service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	if name == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "category name is required")
	}

	c := &Category{ID: uuid.New(), Name: name}
	_, err := s.db.ExecContext(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`, c.ID, c.Name)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

// ListCategories returns all categories.
func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		c := &Category{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, apperr.Internal(err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory renames a category.
func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, name string) error {
	if name == "" {
		return apperr.New(apperr.KindInvalidArgument, "category name is required")
	}

	res, err := s.db.ExecContext(ctx, `UPDATE categories SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Newf(apperr.KindNotFound, "category %s not found", id)
	}
	return nil
}

// DeleteCategory removes a category.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperr.Wrap(apperr.KindConflict, "category still has products", err)
		}
		return apperr.Internal(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Newf(apperr.KindNotFound, "category %s not found", id)
	}
	return nil
}

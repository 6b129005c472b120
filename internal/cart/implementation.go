// internal/cart/implementation.go
package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"phstore/internal/platform/apperr"
	"phstore/internal/platform/postgres"
)

// service implements the Service interface.
type service struct {
	db *sql.DB
}

// NewService creates a new cart service instance.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// GetOrCreateOpenCart returns the user's unique open cart, creating an
// empty one if none exists. The partial unique index on
// carts(user_id) WHERE NOT processed closes the race between concurrent
// calls: the loser of an insert race re-reads the winner's cart.
func (s *service) GetOrCreateOpenCart(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	cart, err := s.openCart(ctx, s.db, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Internal(err)
	}

	cart = &Cart{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		Total:     0,
		Processed: false,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, created_at, total, processed)
		VALUES ($1, $2, $3, $4, $5)
	`, cart.ID, cart.UserID, cart.CreatedAt, cart.Total, cart.Processed)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			cart, err = s.openCart(ctx, s.db, userID)
			if err != nil {
				return nil, apperr.Internal(err)
			}
			return cart, nil
		}
		return nil, apperr.Internal(err)
	}

	return cart, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *service) openCart(ctx context.Context, q queryRower, userID uuid.UUID) (*Cart, error) {
	cart := &Cart{}
	err := q.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, total, processed
		FROM carts
		WHERE user_id = $1 AND NOT processed
	`, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.Total, &cart.Processed)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// ActiveCartView returns the open cart with its product lines, creating
// the cart first if the user has none.
func (s *service) ActiveCartView(ctx context.Context, userID uuid.UUID) (*View, error) {
	cart, err := s.GetOrCreateOpenCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.price, p.stock, p.description, p.image_ref, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY p.name
	`, cart.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	view := &View{CartID: cart.ID, Total: cart.Total, Lines: []ViewLine{}}
	for rows.Next() {
		var line ViewLine
		if err := rows.Scan(&line.ProductID, &line.Name, &line.Price, &line.Stock, &line.Description, &line.ImageRef, &line.Quantity); err != nil {
			return nil, apperr.Internal(err)
		}
		view.Lines = append(view.Lines, line)
	}
	return view, rows.Err()
}

// SetLineItemQuantity replaces the quantity of a product in the cart and
// keeps the running total consistent. Quantity zero removes an existing
// line; adding a new line with quantity zero is rejected. The cart row is
// locked for the whole read-modify-write so concurrent writers to the same
// cart cannot interleave total updates.
func (s *service) SetLineItemQuantity(ctx context.Context, userID, cartID, productID uuid.UUID, quantity int) (*Cart, error) {
	if quantity < 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, "quantity cannot be negative")
	}

	var cart *Cart
	err := postgres.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		c, err := s.lockCart(ctx, tx, cartID)
		if err != nil {
			return err
		}
		if c.UserID != userID {
			return apperr.New(apperr.KindForbidden, "you do not have permission to modify this cart")
		}

		var price int64
		var stock int
		err = tx.QueryRowContext(ctx, `SELECT price, stock FROM products WHERE id = $1`, productID).Scan(&price, &stock)
		if err == sql.ErrNoRows {
			return apperr.Newf(apperr.KindNotFound, "product %s not found", productID)
		}
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}
		if quantity > stock {
			return apperr.New(apperr.KindInsufficientStock, "not enough stock available")
		}

		var lineID uuid.UUID
		var oldQuantity int
		err = tx.QueryRowContext(ctx, `
			SELECT id, quantity FROM cart_items
			WHERE cart_id = $1 AND product_id = $2
		`, cartID, productID).Scan(&lineID, &oldQuantity)

		switch {
		case err == sql.ErrNoRows:
			if quantity == 0 {
				return apperr.New(apperr.KindInvalidArgument, "cannot add a zero quantity")
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO cart_items (id, cart_id, product_id, quantity)
				VALUES ($1, $2, $3, $4)
			`, uuid.New(), cartID, productID, quantity)
			if err != nil {
				return fmt.Errorf("insert line item: %w", err)
			}
			c.Total += int64(quantity) * price

		case err != nil:
			return fmt.Errorf("load line item: %w", err)

		default:
			c.Total -= int64(oldQuantity) * price
			if quantity == 0 {
				if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, lineID); err != nil {
					return fmt.Errorf("delete line item: %w", err)
				}
			} else {
				if _, err := tx.ExecContext(ctx, `UPDATE cart_items SET quantity = $1 WHERE id = $2`, quantity, lineID); err != nil {
					return fmt.Errorf("update line item: %w", err)
				}
				c.Total += int64(quantity) * price
			}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE carts SET total = $1 WHERE id = $2`, c.Total, c.ID); err != nil {
			return fmt.Errorf("update cart total: %w", err)
		}

		cart = c
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}

	return cart, nil
}

// RemoveLineItem deletes a product line from the cart and decreases the
// total by its contribution. Missing carts, missing lines and foreign
// carts all surface as not found.
func (s *service) RemoveLineItem(ctx context.Context, userID, cartID, productID uuid.UUID) error {
	err := postgres.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		c, err := s.lockCart(ctx, tx, cartID)
		if err != nil {
			return err
		}
		if c.UserID != userID {
			return apperr.New(apperr.KindNotFound, "line item not found in cart")
		}

		var lineID uuid.UUID
		var quantity int
		err = tx.QueryRowContext(ctx, `
			SELECT id, quantity FROM cart_items
			WHERE cart_id = $1 AND product_id = $2
		`, cartID, productID).Scan(&lineID, &quantity)
		if err == sql.ErrNoRows {
			return apperr.New(apperr.KindNotFound, "line item not found in cart")
		}
		if err != nil {
			return fmt.Errorf("load line item: %w", err)
		}

		var price int64
		if err := tx.QueryRowContext(ctx, `SELECT price FROM products WHERE id = $1`, productID).Scan(&price); err != nil {
			return fmt.Errorf("load product price: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, lineID); err != nil {
			return fmt.Errorf("delete line item: %w", err)
		}

		c.Total -= int64(quantity) * price
		if _, err := tx.ExecContext(ctx, `UPDATE carts SET total = $1 WHERE id = $2`, c.Total, c.ID); err != nil {
			return fmt.Errorf("update cart total: %w", err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperr.Internal(err)
	}
	return nil
}

func (s *service) lockCart(ctx context.Context, tx *sql.Tx, cartID uuid.UUID) (*Cart, error) {
	cart := &Cart{}
	err := tx.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, total, processed
		FROM carts
		WHERE id = $1
		FOR UPDATE
	`, cartID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.Total, &cart.Processed)
	if err == sql.ErrNoRows {
		return nil, apperr.Newf(apperr.KindNotFound, "cart %s not found", cartID)
	}
	if err != nil {
		return nil, fmt.Errorf("lock cart row: %w", err)
	}
	return cart, nil
}

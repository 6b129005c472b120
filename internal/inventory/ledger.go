// internal/inventory/ledger.go
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"phstore/internal/platform/apperr"
	"phstore/internal/platform/postgres"
)

// StockAdjustment is one immutable entry in the stock audit trail.
// StockAfter always equals StockBefore + Delta.
type StockAdjustment struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	StockBefore int       `json:"stock_before"`
	Delta       int       `json:"delta"`
	StockAfter  int       `json:"stock_after"`
	AdjustedAt  time.Time `json:"adjusted_at"`
	Reason      string    `json:"reason,omitempty"`
}

// HistoryEntry is an adjustment enriched with the product's current name,
// used by the cross-product history listing.
type HistoryEntry struct {
	StockAdjustment
	ProductName string `json:"product_name"`
}

// Ledger owns product stock counts and the append-only adjustment history.
// Stock and its audit row are always written in the same transaction, so
// stock never moves without a matching history entry.
type Ledger struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewLedger creates a new inventory ledger.
func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{
		db:     db,
		tracer: otel.Tracer("phstore/inventory"),
	}
}

// AdjustStock records a positive stock entry for a product and returns the
// audit row. Outbound decrements go through DecrementForSale instead.
func (l *Ledger) AdjustStock(ctx context.Context, productID uuid.UUID, delta int, reason string) (*StockAdjustment, error) {
	ctx, span := l.tracer.Start(ctx, "inventory.adjust_stock",
		trace.WithAttributes(
			attribute.String("product.id", productID.String()),
			attribute.Int("delta", delta),
		),
	)
	defer span.End()

	if delta <= 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, "adjustment quantity must be a positive number")
	}

	adjustment := &StockAdjustment{
		ID:         uuid.New(),
		ProductID:  productID,
		Delta:      delta,
		AdjustedAt: time.Now().UTC(),
		Reason:     reason,
	}

	err := postgres.Serializable(ctx, l.db, func(tx *sql.Tx) error {
		var current int
		err := tx.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&current)
		if err == sql.ErrNoRows {
			return apperr.Newf(apperr.KindNotFound, "product %s not found", productID)
		}
		if err != nil {
			return fmt.Errorf("lock product row: %w", err)
		}

		adjustment.StockBefore = current
		adjustment.StockAfter = current + delta

		if _, err := tx.ExecContext(ctx, `UPDATE products SET stock = $1 WHERE id = $2`, adjustment.StockAfter, productID); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}

		return l.appendHistory(ctx, tx, adjustment)
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}

	span.SetAttributes(
		attribute.Int("stock.before", adjustment.StockBefore),
		attribute.Int("stock.after", adjustment.StockAfter),
	)
	return adjustment, nil
}

// DecrementForSale atomically takes qty units of a product off the shelf
// inside the caller's transaction. The conditional update fails the whole
// statement when stock would go negative, closing the race between
// concurrent checkouts of the same product.
func (l *Ledger) DecrementForSale(ctx context.Context, tx *sql.Tx, productID uuid.UUID, qty int) error {
	ctx, span := l.tracer.Start(ctx, "inventory.decrement_for_sale",
		trace.WithAttributes(
			attribute.String("product.id", productID.String()),
			attribute.Int("quantity", qty),
		),
	)
	defer span.End()

	if qty <= 0 {
		return apperr.New(apperr.KindInvalidArgument, "sale quantity must be positive")
	}

	var after int
	err := tx.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
		RETURNING stock
	`, productID, qty).Scan(&after)

	if err == sql.ErrNoRows {
		// Either the product is gone or there was not enough stock;
		// look again to tell the caller which.
		var name string
		lookupErr := tx.QueryRowContext(ctx, `SELECT name FROM products WHERE id = $1`, productID).Scan(&name)
		if lookupErr == sql.ErrNoRows {
			return apperr.Newf(apperr.KindNotFound, "product %s not found", productID)
		}
		if lookupErr != nil {
			return fmt.Errorf("lookup product: %w", lookupErr)
		}
		span.SetAttributes(attribute.Bool("stock.insufficient", true))
		return apperr.Newf(apperr.KindInsufficientStock, "not enough stock for product %s", name)
	}
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	adjustment := &StockAdjustment{
		ID:          uuid.New(),
		ProductID:   productID,
		StockBefore: after + qty,
		Delta:       -qty,
		StockAfter:  after,
		AdjustedAt:  time.Now().UTC(),
		Reason:      "sale",
	}
	if err := l.appendHistory(ctx, tx, adjustment); err != nil {
		return err
	}

	span.SetAttributes(attribute.Int("stock.after", after))
	return nil
}

func (l *Ledger) appendHistory(ctx context.Context, tx *sql.Tx, a *StockAdjustment) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO stock_history (id, product_id, stock_before, delta, stock_after, adjusted_at, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.ProductID, a.StockBefore, a.Delta, a.StockAfter, a.AdjustedAt, a.Reason)
	if err != nil {
		return fmt.Errorf("append stock history: %w", err)
	}
	return nil
}

// History lists all adjustments for one product, newest first.
func (l *Ledger) History(ctx context.Context, productID uuid.UUID) ([]*StockAdjustment, error) {
	var exists bool
	if err := l.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return nil, apperr.Internal(err)
	}
	if !exists {
		return nil, apperr.Newf(apperr.KindNotFound, "product %s not found", productID)
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, product_id, stock_before, delta, stock_after, adjusted_at, reason
		FROM stock_history
		WHERE product_id = $1
		ORDER BY adjusted_at DESC
	`, productID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var history []*StockAdjustment
	for rows.Next() {
		a := &StockAdjustment{}
		if err := rows.Scan(&a.ID, &a.ProductID, &a.StockBefore, &a.Delta, &a.StockAfter, &a.AdjustedAt, &a.Reason); err != nil {
			return nil, apperr.Internal(err)
		}
		history = append(history, a)
	}
	return history, rows.Err()
}

// FullHistory lists adjustments across all products, newest first, each
// enriched with the product's current display name.
func (l *Ledger) FullHistory(ctx context.Context) ([]*HistoryEntry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT h.id, h.product_id, h.stock_before, h.delta, h.stock_after, h.adjusted_at, h.reason, p.name
		FROM stock_history h
		JOIN products p ON p.id = h.product_id
		ORDER BY h.adjusted_at DESC
	`)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var history []*HistoryEntry
	for rows.Next() {
		e := &HistoryEntry{}
		if err := rows.Scan(&e.ID, &e.ProductID, &e.StockBefore, &e.Delta, &e.StockAfter, &e.AdjustedAt, &e.Reason, &e.ProductName); err != nil {
			return nil, apperr.Internal(err)
		}
		history = append(history, e)
	}
	return history, rows.Err()
}

// internal/platform/postgres/postgrestest/postgrestest.go
package postgrestest

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

// Setup connects to a PostgreSQL database for testing, applies the schema
// and truncates all tables. It skips the test if no database is reachable.
func Setup(t testing.TB) *sql.DB {
	t.Helper()

	pgUser := getenv("PGUSER", "phstore")
	pgPassword := getenv("PGPASSWORD", "dev_password_change_in_prod")
	pgHost := getenv("PGHOST", "localhost")
	pgPort := getenv("PGPORT", "5432")
	pgDB := getenv("PGDATABASE", "phstore")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pgHost, pgPort, pgUser, pgPassword, pgDB)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open database connection: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("skipping: could not connect to postgres: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	_, err = db.Exec(`
		TRUNCATE TABLE shipments, orders, invoice_items, invoices,
			card_details, paypal_details, transfer_details, payments,
			cart_items, carts, stock_history, products, categories,
			credentials, users CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// schema mirrors migrations/schema.sql; keep the two in sync.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    document_number TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'customer',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS credentials (
    user_id UUID PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
    password_hash TEXT NOT NULL,
    salt TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    price BIGINT NOT NULL CHECK (price > 0),
    stock INT NOT NULL CHECK (stock >= 0),
    description TEXT NOT NULL DEFAULT '',
    image_ref TEXT NOT NULL DEFAULT '',
    category_id UUID REFERENCES categories (id) ON DELETE RESTRICT
);

CREATE TABLE IF NOT EXISTS stock_history (
    id UUID PRIMARY KEY,
    product_id UUID NOT NULL REFERENCES products (id) ON DELETE RESTRICT,
    stock_before INT NOT NULL,
    delta INT NOT NULL,
    stock_after INT NOT NULL CHECK (stock_after = stock_before + delta),
    adjusted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    reason TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS stock_history_product_idx
    ON stock_history (product_id, adjusted_at DESC);

CREATE TABLE IF NOT EXISTS carts (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users (id) ON DELETE RESTRICT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    total BIGINT NOT NULL DEFAULT 0 CHECK (total >= 0),
    processed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE UNIQUE INDEX IF NOT EXISTS carts_one_open_per_user
    ON carts (user_id) WHERE NOT processed;

CREATE TABLE IF NOT EXISTS cart_items (
    id UUID PRIMARY KEY,
    cart_id UUID NOT NULL REFERENCES carts (id) ON DELETE CASCADE,
    product_id UUID NOT NULL REFERENCES products (id) ON DELETE RESTRICT,
    quantity INT NOT NULL CHECK (quantity > 0),
    UNIQUE (cart_id, product_id)
);

CREATE TABLE IF NOT EXISTS payments (
    id UUID PRIMARY KEY,
    cart_id UUID NOT NULL REFERENCES carts (id) ON DELETE RESTRICT,
    amount BIGINT NOT NULL,
    method TEXT NOT NULL CHECK (method IN ('card', 'paypal', 'bank_transfer')),
    status TEXT NOT NULL DEFAULT 'completed' CHECK (status IN ('pending', 'completed', 'rejected')),
    paid_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS card_details (
    id UUID PRIMARY KEY,
    payment_id UUID NOT NULL UNIQUE REFERENCES payments (id) ON DELETE RESTRICT,
    number_hash TEXT NOT NULL,
    number_salt TEXT NOT NULL,
    cvv_hash TEXT NOT NULL,
    cvv_salt TEXT NOT NULL,
    holder_name TEXT NOT NULL,
    expiry TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS paypal_details (
    id UUID PRIMARY KEY,
    payment_id UUID NOT NULL UNIQUE REFERENCES payments (id) ON DELETE RESTRICT,
    email TEXT NOT NULL,
    confirmation_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transfer_details (
    id UUID PRIMARY KEY,
    payment_id UUID NOT NULL UNIQUE REFERENCES payments (id) ON DELETE RESTRICT,
    holder_name TEXT NOT NULL,
    bank_name TEXT NOT NULL,
    account_number TEXT NOT NULL,
    receipt_ref TEXT NOT NULL DEFAULT '',
    transferred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS invoices (
    id UUID PRIMARY KEY,
    payment_id UUID NOT NULL UNIQUE REFERENCES payments (id) ON DELETE RESTRICT,
    issued_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    total BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS invoice_items (
    id UUID PRIMARY KEY,
    invoice_id UUID NOT NULL REFERENCES invoices (id) ON DELETE RESTRICT,
    product_id UUID NOT NULL REFERENCES products (id) ON DELETE RESTRICT,
    quantity INT NOT NULL CHECK (quantity > 0),
    unit_price BIGINT NOT NULL,
    line_total BIGINT NOT NULL CHECK (line_total = quantity * unit_price)
);

CREATE TABLE IF NOT EXISTS orders (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users (id) ON DELETE RESTRICT,
    invoice_id UUID NOT NULL REFERENCES invoices (id) ON DELETE RESTRICT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    total BIGINT NOT NULL,
    status TEXT NOT NULL DEFAULT 'shipped'
        CHECK (status IN ('pending', 'processing', 'paid', 'shipped', 'cancelled'))
);

CREATE TABLE IF NOT EXISTS shipments (
    id UUID PRIMARY KEY,
    street TEXT NOT NULL,
    city TEXT NOT NULL,
    region TEXT NOT NULL,
    postal_code TEXT NOT NULL,
    country TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'Packing'
        CHECK (status IN ('Packing', 'Validating', 'OnTheWayHome', 'Delivered')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ,
    user_id UUID NOT NULL REFERENCES users (id) ON DELETE RESTRICT,
    invoice_id UUID NOT NULL REFERENCES invoices (id) ON DELETE RESTRICT
);
`

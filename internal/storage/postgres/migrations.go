package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema mirrors the SQLite layout. email is indexed, not unique.
const schema = `
CREATE TABLE IF NOT EXISTS customers (
    customer_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
    bill_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    customer_id BIGINT NOT NULL REFERENCES customers(customer_id),
    amount NUMERIC(14, 2) NOT NULL,
    bill_date DATE NOT NULL DEFAULT CURRENT_DATE,
    time_slot TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_customers_email ON customers(email);
CREATE INDEX IF NOT EXISTS idx_bills_customer_id ON bills(customer_id);
`

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

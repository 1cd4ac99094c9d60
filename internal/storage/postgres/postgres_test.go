//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mmynk/billing/internal/models"
)

// newTestStore starts a throwaway PostgreSQL container for one test.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("billing_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	save := func(name, email, amount string) (*models.Customer, *models.Bill, bool) {
		customer := &models.Customer{Name: name, Email: email}
		bill := &models.Bill{Amount: decimal.RequireFromString(amount), Time: "12:00:00"}
		created, err := store.SaveBill(ctx, customer, bill)
		require.NoError(t, err)
		return customer, bill, created
	}

	ann, first, created := save("Ann", "ann@x.com", "50")
	assert.True(t, created)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, first.Date)

	again, second, created := save("Ann", "ann@x.com", "30")
	assert.False(t, created)
	assert.Equal(t, ann.ID, again.ID)
	assert.Equal(t, ann.ID, second.CustomerID)

	save("Bob", "bob@x.com", "19.90")

	records, err := store.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "50.00", models.FormatAmount(records[0].Amount))
	assert.Equal(t, "19.90", models.FormatAmount(records[2].Amount))

	found, err := store.DeleteCustomer(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = store.DeleteCustomer(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.True(t, found)

	records, err = store.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "bob@x.com", records[0].Email)
}

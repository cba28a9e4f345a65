package claims

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wnt/claimgate/internal/database"
	"gorm.io/gorm"
)

// setupTestDB starts a PostgreSQL container, connects through the regular
// database package (which runs the schema migration), and registers
// teardown. Tests needing a database call this and get real unique
// constraints and transactions.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("claimgate_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	db, err := database.ConnectDSN(dsn)
	require.NoError(t, err, "failed to connect")

	return db
}

// newRequest builds a normalized request the way the validator would.
func newRequest(wallet, kind, amount, rate, ref string) Request {
	return Request{
		TokenKind:            kind,
		Amount:               dec(amount),
		ConversionRate:       dec(rate),
		TransactionReference: ref,
		WalletAddress:        wallet,
		ClaimedAt:            time.Now().UTC().Truncate(time.Microsecond),
	}
}

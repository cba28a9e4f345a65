package claims

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wnt/claimgate/internal/allocation"
	"github.com/wnt/claimgate/internal/models"
)

func TestSummary(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, zerolog.Nop())
	aggregator := NewAggregator(db, testRegistry(t, nil))
	ctx := context.Background()

	_, err := ledger.Submit(ctx, newRequest("0xabc", models.TokenKindA, "50", "2", "tx1"))
	require.NoError(t, err)
	_, err = ledger.Submit(ctx, newRequest("0xabc", models.TokenKindB, "30", "1", "tx2"))
	require.NoError(t, err)

	summary, err := aggregator.Summary(ctx, "0xABC")
	require.NoError(t, err)

	assert.Equal(t, "0xabc", summary.WalletAddress)
	assert.True(t, summary.KindAClaimed.Equal(dec("50")))
	assert.True(t, summary.KindBClaimed.Equal(dec("30")))
	assert.True(t, summary.TotalDerived.Equal(dec("130")))
	assert.Equal(t, 2, summary.ClaimCount)
	assert.False(t, summary.FirstClaimAt.After(summary.LastClaimAt))
}

func TestSummaryIsDerivedFromClaims(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, zerolog.Nop())
	aggregator := NewAggregator(db, testRegistry(t, nil))
	ctx := context.Background()

	_, err := ledger.Submit(ctx, newRequest("0xabc", models.TokenKindA, "50", "2", "tx1"))
	require.NoError(t, err)

	// Poison the stored aggregate; the summary must not be skewed by it
	require.NoError(t, db.Model(&models.WalletAccount{}).
		Where("wallet_address = ?", "0xabc").
		Update("kind_a_total", decimal.RequireFromString("9999")).Error)

	summary, err := aggregator.Summary(ctx, "0xabc")
	require.NoError(t, err)
	assert.True(t, summary.KindAClaimed.Equal(dec("50")))
}

func TestSummaryNotFound(t *testing.T) {
	db := setupTestDB(t)
	aggregator := NewAggregator(db, testRegistry(t, nil))

	_, err := aggregator.Summary(context.Background(), "0xnobody")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "0xnobody", notFound.WalletAddress)
}

func TestGlobalStats(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, zerolog.Nop())
	aggregator := NewAggregator(db, testRegistry(t, nil))
	ctx := context.Background()

	_, err := ledger.Submit(ctx, newRequest("0xabc", models.TokenKindA, "50", "2", "tx1"))
	require.NoError(t, err)
	_, err = ledger.Submit(ctx, newRequest("0xdef", models.TokenKindA, "100", "1", "tx2"))
	require.NoError(t, err)
	_, err = ledger.Submit(ctx, newRequest("0xdef", models.TokenKindB, "25", "1", "tx3"))
	require.NoError(t, err)

	stats, err := aggregator.GlobalStats(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.WalletCount)
	assert.EqualValues(t, 3, stats.ClaimCount)
	assert.True(t, stats.KindATotal.Equal(dec("150")), "kindA total %s", stats.KindATotal)
	assert.True(t, stats.KindBTotal.Equal(dec("25")))
	assert.True(t, stats.DerivedTotal.Equal(dec("225")))
	assert.Len(t, stats.RecentClaims, 3)
}

func TestGlobalStatsEmptyStore(t *testing.T) {
	db := setupTestDB(t)
	aggregator := NewAggregator(db, testRegistry(t, nil))

	stats, err := aggregator.GlobalStats(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 0, stats.WalletCount)
	assert.EqualValues(t, 0, stats.ClaimCount)
	assert.True(t, stats.KindATotal.IsZero())
	assert.True(t, stats.DerivedTotal.IsZero())
	assert.Empty(t, stats.RecentClaims)
}

func TestAllocationStatus(t *testing.T) {
	db := setupTestDB(t)
	registry := testRegistry(t, map[string]allocation.Entry{
		"0xabc": {KindA: dec("50"), KindB: dec("0")},
	})
	ledger := NewLedger(db, zerolog.Nop())
	aggregator := NewAggregator(db, registry)
	ctx := context.Background()

	_, err := ledger.Submit(ctx, newRequest("0xabc", models.TokenKindA, "50", "2", "tx1"))
	require.NoError(t, err)

	status, err := aggregator.AllocationStatus(ctx, "0xabc")
	require.NoError(t, err)

	assert.True(t, status.KindA.Allocated.Equal(dec("50")))
	assert.True(t, status.KindA.Claimed.Equal(dec("50")))
	assert.True(t, status.KindA.Remaining.IsZero())
	assert.False(t, status.KindA.CanClaim)

	assert.True(t, status.KindB.Allocated.IsZero())
	assert.True(t, status.KindB.Claimed.IsZero())
	assert.False(t, status.KindB.CanClaim)
}

func TestAllocationStatusUnclaimedWallet(t *testing.T) {
	db := setupTestDB(t)
	registry := testRegistry(t, map[string]allocation.Entry{
		"0xabc": {KindA: dec("50"), KindB: dec("10")},
	})
	aggregator := NewAggregator(db, registry)

	status, err := aggregator.AllocationStatus(context.Background(), "0xabc")
	require.NoError(t, err)

	assert.True(t, status.KindA.Remaining.Equal(dec("50")))
	assert.True(t, status.KindA.CanClaim)
	assert.True(t, status.KindB.Remaining.Equal(dec("10")))
	assert.True(t, status.KindB.CanClaim)
}

func TestAllocationStatusNeverNegative(t *testing.T) {
	db := setupTestDB(t)
	registry := testRegistry(t, map[string]allocation.Entry{
		"0xabc": {KindA: dec("50")},
	})
	ledger := NewLedger(db, zerolog.Nop())
	aggregator := NewAggregator(db, registry)
	ctx := context.Background()

	// An anomalous claim above the allocation (inserted directly, bypassing
	// validation) must not surface a negative remaining value
	_, err := ledger.Submit(ctx, newRequest("0xabc", models.TokenKindA, "60", "1", "tx1"))
	require.NoError(t, err)

	status, err := aggregator.AllocationStatus(ctx, "0xabc")
	require.NoError(t, err)

	assert.True(t, status.KindA.Remaining.IsZero())
	assert.False(t, status.KindA.CanClaim)
}

func TestAllocationStatusUnknownWallet(t *testing.T) {
	db := setupTestDB(t)
	aggregator := NewAggregator(db, testRegistry(t, nil))

	_, err := aggregator.AllocationStatus(context.Background(), "0xnobody")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

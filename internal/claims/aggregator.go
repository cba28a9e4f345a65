package claims

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wnt/claimgate/internal/allocation"
	"github.com/wnt/claimgate/internal/models"
	"gorm.io/gorm"
)

// recentClaimsLimit caps the recent-claims slice in global stats.
const recentClaimsLimit = 10

// WalletSummary is a wallet's claim history rolled up from its claim rows.
type WalletSummary struct {
	WalletAddress string
	KindAClaimed  decimal.Decimal
	KindBClaimed  decimal.Decimal
	TotalDerived  decimal.Decimal
	ClaimCount    int
	FirstClaimAt  time.Time
	LastClaimAt   time.Time
}

// GlobalStats is a read-only aggregate over the whole store. It is computed
// outside any transaction and may be momentarily stale under concurrent
// writes.
type GlobalStats struct {
	WalletCount  int64
	ClaimCount   int64
	KindATotal   decimal.Decimal
	KindBTotal   decimal.Decimal
	DerivedTotal decimal.Decimal
	RecentClaims []models.Claim
}

// KindStatus describes one token kind's allocation position for a wallet.
type KindStatus struct {
	Allocated decimal.Decimal
	Claimed   decimal.Decimal
	Remaining decimal.Decimal
	CanClaim  bool
}

// AllocationStatus combines the allocation table with claimed totals.
type AllocationStatus struct {
	WalletAddress string
	KindA         KindStatus
	KindB         KindStatus
}

// Aggregator answers read-only queries over claims and wallet accounts.
type Aggregator struct {
	db       *gorm.DB
	registry *allocation.Registry
}

// NewAggregator creates an aggregator over the given store and registry.
func NewAggregator(db *gorm.DB, registry *allocation.Registry) *Aggregator {
	return &Aggregator{db: db, registry: registry}
}

// Summary rolls up a wallet's claims. Totals are re-derived from the claim
// rows rather than read from the stored account, so a drifted aggregate can
// never skew the answer.
func (a *Aggregator) Summary(ctx context.Context, wallet string) (*WalletSummary, error) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))

	var rows []models.Claim
	err := a.db.WithContext(ctx).
		Where("wallet_address = ?", wallet).
		Order("claimed_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, &InternalError{Err: err}
	}
	if len(rows) == 0 {
		return nil, &NotFoundError{WalletAddress: wallet}
	}

	summary := &WalletSummary{
		WalletAddress: wallet,
		FirstClaimAt:  rows[0].ClaimedAt,
		LastClaimAt:   rows[0].ClaimedAt,
	}
	for _, row := range rows {
		switch row.TokenKind {
		case models.TokenKindA:
			summary.KindAClaimed = summary.KindAClaimed.Add(row.Amount)
		case models.TokenKindB:
			summary.KindBClaimed = summary.KindBClaimed.Add(row.Amount)
		}
		summary.TotalDerived = summary.TotalDerived.Add(row.DerivedAmount)
		summary.ClaimCount++
		if row.ClaimedAt.Before(summary.FirstClaimAt) {
			summary.FirstClaimAt = row.ClaimedAt
		}
		if row.ClaimedAt.After(summary.LastClaimAt) {
			summary.LastClaimAt = row.ClaimedAt
		}
	}

	return summary, nil
}

// GlobalStats aggregates counts, per-kind totals and the most recent claims
// across the whole store.
func (a *Aggregator) GlobalStats(ctx context.Context) (*GlobalStats, error) {
	stats := &GlobalStats{}
	db := a.db.WithContext(ctx)

	if err := db.Model(&models.WalletAccount{}).Count(&stats.WalletCount).Error; err != nil {
		return nil, &InternalError{Err: err}
	}
	if err := db.Model(&models.Claim{}).Count(&stats.ClaimCount).Error; err != nil {
		return nil, &InternalError{Err: err}
	}

	var totals struct {
		KindATotal   decimal.Decimal
		KindBTotal   decimal.Decimal
		DerivedTotal decimal.Decimal
	}
	err := db.Model(&models.Claim{}).
		Select(
			"COALESCE(SUM(CASE WHEN token_kind = ? THEN amount ELSE 0 END), 0) AS kind_a_total, "+
				"COALESCE(SUM(CASE WHEN token_kind = ? THEN amount ELSE 0 END), 0) AS kind_b_total, "+
				"COALESCE(SUM(derived_amount), 0) AS derived_total",
			models.TokenKindA, models.TokenKindB,
		).
		Scan(&totals).Error
	if err != nil {
		return nil, &InternalError{Err: err}
	}
	stats.KindATotal = totals.KindATotal
	stats.KindBTotal = totals.KindBTotal
	stats.DerivedTotal = totals.DerivedTotal

	err = db.Order("created_at DESC").Limit(recentClaimsLimit).Find(&stats.RecentClaims).Error
	if err != nil {
		return nil, &InternalError{Err: err}
	}

	return stats, nil
}

// AllocationStatus reports, per token kind, how much of a wallet's
// allocation has been claimed and how much remains. Remaining is clamped at
// zero so a data anomaly can never surface a negative value.
func (a *Aggregator) AllocationStatus(ctx context.Context, wallet string) (*AllocationStatus, error) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))

	entry, ok := a.registry.Entry(wallet)
	if !ok {
		return nil, &NotFoundError{WalletAddress: wallet}
	}

	var rows []models.Claim
	err := a.db.WithContext(ctx).Where("wallet_address = ?", wallet).Find(&rows).Error
	if err != nil {
		return nil, &InternalError{Err: err}
	}

	claimedA, claimedB := decimal.Zero, decimal.Zero
	for _, row := range rows {
		switch row.TokenKind {
		case models.TokenKindA:
			claimedA = claimedA.Add(row.Amount)
		case models.TokenKindB:
			claimedB = claimedB.Add(row.Amount)
		}
	}

	return &AllocationStatus{
		WalletAddress: wallet,
		KindA:         kindStatus(entry.KindA, claimedA),
		KindB:         kindStatus(entry.KindB, claimedB),
	}, nil
}

func kindStatus(allocated, claimed decimal.Decimal) KindStatus {
	remaining := allocated.Sub(claimed)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return KindStatus{
		Allocated: allocated,
		Claimed:   claimed,
		Remaining: remaining,
		CanClaim:  remaining.IsPositive(),
	}
}

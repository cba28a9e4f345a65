package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletAccount holds a wallet's cumulative claim totals. A row is created
// lazily on the wallet's first successful claim and incremented in the same
// transaction as each claim insert.
type WalletAccount struct {
	gorm.Model
	WalletAddress string          `gorm:"size:64;uniqueIndex:uk_wallet_accounts_address;not null"`
	KindATotal    decimal.Decimal `gorm:"type:decimal(30,10);not null;default:0"`
	KindBTotal    decimal.Decimal `gorm:"type:decimal(30,10);not null;default:0"`
	DerivedTotal  decimal.Decimal `gorm:"type:decimal(30,10);not null;default:0"`
	ClaimCount    int             `gorm:"default:0"`
	FirstClaimAt  time.Time
	LastClaimAt   time.Time `gorm:"index"`
}

// TableName specifies the table name
func (WalletAccount) TableName() string {
	return "wallet_accounts"
}

// KindTotal returns the cumulative claimed amount for the given token kind.
func (w *WalletAccount) KindTotal(kind string) decimal.Decimal {
	if kind == TokenKindB {
		return w.KindBTotal
	}
	return w.KindATotal
}

// AddClaim folds a claim into the account totals.
func (w *WalletAccount) AddClaim(kind string, amount, derived decimal.Decimal, claimedAt time.Time) {
	switch kind {
	case TokenKindA:
		w.KindATotal = w.KindATotal.Add(amount)
	case TokenKindB:
		w.KindBTotal = w.KindBTotal.Add(amount)
	}
	w.DerivedTotal = w.DerivedTotal.Add(derived)
	w.ClaimCount++
	w.LastClaimAt = claimedAt
}

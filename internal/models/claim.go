package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Token kinds a claim can target. Stored in canonical form.
const (
	TokenKindA = "kindA"
	TokenKindB = "kindB"
)

// ClaimStatusCompleted is the only claim status; claims have no state
// transitions after creation.
const ClaimStatusCompleted = "completed"

// Claim represents a single completed redemption of an allocated amount.
// Rows are insert-only: a claim is never updated or deleted once committed.
type Claim struct {
	gorm.Model
	ClaimID              string          `gorm:"size:48;uniqueIndex:uk_claims_claim_id;not null"`
	TransactionReference string          `gorm:"size:128;uniqueIndex:uk_claims_tx_ref;not null"`
	WalletAddress        string          `gorm:"size:64;uniqueIndex:uk_claims_wallet_kind;index;not null"`
	TokenKind            string          `gorm:"size:8;uniqueIndex:uk_claims_wallet_kind;not null"`
	Amount               decimal.Decimal `gorm:"type:decimal(30,10);not null"`
	ConversionRate       decimal.Decimal `gorm:"type:decimal(30,10);not null"`
	DerivedAmount        decimal.Decimal `gorm:"type:decimal(30,10);not null"`
	Status               string          `gorm:"size:16;not null"`
	ClaimedAt            time.Time       `gorm:"index;not null"`
}

// TableName specifies the table name
func (Claim) TableName() string {
	return "claims"
}

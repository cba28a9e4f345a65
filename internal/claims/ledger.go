package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/wnt/claimgate/internal/metrics"
	"github.com/wnt/claimgate/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Unique constraint names created by the model tags. Submit translates a
// violation of either into the matching conflict result.
const (
	constraintTxRef      = "uk_claims_tx_ref"
	constraintWalletKind = "uk_claims_wallet_kind"
)

const pgUniqueViolation = "23505"

// Ledger persists claims. Submit runs all checks and writes inside a single
// database transaction; the unique constraints on transaction reference and
// (wallet, token kind) back the in-transaction checks so concurrent
// submissions cannot both commit.
type Ledger struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewLedger creates a ledger on the given database handle.
func NewLedger(db *gorm.DB, logger zerolog.Logger) *Ledger {
	return &Ledger{
		db:     db,
		logger: logger.With().Str("component", "claim_ledger").Logger(),
	}
}

// Submit records a validated claim exactly once. It returns a ConflictError
// when the transaction reference or the (wallet, kind) pair has already
// been claimed, an InternalError on storage failure, and a Receipt with the
// post-commit claim and account state on success. Nothing is written unless
// the whole unit commits.
func (l *Ledger) Submit(ctx context.Context, req Request) (*Receipt, error) {
	start := time.Now()
	var receipt Receipt

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Claim
		err := tx.Where("transaction_reference = ?", req.TransactionReference).First(&existing).Error
		if err == nil {
			return duplicateTransaction(&existing)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Where("wallet_address = ? AND token_kind = ?", req.WalletAddress, req.TokenKind).First(&existing).Error
		if err == nil {
			return alreadyClaimed(&existing)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		account, err := lockOrCreateAccount(tx, req)
		if err != nil {
			return err
		}

		claim := models.Claim{
			ClaimID:              newClaimID(req.ClaimedAt),
			TransactionReference: req.TransactionReference,
			WalletAddress:        req.WalletAddress,
			TokenKind:            req.TokenKind,
			Amount:               req.Amount,
			ConversionRate:       req.ConversionRate,
			DerivedAmount:        req.Amount.Mul(req.ConversionRate),
			Status:               models.ClaimStatusCompleted,
			ClaimedAt:            req.ClaimedAt,
		}
		if err := tx.Create(&claim).Error; err != nil {
			return err
		}

		account.AddClaim(req.TokenKind, claim.Amount, claim.DerivedAmount, claim.ClaimedAt)
		err = tx.Model(&models.WalletAccount{}).Where("id = ?", account.ID).Updates(map[string]interface{}{
			"kind_a_total":  account.KindATotal,
			"kind_b_total":  account.KindBTotal,
			"derived_total": account.DerivedTotal,
			"claim_count":   account.ClaimCount,
			"last_claim_at": account.LastClaimAt,
		}).Error
		if err != nil {
			return err
		}

		receipt = Receipt{Claim: claim, Account: *account}
		return nil
	})
	if err != nil {
		translated := l.translateSubmitError(ctx, req, err)
		metrics.RecordSubmission(submissionOutcome(translated), time.Since(start).Seconds())
		return nil, translated
	}

	metrics.RecordSubmission("committed", time.Since(start).Seconds())
	l.logger.Info().
		Str("claim_id", receipt.Claim.ClaimID).
		Str("wallet", req.WalletAddress).
		Str("token_kind", req.TokenKind).
		Str("amount", req.Amount.String()).
		Msg("Claim committed")

	return &receipt, nil
}

// lockOrCreateAccount ensures the wallet account row exists and fetches it
// FOR UPDATE so concurrent submissions for the same wallet serialize on the
// increment. The insert uses ON CONFLICT DO NOTHING: when two first claims
// race, the loser falls through to the lock read instead of aborting the
// transaction on the address constraint.
func lockOrCreateAccount(tx *gorm.DB, req Request) (*models.WalletAccount, error) {
	seed := models.WalletAccount{
		WalletAddress: req.WalletAddress,
		FirstClaimAt:  req.ClaimedAt,
		LastClaimAt:   req.ClaimedAt,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet_address"}},
		DoNothing: true,
	}).Create(&seed).Error
	if err != nil {
		return nil, err
	}

	var account models.WalletAccount
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("wallet_address = ?", req.WalletAddress).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// translateSubmitError maps a transaction failure onto the closed error
// taxonomy. A unique-constraint violation raced past the in-transaction
// checks and is reported exactly like a check-time duplicate, with the
// surviving record's identity looked up after rollback.
func (l *Ledger) translateSubmitError(ctx context.Context, req Request, err error) error {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case constraintTxRef:
			var existing models.Claim
			lookupErr := l.db.WithContext(ctx).
				Where("transaction_reference = ?", req.TransactionReference).
				First(&existing).Error
			if lookupErr == nil {
				return duplicateTransaction(&existing)
			}
		case constraintWalletKind:
			var existing models.Claim
			lookupErr := l.db.WithContext(ctx).
				Where("wallet_address = ? AND token_kind = ?", req.WalletAddress, req.TokenKind).
				First(&existing).Error
			if lookupErr == nil {
				// The reference check runs first, so a row that also
				// carries this reference reports as a duplicate
				if existing.TransactionReference == req.TransactionReference {
					return duplicateTransaction(&existing)
				}
				return alreadyClaimed(&existing)
			}
		}
		// A violation on another constraint, or a failed lookup of the
		// surviving row: the transaction rolled back, retry is safe.
	}

	l.logger.Error().Err(err).
		Str("wallet", req.WalletAddress).
		Str("tx_ref", req.TransactionReference).
		Msg("Claim submission failed")

	return &InternalError{Err: err}
}

func duplicateTransaction(existing *models.Claim) *ConflictError {
	return &ConflictError{
		Code:              CodeDuplicateTransaction,
		Message:           "transaction reference has already been claimed",
		ExistingClaimID:   existing.ClaimID,
		ExistingCreatedAt: existing.CreatedAt,
	}
}

func alreadyClaimed(existing *models.Claim) *ConflictError {
	return &ConflictError{
		Code:              CodeAlreadyClaimed,
		Message:           "wallet has already claimed this token kind",
		ExistingClaimID:   existing.ClaimID,
		ExistingCreatedAt: existing.CreatedAt,
	}
}

func submissionOutcome(err error) string {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict.Code
	}
	return CodeInternal
}

// newClaimID builds a store-unique identifier from a UTC time prefix and a
// random suffix.
func newClaimID(ts time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return fmt.Sprintf("CLM-%s-%s", ts.UTC().Format("20060102150405"), suffix)
}

package claims

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Stable failure discriminators surfaced to callers. The HTTP layer maps
// these to status codes; the core never emits free-form error payloads.
const (
	CodeMissingFields        = "missing_fields"
	CodeInvalidTokenKind     = "invalid_token_kind"
	CodeInvalidAmount        = "invalid_amount"
	CodeInvalidRate          = "invalid_rate"
	CodeUnknownWallet        = "unknown_wallet"
	CodeAllocationMismatch   = "allocation_mismatch"
	CodeDuplicateTransaction = "duplicate_transaction"
	CodeAlreadyClaimed       = "already_claimed"
	CodeNotFound             = "not_found"
	CodeInternal             = "internal_error"
)

// ValidationError reports a malformed request. It is always detected before
// any storage access and is never retriable as-is.
type ValidationError struct {
	Code    string
	Message string
	Fields  []string // populated for missing_fields
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AuthorizationError reports a wallet or amount that does not match the
// allocation table. Expected and Provided are set for allocation_mismatch.
type AuthorizationError struct {
	Code          string
	Message       string
	WalletAddress string
	TokenKind     string
	Expected      decimal.Decimal
	Provided      decimal.Decimal
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ConflictError reports that a claim already exists for the transaction
// reference or for the (wallet, token kind) pair. The existing record's
// identity is carried so the caller can treat it as the authoritative
// outcome.
type ConflictError struct {
	Code              string
	Message           string
	ExistingClaimID   string
	ExistingCreatedAt time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s (existing claim %s)", e.Code, e.Message, e.ExistingClaimID)
}

// NotFoundError reports a wallet with no claims or no allocation entry.
type NotFoundError struct {
	WalletAddress string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: no records for wallet %s", CodeNotFound, e.WalletAddress)
}

// InternalError wraps a storage or transaction failure. The ledger
// transaction has been rolled back before this surfaces, so retrying the
// identical request is safe.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", CodeInternal, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

package claims

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wnt/claimgate/internal/allocation"
	"github.com/wnt/claimgate/internal/models"
)

// AllocationTolerance is the absolute tolerance for matching a claimed
// amount against the wallet's entitlement.
var AllocationTolerance = decimal.New(1, -2) // 0.01

// Validator checks raw claim requests against shape rules and the
// allocation table. It is pure: no I/O, no mutation.
type Validator struct {
	registry *allocation.Registry
}

// NewValidator creates a validator backed by the given registry.
func NewValidator(registry *allocation.Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate normalizes a raw request or rejects it with the first failing
// check. Checks run in a fixed order: required fields, token kind, amount,
// rate, wallet entitlement, allocation match.
func (v *Validator) Validate(raw RawRequest) (Request, error) {
	if missing := missingFields(raw); len(missing) > 0 {
		return Request{}, &ValidationError{
			Code:    CodeMissingFields,
			Message: "required fields are missing",
			Fields:  missing,
		}
	}

	kind, ok := canonicalTokenKind(raw.TokenKind)
	if !ok {
		return Request{}, &ValidationError{
			Code:    CodeInvalidTokenKind,
			Message: fmt.Sprintf("token kind must be %s or %s", models.TokenKindA, models.TokenKindB),
		}
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(raw.Amount))
	if err != nil || !amount.IsPositive() {
		return Request{}, &ValidationError{
			Code:    CodeInvalidAmount,
			Message: "amount must be a positive number",
		}
	}

	rate := decimal.NewFromInt(1)
	if strings.TrimSpace(raw.ConversionRate) != "" {
		rate, err = decimal.NewFromString(strings.TrimSpace(raw.ConversionRate))
		if err != nil || !rate.IsPositive() {
			return Request{}, &ValidationError{
				Code:    CodeInvalidRate,
				Message: "conversion rate must be a positive number",
			}
		}
	}

	wallet := strings.ToLower(strings.TrimSpace(raw.WalletAddress))

	allocated, found := v.registry.Lookup(wallet, kind)
	if !found {
		return Request{}, &AuthorizationError{
			Code:          CodeUnknownWallet,
			Message:       "wallet has no allocation entry",
			WalletAddress: wallet,
			TokenKind:     kind,
		}
	}

	if amount.Sub(allocated).Abs().GreaterThan(AllocationTolerance) {
		return Request{}, &AuthorizationError{
			Code:          CodeAllocationMismatch,
			Message:       "claimed amount does not match the allocated amount",
			WalletAddress: wallet,
			TokenKind:     kind,
			Expected:      allocated,
			Provided:      amount,
		}
	}

	return Request{
		TokenKind:            kind,
		Amount:               amount,
		ConversionRate:       rate,
		TransactionReference: strings.TrimSpace(raw.TransactionReference),
		WalletAddress:        wallet,
		ClaimedAt:            resolveTimestamp(raw.Timestamp),
	}, nil
}

func missingFields(raw RawRequest) []string {
	var missing []string
	if strings.TrimSpace(raw.TokenKind) == "" {
		missing = append(missing, "tokenKind")
	}
	if strings.TrimSpace(raw.Amount) == "" {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(raw.TransactionReference) == "" {
		missing = append(missing, "transactionReference")
	}
	if strings.TrimSpace(raw.WalletAddress) == "" {
		missing = append(missing, "walletAddress")
	}
	return missing
}

func canonicalTokenKind(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case strings.ToLower(models.TokenKindA):
		return models.TokenKindA, true
	case strings.ToLower(models.TokenKindB):
		return models.TokenKindB, true
	}
	return "", false
}

// resolveTimestamp parses an optional RFC3339 caller timestamp, falling
// back to server time when absent or unparseable.
func resolveTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Now().UTC()
}

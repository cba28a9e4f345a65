package claims

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wnt/claimgate/internal/models"
)

// RawRequest is the inbound claim request as supplied by the transport
// layer. Amounts arrive as strings and are parsed during validation.
type RawRequest struct {
	TokenKind            string
	Amount               string
	TransactionReference string
	WalletAddress        string
	Timestamp            string
	ConversionRate       string
}

// Request is a validated, normalized claim request: canonical token kind,
// lowercased wallet address, parsed decimal amounts, resolved timestamp.
type Request struct {
	TokenKind            string
	Amount               decimal.Decimal
	ConversionRate       decimal.Decimal
	TransactionReference string
	WalletAddress        string
	ClaimedAt            time.Time
}

// Receipt is the post-commit outcome of a successful submission: the
// inserted claim plus the wallet account state it produced.
type Receipt struct {
	Claim   models.Claim
	Account models.WalletAccount
}

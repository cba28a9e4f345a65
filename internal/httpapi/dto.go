package httpapi

import (
	"encoding/json"
	"time"

	"github.com/wnt/claimgate/internal/claims"
)

// flexString accepts both JSON strings and bare numbers, since clients send
// amounts either way.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type claimRequest struct {
	TokenKind            string     `json:"tokenKind"`
	Amount               flexString `json:"amount"`
	TransactionReference string     `json:"transactionReference"`
	WalletAddress        string     `json:"walletAddress"`
	Timestamp            string     `json:"timestamp"`
	ConversionRate       flexString `json:"conversionRate"`
}

func (r claimRequest) raw() claims.RawRequest {
	return claims.RawRequest{
		TokenKind:            r.TokenKind,
		Amount:               string(r.Amount),
		TransactionReference: r.TransactionReference,
		WalletAddress:        r.WalletAddress,
		Timestamp:            r.Timestamp,
		ConversionRate:       string(r.ConversionRate),
	}
}

type walletTotals struct {
	KindA        string `json:"kindA"`
	KindB        string `json:"kindB"`
	TotalDerived string `json:"totalDerived"`
	ClaimCount   int    `json:"claimCount"`
}

type claimResponse struct {
	ClaimID              string       `json:"claimId"`
	WalletAddress        string       `json:"walletAddress"`
	TokenKind            string       `json:"tokenKind"`
	AmountClaimed        string       `json:"amountClaimed"`
	DerivedAmount        string       `json:"derivedAmount"`
	TransactionReference string       `json:"transactionReference"`
	Status               string       `json:"status"`
	Timestamp            time.Time    `json:"timestamp"`
	WalletTotals         walletTotals `json:"walletTotals"`
}

func newClaimResponse(receipt *claims.Receipt) claimResponse {
	return claimResponse{
		ClaimID:              receipt.Claim.ClaimID,
		WalletAddress:        receipt.Claim.WalletAddress,
		TokenKind:            receipt.Claim.TokenKind,
		AmountClaimed:        receipt.Claim.Amount.String(),
		DerivedAmount:        receipt.Claim.DerivedAmount.String(),
		TransactionReference: receipt.Claim.TransactionReference,
		Status:               receipt.Claim.Status,
		Timestamp:            receipt.Claim.ClaimedAt,
		WalletTotals: walletTotals{
			KindA:        receipt.Account.KindATotal.String(),
			KindB:        receipt.Account.KindBTotal.String(),
			TotalDerived: receipt.Account.DerivedTotal.String(),
			ClaimCount:   receipt.Account.ClaimCount,
		},
	}
}

type summaryResponse struct {
	WalletAddress string    `json:"walletAddress"`
	KindAClaimed  string    `json:"kindAClaimed"`
	KindBClaimed  string    `json:"kindBClaimed"`
	TotalDerived  string    `json:"totalDerived"`
	ClaimCount    int       `json:"claimCount"`
	FirstClaimAt  time.Time `json:"firstClaimAt"`
	LastClaimAt   time.Time `json:"lastClaimAt"`
}

func newSummaryResponse(s *claims.WalletSummary) summaryResponse {
	return summaryResponse{
		WalletAddress: s.WalletAddress,
		KindAClaimed:  s.KindAClaimed.String(),
		KindBClaimed:  s.KindBClaimed.String(),
		TotalDerived:  s.TotalDerived.String(),
		ClaimCount:    s.ClaimCount,
		FirstClaimAt:  s.FirstClaimAt,
		LastClaimAt:   s.LastClaimAt,
	}
}

type recentClaim struct {
	ClaimID       string    `json:"claimId"`
	WalletAddress string    `json:"walletAddress"`
	TokenKind     string    `json:"tokenKind"`
	Amount        string    `json:"amount"`
	DerivedAmount string    `json:"derivedAmount"`
	ClaimedAt     time.Time `json:"claimedAt"`
}

type statsResponse struct {
	WalletCount  int64         `json:"walletCount"`
	ClaimCount   int64         `json:"claimCount"`
	KindATotal   string        `json:"kindATotal"`
	KindBTotal   string        `json:"kindBTotal"`
	DerivedTotal string        `json:"derivedTotal"`
	RecentClaims []recentClaim `json:"recentClaims"`
}

func newStatsResponse(s *claims.GlobalStats) statsResponse {
	recent := make([]recentClaim, 0, len(s.RecentClaims))
	for _, c := range s.RecentClaims {
		recent = append(recent, recentClaim{
			ClaimID:       c.ClaimID,
			WalletAddress: c.WalletAddress,
			TokenKind:     c.TokenKind,
			Amount:        c.Amount.String(),
			DerivedAmount: c.DerivedAmount.String(),
			ClaimedAt:     c.ClaimedAt,
		})
	}
	return statsResponse{
		WalletCount:  s.WalletCount,
		ClaimCount:   s.ClaimCount,
		KindATotal:   s.KindATotal.String(),
		KindBTotal:   s.KindBTotal.String(),
		DerivedTotal: s.DerivedTotal.String(),
		RecentClaims: recent,
	}
}

type kindStatusResponse struct {
	Allocated string `json:"allocated"`
	Claimed   string `json:"claimed"`
	Remaining string `json:"remaining"`
	CanClaim  bool   `json:"canClaim"`
}

type allocationStatusResponse struct {
	WalletAddress string             `json:"walletAddress"`
	KindA         kindStatusResponse `json:"kindA"`
	KindB         kindStatusResponse `json:"kindB"`
}

func newAllocationStatusResponse(s *claims.AllocationStatus) allocationStatusResponse {
	convert := func(k claims.KindStatus) kindStatusResponse {
		return kindStatusResponse{
			Allocated: k.Allocated.String(),
			Claimed:   k.Claimed.String(),
			Remaining: k.Remaining.String(),
			CanClaim:  k.CanClaim,
		}
	}
	return allocationStatusResponse{
		WalletAddress: s.WalletAddress,
		KindA:         convert(s.KindA),
		KindB:         convert(s.KindB),
	}
}

type errorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

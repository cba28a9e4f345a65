package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClaimsSubmitted tracks claim submissions by outcome
	ClaimsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claimgate_claims_submitted_total",
			Help: "The total number of claim submissions",
		},
		[]string{"outcome"}, // committed, duplicate_transaction, already_claimed, internal_error
	)

	// ClaimSubmitSeconds tracks the ledger transaction duration
	ClaimSubmitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "claimgate_claim_submit_seconds",
		Help:    "Time taken to commit a claim submission in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// ClaimsRejected tracks requests rejected before reaching storage
	ClaimsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claimgate_claims_rejected_total",
			Help: "The total number of claim requests rejected by validation or authorization",
		},
		[]string{"code"},
	)

	// AllocationWallets tracks the size of the loaded allocation table
	AllocationWallets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "claimgate_allocation_wallets",
		Help: "The number of wallets in the current allocation table",
	})

	// AllocationReloads tracks allocation table reloads by status
	AllocationReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claimgate_allocation_reloads_total",
			Help: "The total number of allocation table reloads",
		},
		[]string{"status"}, // success, failed
	)
)

// RecordSubmission records a claim submission with the given outcome
func RecordSubmission(outcome string, duration float64) {
	ClaimsSubmitted.WithLabelValues(outcome).Inc()
	ClaimSubmitSeconds.Observe(duration)
}

// RecordRejection records a request rejected before any storage access
func RecordRejection(code string) {
	ClaimsRejected.WithLabelValues(code).Inc()
}

// RecordAllocationReload records a reload attempt and, on success, the new
// table size
func RecordAllocationReload(wallets int, err error) {
	if err != nil {
		AllocationReloads.WithLabelValues("failed").Inc()
		return
	}
	AllocationReloads.WithLabelValues("success").Inc()
	AllocationWallets.Set(float64(wallets))
}

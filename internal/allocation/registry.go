package allocation

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/wnt/claimgate/internal/metrics"
	"github.com/wnt/claimgate/internal/models"
)

// Entry holds a wallet's entitled amount for each token kind.
type Entry struct {
	KindA decimal.Decimal
	KindB decimal.Decimal
}

// Amount returns the entitlement for the given canonical token kind.
func (e Entry) Amount(kind string) decimal.Decimal {
	if kind == models.TokenKindB {
		return e.KindB
	}
	return e.KindA
}

// Source loads the allocation table from an external resource.
type Source interface {
	Load() (map[string]Entry, error)
}

// Registry is the immutable, address-keyed allocation lookup. The whole
// table is replaced atomically on Reload; entries are never mutated in
// place. An empty registry answers every lookup with absent.
type Registry struct {
	source Source
	logger zerolog.Logger

	mutex    sync.RWMutex
	entries  map[string]Entry
	loadedAt time.Time
}

// NewRegistry creates an empty registry backed by the given source.
func NewRegistry(source Source, logger zerolog.Logger) *Registry {
	return &Registry{
		source:  source,
		logger:  logger.With().Str("component", "allocation_registry").Logger(),
		entries: make(map[string]Entry),
	}
}

// Reload re-reads the source and swaps in the new table. On failure the
// previous table stays in place and the error is returned to the caller.
func (r *Registry) Reload() (int, error) {
	entries, err := r.source.Load()
	metrics.RecordAllocationReload(len(entries), err)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to load allocation table")
		return 0, fmt.Errorf("failed to load allocations: %w", err)
	}

	r.mutex.Lock()
	r.entries = entries
	r.loadedAt = time.Now().UTC()
	r.mutex.Unlock()

	r.logger.Info().Int("wallets", len(entries)).Msg("Allocation table loaded")
	return len(entries), nil
}

// Lookup returns the entitled amount for a wallet and canonical token kind.
// Matching is case-insensitive: addresses are lowercased on both load and
// lookup.
func (r *Registry) Lookup(address, kind string) (decimal.Decimal, bool) {
	entry, ok := r.Entry(address)
	if !ok {
		return decimal.Zero, false
	}
	return entry.Amount(kind), true
}

// Entry returns the full allocation entry for a wallet.
func (r *Registry) Entry(address string) (Entry, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	entry, ok := r.entries[canonicalAddress(address)]
	return entry, ok
}

// Size returns the number of wallets in the current table.
func (r *Registry) Size() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.entries)
}

// LoadedAt returns when the current table was loaded; zero if never loaded.
func (r *Registry) LoadedAt() time.Time {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.loadedAt
}

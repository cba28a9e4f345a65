package allocation

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wnt/claimgate/internal/models"
)

// stubSource serves a fixed table, or an error, per Load call.
type stubSource struct {
	entries map[string]Entry
	err     error
}

func (s *stubSource) Load() (map[string]Entry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRegistryLookup(t *testing.T) {
	source := &stubSource{entries: map[string]Entry{
		"0xabc": {KindA: dec("50"), KindB: dec("0")},
		"0xdef": {KindA: dec("100"), KindB: dec("25.5")},
	}}
	registry := NewRegistry(source, zerolog.Nop())

	count, err := registry.Reload()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	amount, ok := registry.Lookup("0xabc", models.TokenKindA)
	require.True(t, ok)
	assert.True(t, amount.Equal(dec("50")))

	amount, ok = registry.Lookup("0xdef", models.TokenKindB)
	require.True(t, ok)
	assert.True(t, amount.Equal(dec("25.5")))

	_, ok = registry.Lookup("0x999", models.TokenKindA)
	assert.False(t, ok)
}

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	source := &stubSource{entries: map[string]Entry{
		"0xabc": {KindA: dec("50")},
	}}
	registry := NewRegistry(source, zerolog.Nop())
	_, err := registry.Reload()
	require.NoError(t, err)

	amount, ok := registry.Lookup("0xABC", models.TokenKindA)
	require.True(t, ok)
	assert.True(t, amount.Equal(dec("50")))

	amount, ok = registry.Lookup("  0xAbC  ", models.TokenKindA)
	require.True(t, ok)
	assert.True(t, amount.Equal(dec("50")))
}

func TestRegistryEmptyAnswersAbsent(t *testing.T) {
	registry := NewRegistry(&stubSource{entries: map[string]Entry{}}, zerolog.Nop())

	// Never loaded
	_, ok := registry.Lookup("0xabc", models.TokenKindA)
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Size())
	assert.True(t, registry.LoadedAt().IsZero())
}

func TestRegistryReloadSwapsTable(t *testing.T) {
	source := &stubSource{entries: map[string]Entry{
		"0xabc": {KindA: dec("50")},
	}}
	registry := NewRegistry(source, zerolog.Nop())
	_, err := registry.Reload()
	require.NoError(t, err)

	// Swap in a table without the old wallet
	source.entries = map[string]Entry{
		"0xdef": {KindA: dec("75")},
	}
	count, err := registry.Reload()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, ok := registry.Lookup("0xabc", models.TokenKindA)
	assert.False(t, ok)
	_, ok = registry.Lookup("0xdef", models.TokenKindA)
	assert.True(t, ok)
}

func TestRegistryReloadFailureKeepsOldTable(t *testing.T) {
	source := &stubSource{entries: map[string]Entry{
		"0xabc": {KindA: dec("50")},
	}}
	registry := NewRegistry(source, zerolog.Nop())
	_, err := registry.Reload()
	require.NoError(t, err)

	source.err = errors.New("file vanished")
	_, err = registry.Reload()
	assert.Error(t, err)

	// The previous table is still served
	amount, ok := registry.Lookup("0xabc", models.TokenKindA)
	require.True(t, ok)
	assert.True(t, amount.Equal(dec("50")))
}

package allocation

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CSVSource reads the allocation table from a CSV file with columns
// address, kind_a, kind_b. A header row is detected and skipped. Malformed
// rows are skipped with a warning; the load only fails if the file itself
// cannot be read.
type CSVSource struct {
	path   string
	logger zerolog.Logger
}

// NewCSVSource creates a source reading from the given file path.
func NewCSVSource(path string, logger zerolog.Logger) *CSVSource {
	return &CSVSource{
		path:   path,
		logger: logger.With().Str("component", "allocation_csv").Logger(),
	}
}

// Load parses the CSV file into an address-keyed entry map.
func (s *CSVSource) Load() (map[string]Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open allocation file %s: %w", s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // row length is validated per record
	reader.TrimLeadingSpace = true

	entries := make(map[string]Entry)
	line := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read allocation file %s: %w", s.path, err)
		}
		line++

		if line == 1 && isHeaderRow(record) {
			continue
		}

		entry, address, ok := s.parseRow(record, line)
		if !ok {
			continue
		}

		if _, exists := entries[address]; exists {
			s.logger.Warn().Int("line", line).Str("wallet", address).Msg("Duplicate allocation row, keeping last")
		}
		entries[address] = entry
	}

	return entries, nil
}

// parseRow converts one CSV record into an entry. Rows with a missing
// address or unparseable amounts are rejected.
func (s *CSVSource) parseRow(record []string, line int) (Entry, string, bool) {
	if len(record) < 3 {
		s.logger.Warn().Int("line", line).Int("fields", len(record)).Msg("Skipping malformed allocation row")
		return Entry{}, "", false
	}

	address := canonicalAddress(record[0])
	if address == "" {
		s.logger.Warn().Int("line", line).Msg("Skipping allocation row with empty address")
		return Entry{}, "", false
	}

	kindA, err := parseAmount(record[1])
	if err != nil {
		s.logger.Warn().Int("line", line).Str("wallet", address).Err(err).Msg("Skipping allocation row with bad kindA amount")
		return Entry{}, "", false
	}

	kindB, err := parseAmount(record[2])
	if err != nil {
		s.logger.Warn().Int("line", line).Str("wallet", address).Err(err).Msg("Skipping allocation row with bad kindB amount")
		return Entry{}, "", false
	}

	return Entry{KindA: kindA, KindB: kindB}, address, true
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %s", raw)
	}
	return amount, nil
}

func isHeaderRow(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	return first == "address" || first == "wallet" || first == "wallet_address"
}

// canonicalAddress lowercases and trims an address so matching is
// case-insensitive on both load and lookup.
func canonicalAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

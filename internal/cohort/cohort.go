// Package cohort validates the external identifiers and amount strings that
// cross into the ledger core: bytes32 cohort references from the exchange
// and signed integer micro-unit amounts from the API layer.
package cohort

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/predclubs/ledger-engine/internal/model"
)

// cohortRegex matches a bytes32 hex reference: 0x followed by 64 hex chars.
// Example: 0x4c7d1e9f0a3b5c8d2e6f1a9b0c4d7e2f5a8b1c3d6e9f0a2b5c8d1e4f7a0b3c6d
var cohortRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

var (
	ErrInvalidCohortID = errors.New("cohort: invalid cohort id format")
	ErrInvalidAmount   = errors.New("cohort: invalid amount string")
)

// ParseCohortID validates a bytes32 cohort identifier and returns it in
// lowercase canonical form.
func ParseCohortID(s string) (string, error) {
	if !cohortRegex.MatchString(s) {
		return "", fmt.Errorf("%w: %q (expected 0x + 64 hex chars)", ErrInvalidCohortID, s)
	}
	// Canonicalize: hex digits lowercased, 0x prefix preserved.
	b := []byte(s)
	for i := 2; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'F' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b), nil
}

// ParseAmount parses a signed integer micro-unit string. Floating point,
// thousands separators, and empty strings are all rejected: amounts enter
// the ledger as exact integers or not at all.
func ParseAmount(s string) (model.Micros, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return model.Micros(n), nil
}

// ParsePositiveAmount parses an amount that must be strictly positive,
// e.g. a round member's commit.
func ParsePositiveAmount(s string) (model.Micros, error) {
	m, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if m <= 0 {
		return 0, fmt.Errorf("%w: %q (must be positive)", ErrInvalidAmount, s)
	}
	return m, nil
}

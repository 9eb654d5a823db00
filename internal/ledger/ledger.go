// Package ledger is the append boundary of the financial ledger: it
// validates drafts, normalizes the per-type sign convention, and persists
// entries as immutable facts. Nothing else in the engine writes ledger rows
// directly except the round lifecycle, which builds its entries through
// NewEntry so the same normalization applies.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/predclubs/ledger-engine/internal/cohort"
	"github.com/predclubs/ledger-engine/internal/model"
	"github.com/predclubs/ledger-engine/internal/store"
)

// ErrInvalidEntry rejects a draft before any store mutation: malformed
// amount string, unknown type, or missing identity fields.
var ErrInvalidEntry = errors.New("ledger: invalid entry")

// Draft is an unvalidated request to append one ledger entry. Amount is a
// signed integer micro-unit string; it never passes through floating point.
type Draft struct {
	UserID      string `json:"user_id"`
	ClubID      string `json:"club_id"`
	SafeAddress string `json:"safe_address"`
	RoundID     string `json:"round_id,omitempty"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
}

// Service validates and appends ledger entries and serves ordered queries.
type Service struct {
	store store.Store
}

// NewService creates a ledger service over the given store.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Append validates the draft and persists it as an immutable fact. The
// store is never touched on a failed validation path.
func (s *Service) Append(ctx context.Context, d Draft) (*model.LedgerEntry, error) {
	if d.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidEntry)
	}
	if d.ClubID == "" {
		return nil, fmt.Errorf("%w: club_id is required", ErrInvalidEntry)
	}

	typ := model.EntryType(d.Type)
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidEntry, d.Type)
	}

	amount, err := cohort.ParseAmount(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	entry := NewEntry(d.UserID, d.ClubID, d.SafeAddress, d.RoundID, typ, amount)
	if err := s.store.AppendEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Query returns entries matching the filter in insertion order
// (created_at ascending, seq breaking ties).
func (s *Service) Query(ctx context.Context, f model.EntryFilter) ([]model.LedgerEntry, error) {
	return s.store.LedgerEntries(ctx, f)
}

// NewEntry builds an entry with a fresh ID and timestamp and the sign
// convention enforced structurally: commits and withdrawals are stored
// negative, deposits and payouts non-negative, adjustments keep their sign.
func NewEntry(userID, clubID, safeAddress, roundID string, typ model.EntryType, amount model.Micros) *model.LedgerEntry {
	return &model.LedgerEntry{
		ID:          uuid.New().String(),
		UserID:      userID,
		ClubID:      clubID,
		SafeAddress: safeAddress,
		RoundID:     roundID,
		Type:        typ,
		Amount:      NormalizeSign(typ, amount),
		CreatedAt:   time.Now().UTC(),
	}
}

// NormalizeSign maps a magnitude-or-signed amount onto the stored sign
// convention for its type.
func NormalizeSign(typ model.EntryType, amount model.Micros) model.Micros {
	switch typ {
	case model.EntryCommit, model.EntryWithdraw:
		return -amount.Abs()
	case model.EntryDeposit, model.EntryPayout:
		return amount.Abs()
	default:
		// ADJUSTMENT (and any future type) carries its sign through.
		return amount
	}
}

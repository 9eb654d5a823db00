// Package balance derives point-in-time balances by folding ledger entries.
// Balances are never stored or cached: every call re-scans the relevant
// entry set and folds it in exact int64 micro-unit arithmetic, which is what
// makes concurrent request paths unable to drift or lose updates.
package balance

import (
	"context"

	"github.com/predclubs/ledger-engine/internal/model"
	"github.com/predclubs/ledger-engine/internal/store"
)

// Aggregator computes derived balance views from the ledger store.
type Aggregator struct {
	store store.Store
}

// NewAggregator creates a balance aggregator over the given store.
func NewAggregator(st store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// UserClubBalance is the net sum of a user's entries within one club.
// Zero for no entries.
func (a *Aggregator) UserClubBalance(ctx context.Context, userID, clubID string) (model.Micros, error) {
	entries, err := a.store.LedgerEntries(ctx, model.EntryFilter{UserID: userID, ClubID: clubID})
	if err != nil {
		return 0, err
	}
	return Sum(entries), nil
}

// UserNetBalance is the net sum of a user's entries across all clubs.
func (a *Aggregator) UserNetBalance(ctx context.Context, userID string) (model.Micros, error) {
	entries, err := a.store.LedgerEntries(ctx, model.EntryFilter{UserID: userID})
	if err != nil {
		return 0, err
	}
	return Sum(entries), nil
}

// UserSafeBalance is the net sum of a user's entries scoped to one
// custodial wallet.
func (a *Aggregator) UserSafeBalance(ctx context.Context, userID, safeAddress string) (model.Micros, error) {
	entries, err := a.store.LedgerEntries(ctx, model.EntryFilter{UserID: userID, SafeAddress: safeAddress})
	if err != nil {
		return 0, err
	}
	return Sum(entries), nil
}

// ClubsActiveCommitVolume returns, per club, the summed magnitude of COMMIT
// entries belonging to rounds that have not yet settled. Settlement is
// tracked via round status, not entry type alone: once payouts post, a
// round's commits drop out of the active figure.
func (a *Aggregator) ClubsActiveCommitVolume(ctx context.Context, clubIDs []string) (map[string]model.Micros, error) {
	volumes := make(map[string]model.Micros, len(clubIDs))

	for _, clubID := range clubIDs {
		rounds, err := a.store.RoundsByClub(ctx, clubID)
		if err != nil {
			return nil, err
		}
		active := make(map[string]bool, len(rounds))
		for _, r := range rounds {
			if !r.Settled() {
				active[r.ID] = true
			}
		}

		entries, err := a.store.LedgerEntries(ctx, model.EntryFilter{ClubID: clubID})
		if err != nil {
			return nil, err
		}

		var total model.Micros
		for _, e := range entries {
			if e.Type == model.EntryCommit && active[e.RoundID] {
				total += e.Amount.Abs()
			}
		}
		volumes[clubID] = total
	}

	return volumes, nil
}

// Sum folds entry amounts in exact integer arithmetic.
func Sum(entries []model.LedgerEntry) model.Micros {
	var total model.Micros
	for _, e := range entries {
		total += e.Amount
	}
	return total
}

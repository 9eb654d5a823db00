// Package performance computes trailing-window returns for clubs and users.
//
// Two computation paths exist and are tried in priority order: authoritative
// round-member records first, raw ledger reconstruction second. The rounds
// path signals "no rounds at all" with a distinct boolean so callers fall
// back only in that case. A zero-return result from existing rounds is
// preferred over re-deriving from the ledger.
package performance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/predclubs/ledger-engine/internal/model"
	"github.com/predclubs/ledger-engine/internal/store"
)

// Result is a computed simple return over a trailing window.
// Return = Σ pnl / Σ commit for the window; zero with
// HasWindowActivity=false when nothing was committed inside it.
type Result struct {
	Return            decimal.Decimal `json:"return"`
	HasWindowActivity bool            `json:"has_window_activity"`
	Source            string          `json:"source"` // "rounds" or "ledger"
}

const (
	SourceRounds = "rounds"
	SourceLedger = "ledger"
)

func zeroResult(source string) Result {
	return Result{Return: decimal.Zero, HasWindowActivity: false, Source: source}
}

// FromRounds computes the return from authoritative round-member records.
// The second return value is false only when there are no rounds at all;
// the typed "no data" signal that tells the caller to fall back to the
// ledger path. Rounds outside the window, or a zero commit total inside
// it, still count as data and yield a zero-return result.
func FromRounds(memberships []model.RoundMembership, days int, now time.Time) (Result, bool) {
	if len(memberships) == 0 {
		return zeroResult(SourceRounds), false
	}

	cutoff := now.AddDate(0, 0, -days)
	var commitSum, pnlSum model.Micros

	for _, m := range memberships {
		if m.RoundCreatedAt.Before(cutoff) {
			continue
		}
		commitSum += m.CommitAmount.Abs()
		pnlSum += m.PnlAmount
	}

	if commitSum == 0 {
		return zeroResult(SourceRounds), true
	}

	return Result{
		Return:            ratio(pnlSum, commitSum),
		HasWindowActivity: true,
		Source:            SourceRounds,
	}, true
}

// FromLedger reconstructs approximate commit/payout totals from COMMIT and
// PAYOUT entries inside the window. The fallback when no round records
// exist yet (e.g. history imported from raw ledger facts).
func FromLedger(entries []model.LedgerEntry, days int, now time.Time) Result {
	cutoff := now.AddDate(0, 0, -days)
	var commitSum, payoutSum model.Micros

	for _, e := range entries {
		if e.CreatedAt.Before(cutoff) {
			continue
		}
		switch e.Type {
		case model.EntryCommit:
			commitSum += e.Amount.Abs()
		case model.EntryPayout:
			payoutSum += e.Amount.Abs()
		}
	}

	if commitSum == 0 {
		return zeroResult(SourceLedger)
	}

	return Result{
		Return:            ratio(payoutSum-commitSum, commitSum),
		HasWindowActivity: true,
		Source:            SourceLedger,
	}
}

// ratio converts exactly at the boundary: both legs stay integer until the
// final division.
func ratio(num, den model.Micros) decimal.Decimal {
	return decimal.NewFromInt(int64(num)).Div(decimal.NewFromInt(int64(den)))
}

// Calculator runs the two-stage pipeline against the store.
type Calculator struct {
	store store.Store
}

// NewCalculator creates a performance calculator over the given store.
func NewCalculator(st store.Store) *Calculator {
	return &Calculator{store: st}
}

// ClubPerformance computes a club's trailing return, preferring round
// records and falling back to the club's ledger history only when the club
// has no rounds at all.
func (c *Calculator) ClubPerformance(ctx context.Context, clubID string, days int) (Result, error) {
	memberships, err := c.store.MembershipsByClub(ctx, clubID)
	if err != nil {
		return Result{}, err
	}
	if res, ok := FromRounds(memberships, days, time.Now().UTC()); ok {
		return res, nil
	}

	entries, err := c.store.LedgerEntries(ctx, model.EntryFilter{ClubID: clubID})
	if err != nil {
		return Result{}, err
	}
	return FromLedger(entries, days, time.Now().UTC()), nil
}

// UserPerformance is the same pipeline scoped to one user across clubs.
func (c *Calculator) UserPerformance(ctx context.Context, userID string, days int) (Result, error) {
	memberships, err := c.store.MembershipsByUser(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if res, ok := FromRounds(memberships, days, time.Now().UTC()); ok {
		return res, nil
	}

	entries, err := c.store.LedgerEntries(ctx, model.EntryFilter{UserID: userID})
	if err != nil {
		return Result{}, err
	}
	return FromLedger(entries, days, time.Now().UTC()), nil
}

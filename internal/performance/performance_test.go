package performance

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predclubs/ledger-engine/internal/model"
	"github.com/predclubs/ledger-engine/internal/store"
)

var now = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func membership(userID string, commit, pnl model.Micros, age time.Duration) model.RoundMembership {
	return model.RoundMembership{
		RoundMember: model.RoundMember{
			RoundID:      "r",
			UserID:       userID,
			CommitAmount: commit,
			PnlAmount:    pnl,
		},
		RoundCreatedAt: now.Add(-age),
		RoundStatus:    model.RoundSettled,
	}
}

func TestFromRounds_SimpleReturn(t *testing.T) {
	ms := []model.RoundMembership{
		membership("u1", 100, 50, 24*time.Hour),
		membership("u2", 200, -100, 48*time.Hour),
	}

	res, ok := FromRounds(ms, 30, now)
	require.True(t, ok)
	assert.True(t, res.HasWindowActivity)
	// (50 - 100) / (100 + 200) = -1/6
	want := decimal.NewFromInt(-50).Div(decimal.NewFromInt(300))
	assert.True(t, res.Return.Equal(want), "return = %s, want %s", res.Return, want)
	assert.Equal(t, SourceRounds, res.Source)
}

func TestFromRounds_NoRoundsAtAllSignalsFallback(t *testing.T) {
	res, ok := FromRounds(nil, 30, now)
	assert.False(t, ok, "empty membership set must signal no data")
	assert.False(t, res.HasWindowActivity)
	assert.True(t, res.Return.IsZero())
}

func TestFromRounds_RoundsOutsideWindowAreStillData(t *testing.T) {
	// A round exists but fell outside the window: no fallback, zero
	// return, no window activity.
	ms := []model.RoundMembership{
		membership("u1", 100, 40, 90*24*time.Hour),
	}

	res, ok := FromRounds(ms, 30, now)
	require.True(t, ok, "existing rounds must not trigger fallback")
	assert.False(t, res.HasWindowActivity)
	assert.True(t, res.Return.IsZero())
}

func TestFromRounds_ZeroCommitInWindow(t *testing.T) {
	ms := []model.RoundMembership{
		membership("u1", 0, 0, 24*time.Hour),
	}

	res, ok := FromRounds(ms, 30, now)
	require.True(t, ok)
	assert.False(t, res.HasWindowActivity)
	assert.True(t, res.Return.IsZero())
}

func TestFromRounds_WindowBoundary(t *testing.T) {
	inside := membership("u1", 100, 10, 29*24*time.Hour)
	outside := membership("u1", 1000, -999, 31*24*time.Hour)

	res, ok := FromRounds([]model.RoundMembership{inside, outside}, 30, now)
	require.True(t, ok)
	// Only the inside round counts: 10/100.
	assert.True(t, res.Return.Equal(decimal.RequireFromString("0.1")), "return = %s", res.Return)
}

func ledgerEntry(typ model.EntryType, amount model.Micros, age time.Duration) model.LedgerEntry {
	return model.LedgerEntry{
		ID: "e", UserID: "u1", ClubID: "club1",
		Type: typ, Amount: amount, CreatedAt: now.Add(-age),
	}
}

func TestFromLedger_ReconstructsFromCommitsAndPayouts(t *testing.T) {
	entries := []model.LedgerEntry{
		ledgerEntry(model.EntryDeposit, 5000000, 10*24*time.Hour), // ignored
		ledgerEntry(model.EntryCommit, -400000, 5*24*time.Hour),
		ledgerEntry(model.EntryPayout, 600000, 2*24*time.Hour),
	}

	res := FromLedger(entries, 30, now)
	assert.True(t, res.HasWindowActivity)
	// (600000 - 400000) / 400000 = 0.5
	assert.True(t, res.Return.Equal(decimal.RequireFromString("0.5")), "return = %s", res.Return)
	assert.Equal(t, SourceLedger, res.Source)
}

func TestFromLedger_NoCommitsInWindow(t *testing.T) {
	entries := []model.LedgerEntry{
		ledgerEntry(model.EntryCommit, -400000, 90*24*time.Hour), // outside
		ledgerEntry(model.EntryDeposit, 100, 24*time.Hour),
	}

	res := FromLedger(entries, 30, now)
	assert.False(t, res.HasWindowActivity)
	assert.True(t, res.Return.IsZero())
}

func TestCalculator_PrefersRoundsOverLedger(t *testing.T) {
	ms := store.NewMemoryStore()
	calc := NewCalculator(ms)
	ctx := context.Background()

	created := time.Now().UTC().Add(-24 * time.Hour)
	round := &model.PredictionRound{ID: "r1", ClubID: "club1", Status: model.RoundOpen, CreatedAt: created}
	require.NoError(t, ms.CreateRound(ctx, round,
		[]model.RoundMember{{RoundID: "r1", UserID: "u1", CommitAmount: 100}},
		[]model.LedgerEntry{{ID: "c1", UserID: "u1", ClubID: "club1", RoundID: "r1", Type: model.EntryCommit, Amount: -100, CreatedAt: created}},
	))
	require.NoError(t, ms.SettleRound(ctx, "r1",
		[]model.RoundMember{{RoundID: "r1", UserID: "u1", PayoutAmount: 150, PnlAmount: 50}},
		[]model.LedgerEntry{{ID: "p1", UserID: "u1", ClubID: "club1", RoundID: "r1", Type: model.EntryPayout, Amount: 150, CreatedAt: time.Now().UTC()}},
	))

	res, err := calc.ClubPerformance(ctx, "club1", 30)
	require.NoError(t, err)
	assert.Equal(t, SourceRounds, res.Source)
	assert.True(t, res.Return.Equal(decimal.RequireFromString("0.5")), "return = %s", res.Return)
}

func TestCalculator_FallsBackToLedgerWhenNoRounds(t *testing.T) {
	ms := store.NewMemoryStore()
	calc := NewCalculator(ms)
	ctx := context.Background()

	// Raw ledger facts without round records (imported history).
	at := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, ms.AppendEntry(ctx, &model.LedgerEntry{
		ID: "c1", UserID: "u1", ClubID: "club1", Type: model.EntryCommit, Amount: -200000, CreatedAt: at,
	}))
	require.NoError(t, ms.AppendEntry(ctx, &model.LedgerEntry{
		ID: "p1", UserID: "u1", ClubID: "club1", Type: model.EntryPayout, Amount: 300000, CreatedAt: at.Add(time.Hour),
	}))

	res, err := calc.UserPerformance(ctx, "u1", 30)
	require.NoError(t, err)
	assert.Equal(t, SourceLedger, res.Source)
	assert.True(t, res.Return.Equal(decimal.RequireFromString("0.5")), "return = %s", res.Return)
}

func TestCalculator_EmptyEverything(t *testing.T) {
	calc := NewCalculator(store.NewMemoryStore())

	res, err := calc.ClubPerformance(context.Background(), "ghost", 30)
	require.NoError(t, err)
	assert.False(t, res.HasWindowActivity)
	assert.True(t, res.Return.IsZero())
}

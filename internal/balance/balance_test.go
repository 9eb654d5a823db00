package balance

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predclubs/ledger-engine/internal/model"
	"github.com/predclubs/ledger-engine/internal/store"
)

func appendEntry(t *testing.T, ms *store.MemoryStore, userID, clubID, roundID string, typ model.EntryType, amount model.Micros) {
	t.Helper()
	err := ms.AppendEntry(context.Background(), &model.LedgerEntry{
		ID:        fmt.Sprintf("%s-%s-%d-%d", userID, typ, amount, rand.Int63()),
		UserID:    userID,
		ClubID:    clubID,
		RoundID:   roundID,
		Type:      typ,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestUserClubBalance_FoldsExactly(t *testing.T) {
	ms := store.NewMemoryStore()
	agg := NewAggregator(ms)
	ctx := context.Background()

	appendEntry(t, ms, "u1", "club1", "", model.EntryDeposit, 1000000)
	appendEntry(t, ms, "u1", "club1", "r1", model.EntryCommit, -400000)
	appendEntry(t, ms, "u1", "club1", "r1", model.EntryPayout, 600000)
	appendEntry(t, ms, "u1", "club2", "", model.EntryDeposit, 99) // other club

	got, err := agg.UserClubBalance(ctx, "u1", "club1")
	require.NoError(t, err)
	assert.Equal(t, model.Micros(1200000), got)
}

func TestUserClubBalance_NoEntriesIsZero(t *testing.T) {
	agg := NewAggregator(store.NewMemoryStore())
	got, err := agg.UserClubBalance(context.Background(), "nobody", "club1")
	require.NoError(t, err)
	assert.Equal(t, model.Micros(0), got)
}

func TestUserNetBalance_SpansClubs(t *testing.T) {
	ms := store.NewMemoryStore()
	agg := NewAggregator(ms)

	appendEntry(t, ms, "u1", "club1", "", model.EntryDeposit, 500)
	appendEntry(t, ms, "u1", "club2", "", model.EntryWithdraw, -200)
	appendEntry(t, ms, "u2", "club1", "", model.EntryDeposit, 9999) // other user

	got, err := agg.UserNetBalance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, model.Micros(300), got)
}

// Net balance must equal the exact sum of amounts for any sequence; the
// fold is associative and commutative with no precision loss.
func TestUserNetBalance_RandomSequenceMatchesExactSum(t *testing.T) {
	ms := store.NewMemoryStore()
	agg := NewAggregator(ms)
	rng := rand.New(rand.NewSource(42))

	var want int64
	for i := 0; i < 500; i++ {
		amt := rng.Int63n(2_000_000_000_000) - 1_000_000_000_000
		typ := model.EntryAdjustment // adjustment keeps arbitrary sign
		appendEntry(t, ms, "u1", "club1", "", typ, model.Micros(amt))
		want += amt
	}

	got, err := agg.UserNetBalance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, model.Micros(want), got)
}

func TestUserSafeBalance(t *testing.T) {
	ms := store.NewMemoryStore()
	agg := NewAggregator(ms)
	ctx := context.Background()

	require.NoError(t, ms.AppendEntry(ctx, &model.LedgerEntry{
		ID: "a", UserID: "u1", ClubID: "club1", SafeAddress: "0xsafe1",
		Type: model.EntryDeposit, Amount: 700, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, ms.AppendEntry(ctx, &model.LedgerEntry{
		ID: "b", UserID: "u1", ClubID: "club2", SafeAddress: "0xsafe2",
		Type: model.EntryDeposit, Amount: 50, CreatedAt: time.Now().UTC(),
	}))

	got, err := agg.UserSafeBalance(ctx, "u1", "0xsafe1")
	require.NoError(t, err)
	assert.Equal(t, model.Micros(700), got)
}

func TestClubsActiveCommitVolume_ExcludesSettledRounds(t *testing.T) {
	ms := store.NewMemoryStore()
	agg := NewAggregator(ms)
	ctx := context.Background()

	now := time.Now().UTC()
	openRound := &model.PredictionRound{ID: "open", ClubID: "club1", Status: model.RoundOpen, CreatedAt: now}
	require.NoError(t, ms.CreateRound(ctx, openRound,
		[]model.RoundMember{{RoundID: "open", UserID: "u1", CommitAmount: 400000}},
		[]model.LedgerEntry{{ID: "c1", UserID: "u1", ClubID: "club1", RoundID: "open", Type: model.EntryCommit, Amount: -400000, CreatedAt: now}},
	))

	settled := &model.PredictionRound{ID: "done", ClubID: "club1", Status: model.RoundOpen, CreatedAt: now}
	require.NoError(t, ms.CreateRound(ctx, settled,
		[]model.RoundMember{{RoundID: "done", UserID: "u1", CommitAmount: 100000}},
		[]model.LedgerEntry{{ID: "c2", UserID: "u1", ClubID: "club1", RoundID: "done", Type: model.EntryCommit, Amount: -100000, CreatedAt: now}},
	))
	require.NoError(t, ms.SettleRound(ctx, "done",
		[]model.RoundMember{{RoundID: "done", UserID: "u1", PayoutAmount: 90000, PnlAmount: -10000}},
		[]model.LedgerEntry{{ID: "p2", UserID: "u1", ClubID: "club1", RoundID: "done", Type: model.EntryPayout, Amount: 90000, CreatedAt: now}},
	))

	volumes, err := agg.ClubsActiveCommitVolume(ctx, []string{"club1", "club2"})
	require.NoError(t, err)

	// Only the open round's commit counts; the settled one dropped out.
	assert.Equal(t, model.Micros(400000), volumes["club1"])
	assert.Equal(t, model.Micros(0), volumes["club2"])
}

package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/predclubs/ledger-engine/internal/model"
	"github.com/predclubs/ledger-engine/internal/store"
)

func newTestService() (*Service, *store.MemoryStore) {
	ms := store.NewMemoryStore()
	return NewService(ms), ms
}

func TestAppend_Deposit(t *testing.T) {
	svc, ms := newTestService()

	entry, err := svc.Append(context.Background(), Draft{
		UserID:      "u1",
		ClubID:      "club1",
		SafeAddress: "0xsafe",
		Type:        "DEPOSIT",
		Amount:      "1000000",
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if entry.ID == "" {
		t.Error("expected generated id")
	}
	if entry.Amount != 1000000 {
		t.Errorf("amount = %d, want 1000000", entry.Amount)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("expected timestamp")
	}

	stored, _ := ms.LedgerEntries(context.Background(), model.EntryFilter{UserID: "u1"})
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored entry, got %d", len(stored))
	}
}

func TestAppend_WithdrawStoredNegative(t *testing.T) {
	svc, _ := newTestService()

	// Client sends the withdrawal as a positive magnitude.
	entry, err := svc.Append(context.Background(), Draft{
		UserID: "u1", ClubID: "club1", Type: "WITHDRAW", Amount: "250000",
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if entry.Amount != -250000 {
		t.Errorf("withdraw amount = %d, want -250000", entry.Amount)
	}

	// A pre-negated amount normalizes to the same representation.
	entry2, err := svc.Append(context.Background(), Draft{
		UserID: "u1", ClubID: "club1", Type: "WITHDRAW", Amount: "-250000",
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if entry2.Amount != -250000 {
		t.Errorf("pre-negated withdraw = %d, want -250000", entry2.Amount)
	}
}

func TestAppend_AdjustmentKeepsSign(t *testing.T) {
	svc, _ := newTestService()

	neg, err := svc.Append(context.Background(), Draft{
		UserID: "u1", ClubID: "club1", Type: "ADJUSTMENT", Amount: "-5",
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if neg.Amount != -5 {
		t.Errorf("adjustment amount = %d, want -5", neg.Amount)
	}
}

func TestAppend_ValidationRejectsBeforeMutation(t *testing.T) {
	svc, ms := newTestService()
	ctx := context.Background()

	cases := []Draft{
		{UserID: "", ClubID: "club1", Type: "DEPOSIT", Amount: "1"},
		{UserID: "u1", ClubID: "", Type: "DEPOSIT", Amount: "1"},
		{UserID: "u1", ClubID: "club1", Type: "TRANSFER", Amount: "1"},
		{UserID: "u1", ClubID: "club1", Type: "DEPOSIT", Amount: "1.5"},
		{UserID: "u1", ClubID: "club1", Type: "DEPOSIT", Amount: ""},
		{UserID: "u1", ClubID: "club1", Type: "DEPOSIT", Amount: "lots"},
	}
	for _, d := range cases {
		if _, err := svc.Append(ctx, d); !errors.Is(err, ErrInvalidEntry) {
			t.Errorf("draft %+v: expected ErrInvalidEntry, got %v", d, err)
		}
	}

	// No failed validation may have touched the ledger.
	entries, _ := ms.LedgerEntries(ctx, model.EntryFilter{UserID: "u1"})
	if len(entries) != 0 {
		t.Errorf("ledger should be untouched, found %d entries", len(entries))
	}
}

func TestNormalizeSign(t *testing.T) {
	cases := []struct {
		typ  model.EntryType
		in   model.Micros
		want model.Micros
	}{
		{model.EntryDeposit, 100, 100},
		{model.EntryDeposit, -100, 100},
		{model.EntryPayout, -600000, 600000},
		{model.EntryCommit, 400000, -400000},
		{model.EntryCommit, -400000, -400000},
		{model.EntryWithdraw, 50, -50},
		{model.EntryAdjustment, -7, -7},
		{model.EntryAdjustment, 7, 7},
	}
	for _, c := range cases {
		if got := NormalizeSign(c.typ, c.in); got != c.want {
			t.Errorf("NormalizeSign(%s, %d) = %d, want %d", c.typ, c.in, got, c.want)
		}
	}
}

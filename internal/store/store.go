// Package store defines the persistence interface for the ledger engine.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache for club and round records), and in-memory (for testing).
//
// The store is the sole arbiter of atomicity: round creation and settlement
// write a round, its members, and N ledger entries in one all-or-nothing
// transaction, so a concurrent reader never observes half of a round.
package store

import (
	"context"
	"errors"

	"github.com/predclubs/ledger-engine/internal/model"
)

// Sentinel errors shared by all implementations.
var (
	ErrNotFound      = errors.New("store: not found")
	ErrConflict      = errors.New("store: conflict")
	ErrDuplicate     = errors.New("store: duplicate")
	ErrInvalidFilter = errors.New("store: entry filter requires user or club")
)

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis caches club and round records only; ledger entries and everything
// derived from them are always read from the primary and refolded.
type Store interface {
	// --- Immutable ledger ---

	// AppendEntry appends one immutable ledger entry, assigning Seq.
	AppendEntry(ctx context.Context, entry *model.LedgerEntry) error

	// LedgerEntries returns entries matching the filter in insertion order
	// (created_at ascending, seq breaking ties). At least one of UserID or
	// ClubID must be set.
	LedgerEntries(ctx context.Context, f model.EntryFilter) ([]model.LedgerEntry, error)

	// --- Clubs and membership ---

	// CreateClub persists a new club together with its founding admin
	// membership in one atomic operation, so a club is never visible
	// without an active admin.
	CreateClub(ctx context.Context, club *model.Club, admin *model.ClubMember) error

	// GetClub retrieves a club by ID.
	GetClub(ctx context.Context, id string) (*model.Club, error)

	// AddMember adds a membership; (ClubID, UserID) is unique.
	AddMember(ctx context.Context, m *model.ClubMember) error

	// GetMember retrieves one membership record.
	GetMember(ctx context.Context, clubID, userID string) (*model.ClubMember, error)

	// --- Rounds ---

	// CreateRound atomically persists the round, its members, and their
	// COMMIT ledger entries. Either all rows become visible or none.
	CreateRound(ctx context.Context, round *model.PredictionRound, members []model.RoundMember, entries []model.LedgerEntry) error

	// SettleRound atomically flips the round to settled, populates member
	// payout/pnl amounts, and appends the PAYOUT ledger entries. A second
	// settlement of the same round fails with ErrConflict and writes
	// nothing.
	SettleRound(ctx context.Context, roundID string, payouts []model.RoundMember, entries []model.LedgerEntry) error

	// GetRound retrieves a round by ID.
	GetRound(ctx context.Context, id string) (*model.PredictionRound, error)

	// RoundsByClub returns a club's rounds, newest first.
	RoundsByClub(ctx context.Context, clubID string) ([]model.PredictionRound, error)

	// RoundMembers returns the member records for one round.
	RoundMembers(ctx context.Context, roundID string) ([]model.RoundMember, error)

	// MembershipsByClub returns all round-member records across a club's
	// rounds, joined with round creation time and status.
	MembershipsByClub(ctx context.Context, clubID string) ([]model.RoundMembership, error)

	// MembershipsByUser returns all round-member records for one user.
	MembershipsByUser(ctx context.Context, userID string) ([]model.RoundMembership, error)
}

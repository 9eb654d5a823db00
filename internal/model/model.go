// Package model defines the core domain types shared across the ledger engine.
// All monetary amounts are integer micro-units (six implied decimals of the
// stable currency); shopspring/decimal is used only at the display boundary:
// never float64 for money.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Micros is a signed monetary amount in millionths of the stable currency
// unit. All ledger arithmetic folds Micros directly; conversion to decimal
// happens only when an amount crosses into a response body.
type Micros int64

// microScale is the display scale: 1.000000 currency unit = 1e6 micros.
const microScale = 6

// Decimal converts to a display decimal (micros / 1_000_000).
func (m Micros) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -microScale)
}

// String renders the display form, e.g. 1200000 → "1.2".
func (m Micros) String() string { return m.Decimal().String() }

// Abs returns the magnitude of the amount.
func (m Micros) Abs() Micros {
	if m < 0 {
		return -m
	}
	return m
}

// EntryType classifies a ledger entry. The set is closed at the append
// boundary; readers keep a documented wallet-default branch for values
// introduced by future versions.
type EntryType string

const (
	EntryDeposit    EntryType = "DEPOSIT"
	EntryWithdraw   EntryType = "WITHDRAW"
	EntryCommit     EntryType = "COMMIT"
	EntryPayout     EntryType = "PAYOUT"
	EntryAdjustment EntryType = "ADJUSTMENT"
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	switch t {
	case EntryDeposit, EntryWithdraw, EntryCommit, EntryPayout, EntryAdjustment:
		return true
	}
	return false
}

// LedgerEntry is an immutable record of one monetary event. Once appended,
// entries are never modified or deleted; corrections are new ADJUSTMENT
// entries. Sign convention: DEPOSIT/PAYOUT credit the wallet (≥ 0),
// WITHDRAW and COMMIT are stored negative, ADJUSTMENT carries either sign.
type LedgerEntry struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	ClubID      string    `json:"club_id" db:"club_id"`
	SafeAddress string    `json:"safe_address" db:"safe_address"`
	RoundID     string    `json:"round_id,omitempty" db:"round_id"` // empty for wallet ops
	Type        EntryType `json:"type" db:"type"`
	Amount      Micros    `json:"amount" db:"amount"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Seq         int64     `json:"seq" db:"seq"` // store-assigned insertion sequence
}

// EntryFilter scopes a ledger query. UserID is required; ClubID and
// SafeAddress narrow the result when non-empty.
type EntryFilter struct {
	UserID      string
	ClubID      string
	SafeAddress string
}

// Member roles and statuses.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"

	MemberActive = "active"
	MemberLeft   = "left"
)

// Club is a prediction club with one pooled custodial wallet.
type Club struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	SafeAddress string    `json:"safe_address" db:"safe_address"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ClubMember is one user's membership in a club. (ClubID, UserID) is unique.
type ClubMember struct {
	ClubID   string    `json:"club_id" db:"club_id"`
	UserID   string    `json:"user_id" db:"user_id"`
	Role     string    `json:"role" db:"role"`     // "admin" or "member"
	Status   string    `json:"status" db:"status"` // "active" or "left"
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// IsActiveAdmin reports whether this membership can create or settle rounds.
func (m ClubMember) IsActiveAdmin() bool {
	return m.Role == RoleAdmin && m.Status == MemberActive
}

// Round statuses.
const (
	RoundPending = "pending"
	RoundOpen    = "open"
	RoundSettled = "settled"
)

// PredictionRound is a pooled group bet tied to one external market.
// CohortID is the external bytes32 market reference (0x + 64 hex chars).
type PredictionRound struct {
	ID          string    `json:"id" db:"id"`
	ClubID      string    `json:"club_id" db:"club_id"`
	CohortID    string    `json:"cohort_id" db:"cohort_id"`
	MarketRef   string    `json:"market_ref" db:"market_ref"`
	MarketTitle string    `json:"market_title" db:"market_title"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Settled reports whether payouts have been posted for this round.
func (r PredictionRound) Settled() bool { return r.Status == RoundSettled }

// RoundMember is one user's stake in a round. CommitAmount is the positive
// magnitude committed; PayoutAmount/PnlAmount are populated at settlement.
type RoundMember struct {
	RoundID      string `json:"round_id" db:"round_id"`
	UserID       string `json:"user_id" db:"user_id"`
	CommitAmount Micros `json:"commit_amount" db:"commit_amount"`
	PayoutAmount Micros `json:"payout_amount" db:"payout_amount"`
	PnlAmount    Micros `json:"pnl_amount" db:"pnl_amount"`
}

// RoundMembership pairs a member record with its round's creation time and
// status; the performance calculator windows on RoundCreatedAt.
type RoundMembership struct {
	RoundMember
	ClubID         string    `json:"club_id" db:"club_id"`
	RoundCreatedAt time.Time `json:"round_created_at" db:"round_created_at"`
	RoundStatus    string    `json:"round_status" db:"round_status"`
}

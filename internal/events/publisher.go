// Package events defines the outbound event contract for round lifecycle
// notifications. Publishing is fire-and-forget after the ledger transaction
// commits: a broker failure is logged and counted, never propagated back
// into ledger state.
package events

import "context"

// RoundCreated is emitted after a round and its commit entries are visible.
type RoundCreated struct {
	RoundID   string `json:"round_id"`
	ClubID    string `json:"club_id"`
	CohortID  string `json:"cohort_id"`
	Members   int    `json:"members"`
	PoolTotal string `json:"pool_total"` // display decimal
	CreatedAt string `json:"created_at"`
}

// RoundSettled is emitted after payouts post.
type RoundSettled struct {
	RoundID     string `json:"round_id"`
	ClubID      string `json:"club_id"`
	CohortID    string `json:"cohort_id"`
	PayoutTotal string `json:"payout_total"` // display decimal
	SettledAt   string `json:"settled_at"`
}

// Publisher sends lifecycle events to an external broker.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// Noop discards events. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, any) error { return nil }

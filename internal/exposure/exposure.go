// Package exposure turns a user's ledger history into a stacked
// wallet-vs-market timeline: how much sat idle in the custodial wallet and
// how much was committed to open rounds after each monetary event.
//
// The series is not restartable mid-stream. Both accumulators start at zero
// and the full ordered history is replayed on every call; correctness
// depends on complete replay, so there is no checkpointing.
package exposure

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/predclubs/ledger-engine/internal/model"
)

// Point is one chart-ready sample: display-decimal wallet and market values
// after applying one entry.
type Point struct {
	Label  string          `json:"label"` // entry date, YYYY-MM-DD
	Wallet decimal.Decimal `json:"wallet"`
	Market decimal.Decimal `json:"market"`
}

// BuildSeries replays the entries in time order (insertion sequence breaks
// timestamp ties) and emits one point per entry. Accumulation is exact
// int64 micro-units; conversion to decimal happens only on emit, with both
// values floored at zero; negative excursions from ordering artifacts are
// clamped for display, not reported.
func BuildSeries(entries []model.LedgerEntry) []Point {
	ordered := append([]model.LedgerEntry(nil), entries...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].Seq < ordered[j].Seq
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	points := make([]Point, 0, len(ordered))
	var wallet, market model.Micros

	for _, e := range ordered {
		switch e.Type {
		case model.EntryCommit:
			// Funds leave the wallet into the round's pool.
			delta := e.Amount.Abs()
			wallet -= delta
			market += delta
		case model.EntryPayout:
			// Funds return from the market; the market leg can pay out
			// more than was committed, so it floors at zero.
			delta := e.Amount.Abs()
			market -= delta
			if market < 0 {
				market = 0
			}
			wallet += delta
		default:
			// DEPOSIT, ADJUSTMENT, WITHDRAW, and any type this version
			// doesn't know, move the wallet leg. Withdrawals arrive
			// negative, so addition naturally decreases the wallet.
			wallet += e.Amount
		}

		points = append(points, Point{
			Label:  e.CreatedAt.Format("2006-01-02"),
			Wallet: clamp(wallet).Decimal(),
			Market: clamp(market).Decimal(),
		})
	}

	return points
}

func clamp(m model.Micros) model.Micros {
	if m < 0 {
		return 0
	}
	return m
}

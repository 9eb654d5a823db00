// Package limits enforces commit exposure caps at round creation.
//
// A member of several clubs can accumulate correlated risk by committing to
// many open rounds at once. The limiter bounds a user's active (unsettled)
// commit exposure both within a single club and across all clubs; the check
// runs strictly before any ledger mutation, so a rejected round writes
// nothing.
package limits

import (
	"errors"

	"github.com/predclubs/ledger-engine/internal/model"
)

var (
	// ErrClubLimitExceeded is returned when a commit would push a user's
	// active exposure within one club beyond the per-club maximum.
	ErrClubLimitExceeded = errors.New("limits: per-club commit limit exceeded")

	// ErrTotalLimitExceeded is returned when a commit would push a user's
	// aggregate active exposure across all clubs beyond the total maximum.
	ErrTotalLimitExceeded = errors.New("limits: total commit limit exceeded")
)

// CommitLimiter enforces commit exposure limits. Zero limits disable the
// corresponding check.
type CommitLimiter struct {
	// MaxPerClub is the maximum active commit exposure in any single club.
	MaxPerClub model.Micros

	// MaxTotal is the maximum aggregate active commit exposure across
	// all clubs.
	MaxTotal model.Micros
}

// NewCommitLimiter creates a limiter with the given per-club and total caps.
func NewCommitLimiter(maxPerClub, maxTotal model.Micros) *CommitLimiter {
	return &CommitLimiter{
		MaxPerClub: maxPerClub,
		MaxTotal:   maxTotal,
	}
}

// Check validates whether an additional commit respects the exposure caps.
//
// Parameters:
//   - targetClub: club whose round is being committed to
//   - commitDelta: positive magnitude of the new commit
//   - activeExposures: map of club ID → the user's current active commit
//     exposure, derived from unsettled rounds
//
// Returns nil if the commit is within limits.
func (l *CommitLimiter) Check(targetClub string, commitDelta model.Micros, activeExposures map[string]model.Micros) error {
	newInClub := activeExposures[targetClub] + commitDelta.Abs()
	if l.MaxPerClub > 0 && newInClub > l.MaxPerClub {
		return ErrClubLimitExceeded
	}

	total := newInClub
	for clubID, exposure := range activeExposures {
		if clubID == targetClub {
			continue // already counted via newInClub above
		}
		total += exposure.Abs()
	}
	if l.MaxTotal > 0 && total > l.MaxTotal {
		return ErrTotalLimitExceeded
	}

	return nil
}

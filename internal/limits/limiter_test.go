package limits

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/predclubs/ledger-engine/internal/model"
)

func TestCheck_WithinLimits(t *testing.T) {
	l := NewCommitLimiter(1_000_000, 5_000_000)
	err := l.Check("club1", 400_000, map[string]model.Micros{"club1": 500_000})
	assert.NoError(t, err)
}

func TestCheck_AtLimitIsAllowed(t *testing.T) {
	l := NewCommitLimiter(1_000_000, 5_000_000)
	err := l.Check("club1", 500_000, map[string]model.Micros{"club1": 500_000})
	assert.NoError(t, err)
}

func TestCheck_PerClubExceeded(t *testing.T) {
	l := NewCommitLimiter(1_000_000, 5_000_000)
	err := l.Check("club1", 600_000, map[string]model.Micros{"club1": 500_000})
	assert.ErrorIs(t, err, ErrClubLimitExceeded)
}

func TestCheck_TotalExceededAcrossClubs(t *testing.T) {
	l := NewCommitLimiter(3_000_000, 5_000_000)
	existing := map[string]model.Micros{
		"club1": 2_000_000,
		"club2": 2_000_000,
	}
	err := l.Check("club3", 1_500_000, existing)
	assert.ErrorIs(t, err, ErrTotalLimitExceeded)
}

func TestCheck_ZeroLimitsDisableChecks(t *testing.T) {
	l := NewCommitLimiter(0, 0)
	err := l.Check("club1", 1<<40, map[string]model.Micros{"club1": 1 << 40})
	assert.NoError(t, err)
}

func TestCheck_DeltaMagnitudeUsed(t *testing.T) {
	// Commits may arrive signed; the limiter cares about magnitude.
	l := NewCommitLimiter(1_000_000, 0)
	err := l.Check("club1", -600_000, map[string]model.Micros{"club1": 500_000})
	assert.ErrorIs(t, err, ErrClubLimitExceeded)
}

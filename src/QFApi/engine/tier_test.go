package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/commonsfund/quadfund/src/QFApi/engine"
	"github.com/commonsfund/quadfund/src/QFApi/types"
)

const day = 86400

func TestDeriveTierFreshParticipant(t *testing.T) {
	assert.Equal(t, engine.Tier0, engine.DeriveTier(types.Reputation{}, 1000))
}

func TestDeriveTier2(t *testing.T) {
	rec := types.Reputation{
		TotalSessions:  5,
		UniqueTargets:  4,
		FirstVoteAt:    0,
		LastVoteAt:     7 * day,
		TotalUnitsCast: 25, // avg 5, well under 5*scale
	}
	assert.Equal(t, engine.Tier2, engine.DeriveTier(rec, 1000))
}

func TestDeriveTier1(t *testing.T) {
	rec := types.Reputation{
		TotalSessions:  3,
		UniqueTargets:  3,
		FirstVoteAt:    0,
		LastVoteAt:     3 * day,
		TotalUnitsCast: 3,
	}
	assert.Equal(t, engine.Tier1, engine.DeriveTier(rec, 1000))
}

func TestDeriveTierWhaleVetoDominates(t *testing.T) {
	// Every tier-2 metric is met, but lifetime average volume is over the
	// whale line, so no discount at all.
	scale := uint64(1000)
	rec := types.Reputation{
		TotalSessions:  10,
		UniqueTargets:  8,
		FirstVoteAt:    0,
		LastVoteAt:     30 * day,
		TotalUnitsCast: 10 * (10*scale + 1),
	}
	assert.Equal(t, engine.Tier0, engine.DeriveTier(rec, scale))
}

func TestDeriveTierRequiresAllMetrics(t *testing.T) {
	base := types.Reputation{
		TotalSessions:  5,
		UniqueTargets:  4,
		FirstVoteAt:    0,
		LastVoteAt:     7 * day,
		TotalUnitsCast: 25,
	}

	tooFewSessions := base
	tooFewSessions.TotalSessions = 4
	tooFewSessions.TotalUnitsCast = 20
	assert.Equal(t, engine.Tier1, engine.DeriveTier(tooFewSessions, 1000))

	tooFewTargets := base
	tooFewTargets.UniqueTargets = 3
	assert.Equal(t, engine.Tier1, engine.DeriveTier(tooFewTargets, 1000))

	tooYoung := base
	tooYoung.LastVoteAt = 6*day + day - 1 // 6 full days
	assert.Equal(t, engine.Tier1, engine.DeriveTier(tooYoung, 1000))

	tooShortForAnything := types.Reputation{
		TotalSessions:  2,
		UniqueTargets:  2,
		FirstVoteAt:    0,
		LastVoteAt:     10 * day,
		TotalUnitsCast: 2,
	}
	assert.Equal(t, engine.Tier0, engine.DeriveTier(tooShortForAnything, 1000))
}

func TestDeriveTierAvgVolumeBounds(t *testing.T) {
	// avg above 5*scale but at most 7*scale drops tier 2 to tier 1.
	scale := uint64(10)
	rec := types.Reputation{
		TotalSessions:  5,
		UniqueTargets:  4,
		FirstVoteAt:    0,
		LastVoteAt:     7 * day,
		TotalUnitsCast: 5 * (5*scale + 1),
	}
	assert.Equal(t, engine.Tier1, engine.DeriveTier(rec, scale))

	// avg above 7*scale but not whale territory gets nothing.
	rec.TotalUnitsCast = 5 * (7*scale + 1)
	assert.Equal(t, engine.Tier0, engine.DeriveTier(rec, scale))
}

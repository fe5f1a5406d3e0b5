package engine

import "github.com/commonsfund/quadfund/src/QFApi/types"

// Tier thresholds. unitScale comes from the treasury (mint-rate derived)
// so the whale cutoffs track the unit economy rather than absolute counts.
const (
	secondsPerDay = 86400

	tier2MinSessions      = 5
	tier2MinUniqueTargets = 4
	tier2MinDaysActive    = 7
	tier2MaxAvgScale      = 5

	tier1MinSessions      = 3
	tier1MinUniqueTargets = 3
	tier1MinDaysActive    = 3
	tier1MaxAvgScale      = 7

	whaleVetoAvgScale = 10
)

// DeriveTier maps a reputation record to a discount tier. The whale veto
// is evaluated first and dominates: lifetime average volume above
// 10*unitScale forces tier 0 no matter how strong the other metrics are.
func DeriveTier(rec types.Reputation, unitScale uint64) Tier {
	if rec.TotalSessions == 0 {
		return Tier0
	}
	avgUnitsPerSession := rec.TotalUnitsCast / rec.TotalSessions
	daysActive := uint64(0)
	if rec.LastVoteAt > rec.FirstVoteAt {
		daysActive = uint64(rec.LastVoteAt-rec.FirstVoteAt) / secondsPerDay
	}

	if avgUnitsPerSession > whaleVetoAvgScale*unitScale {
		return Tier0
	}
	if rec.TotalSessions >= tier2MinSessions &&
		rec.UniqueTargets >= tier2MinUniqueTargets &&
		daysActive >= tier2MinDaysActive &&
		avgUnitsPerSession <= tier2MaxAvgScale*unitScale {
		return Tier2
	}
	if rec.TotalSessions >= tier1MinSessions &&
		rec.UniqueTargets >= tier1MinUniqueTargets &&
		daysActive >= tier1MinDaysActive &&
		avgUnitsPerSession <= tier1MaxAvgScale*unitScale {
		return Tier1
	}
	return Tier0
}

// ReputationView is the caller-facing projection of a reputation record.
type ReputationView struct {
	Tier               Tier   `json:"tier"`
	TotalSessions      uint64 `json:"totalSessions"`
	UniqueTargets      uint64 `json:"uniqueTargets"`
	DaysActive         uint64 `json:"daysActive"`
	AvgUnitsPerSession uint64 `json:"avgUnitsPerSession"`
	TotalUnitsCast     uint64 `json:"totalUnitsCast"`
}

func viewOf(rec types.Reputation, unitScale uint64) ReputationView {
	v := ReputationView{
		Tier:           DeriveTier(rec, unitScale),
		TotalSessions:  rec.TotalSessions,
		UniqueTargets:  rec.UniqueTargets,
		TotalUnitsCast: rec.TotalUnitsCast,
	}
	if rec.TotalSessions > 0 {
		v.AvgUnitsPerSession = rec.TotalUnitsCast / rec.TotalSessions
	}
	if rec.LastVoteAt > rec.FirstVoteAt {
		v.DaysActive = uint64(rec.LastVoteAt-rec.FirstVoteAt) / secondsPerDay
	}
	return v
}

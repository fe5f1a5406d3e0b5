package engine

import (
	"context"

	"github.com/commonsfund/quadfund/src/QFApi/types"
)

// blockingMilestone returns the lowest milestone whose cumulative
// threshold has been reached but whose proof is not yet verified. While
// such a milestone exists the whole proposal is frozen for voting, not
// just the crossed checkpoint.
func blockingMilestone(ms []types.Milestone, totalUnits uint64) (types.Milestone, bool) {
	for _, m := range ms {
		if m.Threshold <= totalUnits && !m.Verified {
			return m, true
		}
	}
	return types.Milestone{}, false
}

// isComplete reports the terminal state: the final threshold reached and
// every milestone verified. Complete proposals accept no further votes.
func isComplete(ms []types.Milestone, totalUnits uint64) bool {
	if len(ms) == 0 {
		return false
	}
	for _, m := range ms {
		if !m.Verified {
			return false
		}
	}
	return totalUnits >= ms[len(ms)-1].Threshold
}

// IsBlocked reports whether voting on the proposal is currently frozen
// behind an unverified milestone.
func (e *Engine) IsBlocked(ctx context.Context, proposalID uint64) (bool, error) {
	tx := e.db.WithContext(ctx)
	p, err := loadProposal(tx, proposalID)
	if err != nil {
		return false, err
	}
	ms, err := loadMilestones(tx, proposalID)
	if err != nil {
		return false, err
	}
	_, blocked := blockingMilestone(ms, p.TotalUnitsReceived)
	return blocked, nil
}

// ProposalStatus is the read-model for one proposal.
type ProposalStatus struct {
	ID                 uint64            `json:"id"`
	Owner              string            `json:"owner"`
	Title              string            `json:"title"`
	TotalUnitsReceived uint64            `json:"totalUnitsReceived"`
	Blocked            bool              `json:"blocked"`
	Complete           bool              `json:"complete"`
	OwnerSuspended     bool              `json:"ownerSuspended"`
	Milestones         []types.Milestone `json:"milestones"`
}

func (e *Engine) ProposalStatus(ctx context.Context, proposalID uint64) (ProposalStatus, error) {
	tx := e.db.WithContext(ctx)
	p, err := loadProposal(tx, proposalID)
	if err != nil {
		return ProposalStatus{}, err
	}
	ms, err := loadMilestones(tx, proposalID)
	if err != nil {
		return ProposalStatus{}, err
	}
	org, err := loadOrg(tx, p.Owner)
	if err != nil {
		return ProposalStatus{}, err
	}
	_, blocked := blockingMilestone(ms, p.TotalUnitsReceived)
	return ProposalStatus{
		ID:                 p.ID,
		Owner:              p.Owner,
		Title:              p.Title,
		TotalUnitsReceived: p.TotalUnitsReceived,
		Blocked:            blocked,
		Complete:           isComplete(ms, p.TotalUnitsReceived),
		OwnerSuspended:     org.Suspended,
		Milestones:         ms,
	}, nil
}

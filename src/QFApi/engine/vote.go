package engine

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/commonsfund/quadfund/src/QFApi/types"
)

// VoteReceipt reports what one committed vote changed.
type VoteReceipt struct {
	ProposalID uint64 `json:"proposalId"`
	Units      uint64 `json:"units"`
	Cost       uint64 `json:"cost"`
	UnitsHeld  uint64 `json:"unitsHeld"`
	TotalUnits uint64 `json:"totalUnits"`
	Tier       Tier   `json:"tier"`
	NowBlocked bool   `json:"nowBlocked"`
}

// CastVote purchases deltaUnits of vote weight on a proposal. The whole
// sequence — gate check, pricing against pre-vote reputation, balance
// debit, position/proposal/reputation updates and the audit append — is
// one serialized transaction; any failure leaves no trace.
func (e *Engine) CastVote(ctx context.Context, participant string, proposalID, deltaUnits uint64) (VoteReceipt, error) {
	if deltaUnits == 0 {
		return VoteReceipt{}, fmt.Errorf("%w: zero units", ErrInvalidInput)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var receipt VoteReceipt
	var audit types.AuditEvent
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := loadProposal(tx, proposalID)
		if err != nil {
			return err
		}
		org, err := loadOrg(tx, p.Owner)
		if err != nil {
			return err
		}
		if org.Suspended {
			return fmt.Errorf("%w: proposal owner is suspended", ErrPreconditionFailed)
		}
		ms, err := loadMilestones(tx, proposalID)
		if err != nil {
			return err
		}
		if m, blocked := blockingMilestone(ms, p.TotalUnitsReceived); blocked {
			return fmt.Errorf("%w: voting frozen pending proof for milestone %d", ErrPreconditionFailed, m.Seq)
		}
		if isComplete(ms, p.TotalUnitsReceived) {
			return fmt.Errorf("%w: proposal is fully funded and complete", ErrPreconditionFailed)
		}

		// Tier from the state before this vote; the vote being priced
		// can never improve its own discount.
		rec, isFirstVote, err := loadReputation(tx, participant)
		if err != nil {
			return err
		}
		tier := DeriveTier(rec, e.treasury.UnitScale())

		pos, isNewTarget, err := loadPosition(tx, proposalID, participant)
		if err != nil {
			return err
		}
		cost, err := VoteCost(pos.UnitsHeld, deltaUnits, tier)
		if err != nil {
			return err
		}

		if err := e.treasury.Debit(tx, participant, cost); err != nil {
			return err
		}

		totalBefore := p.TotalUnitsReceived
		pos.UnitsHeld += deltaUnits
		if err := tx.Save(&pos).Error; err != nil {
			return err
		}
		p.TotalUnitsReceived += deltaUnits
		if err := tx.Model(&types.Proposal{}).Where("id = ?", p.ID).
			Update("total_units_received", p.TotalUnitsReceived).Error; err != nil {
			return err
		}

		now := e.now().Unix()
		rec.TotalSessions++
		if isNewTarget {
			rec.UniqueTargets++
		}
		rec.TotalUnitsCast += deltaUnits
		if isFirstVote {
			rec.FirstVoteAt = now
		}
		rec.LastVoteAt = now
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}

		audit = types.AuditEvent{
			Kind:         AuditVoteCast,
			Actor:        participant,
			ProposalID:   proposalID,
			MilestoneSeq: -1,
			Units:        deltaUnits,
			Cost:         cost,
			TotalBefore:  totalBefore,
			TotalAfter:   p.TotalUnitsReceived,
		}
		if err := e.appendAudit(tx, &audit); err != nil {
			return err
		}

		_, nowBlocked := blockingMilestone(ms, p.TotalUnitsReceived)
		receipt = VoteReceipt{
			ProposalID: proposalID,
			Units:      deltaUnits,
			Cost:       cost,
			UnitsHeld:  pos.UnitsHeld,
			TotalUnits: p.TotalUnitsReceived,
			Tier:       tier,
			NowBlocked: nowBlocked,
		}
		return nil
	})
	if err != nil {
		return VoteReceipt{}, err
	}

	e.publishAudit(ctx, audit)
	return receipt, nil
}

// QuoteVoteCost prices a hypothetical vote against the current committed
// state without mutating anything.
func (e *Engine) QuoteVoteCost(ctx context.Context, participant string, proposalID, deltaUnits uint64) (uint64, error) {
	if deltaUnits == 0 {
		return 0, fmt.Errorf("%w: zero units", ErrInvalidInput)
	}
	tx := e.db.WithContext(ctx)
	if _, err := loadProposal(tx, proposalID); err != nil {
		return 0, err
	}
	rec, _, err := loadReputation(tx, participant)
	if err != nil {
		return 0, err
	}
	pos, _, err := loadPosition(tx, proposalID, participant)
	if err != nil {
		return 0, err
	}
	return VoteCost(pos.UnitsHeld, deltaUnits, DeriveTier(rec, e.treasury.UnitScale()))
}

func loadReputation(tx *gorm.DB, participant string) (types.Reputation, bool, error) {
	var rec types.Reputation
	err := tx.First(&rec, "address = ?", participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Reputation{Address: participant}, true, nil
	}
	return rec, false, err
}

func loadPosition(tx *gorm.DB, proposalID uint64, participant string) (types.VotePosition, bool, error) {
	var pos types.VotePosition
	err := tx.First(&pos, "proposal_id = ? AND address = ?", proposalID, participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.VotePosition{ProposalID: proposalID, Address: participant}, true, nil
	}
	return pos, false, err
}

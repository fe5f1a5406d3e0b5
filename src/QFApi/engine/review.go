package engine

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/commonsfund/quadfund/src/QFApi/types"
)

// SubmitProof files completion evidence for a reached milestone. Only the
// proposal owner may submit, only one submission per milestone may be
// pending at a time, and resubmission after rejection is allowed.
func (e *Engine) SubmitProof(ctx context.Context, proposalID uint64, milestoneSeq uint32, evidence, submitter string) (uint64, error) {
	if evidence == "" {
		return 0, fmt.Errorf("%w: empty evidence reference", ErrInvalidInput)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var submissionID uint64
	var audit types.AuditEvent
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := loadProposal(tx, proposalID)
		if err != nil {
			return err
		}
		if p.Owner != submitter {
			return fmt.Errorf("%w: only the proposal owner may submit proof", ErrPermissionDenied)
		}
		org, err := loadOrg(tx, p.Owner)
		if err != nil {
			return err
		}
		if org.Suspended {
			return fmt.Errorf("%w: organization is suspended", ErrPreconditionFailed)
		}

		ms, err := loadMilestones(tx, proposalID)
		if err != nil {
			return err
		}
		if milestoneSeq >= uint32(len(ms)) {
			return fmt.Errorf("%w: milestone %d does not exist", ErrInvalidInput, milestoneSeq)
		}
		m := ms[milestoneSeq]
		if m.Verified {
			return fmt.Errorf("%w: milestone %d is already verified", ErrPreconditionFailed, milestoneSeq)
		}
		if p.TotalUnitsReceived < m.Threshold {
			return fmt.Errorf("%w: milestone %d funding threshold not reached", ErrPreconditionFailed, milestoneSeq)
		}

		var pending int64
		err = tx.Model(&types.ProofSubmission{}).
			Where("proposal_id = ? AND milestone_seq = ? AND processed = ?", proposalID, milestoneSeq, false).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return fmt.Errorf("%w: a submission for milestone %d is already pending", ErrPreconditionFailed, milestoneSeq)
		}

		sub := types.ProofSubmission{
			ProposalID:   proposalID,
			MilestoneSeq: milestoneSeq,
			Evidence:     evidence,
			Submitter:    submitter,
			SubmittedAt:  e.now(),
		}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		submissionID = sub.ID

		audit = types.AuditEvent{
			Kind:         AuditProofSubmitted,
			Actor:        submitter,
			ProposalID:   proposalID,
			MilestoneSeq: int32(milestoneSeq),
			Detail:       evidence,
		}
		return e.appendAudit(tx, &audit)
	})
	if err != nil {
		return 0, err
	}

	e.publishAudit(ctx, audit)
	return submissionID, nil
}

// VerifyProof resolves a pending submission. Approval flips the
// milestone's verified flag, re-opens the vote gate and releases the
// threshold delta to the owner. Rejection records the reason, adds a
// strike and suspends the organization once the strike limit is hit.
// Privilege is checked at the HTTP boundary; reviewer is recorded for
// the audit trail.
func (e *Engine) VerifyProof(ctx context.Context, submissionID uint64, approve bool, reason, reviewer string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var audits []types.AuditEvent
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub types.ProofSubmission
		err := tx.First(&sub, "id = ?", submissionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: submission %d", ErrNotFound, submissionID)
		}
		if err != nil {
			return err
		}
		if sub.Processed {
			return fmt.Errorf("%w: submission %d already processed", ErrPreconditionFailed, submissionID)
		}

		p, err := loadProposal(tx, sub.ProposalID)
		if err != nil {
			return err
		}
		ms, err := loadMilestones(tx, sub.ProposalID)
		if err != nil {
			return err
		}
		m := ms[sub.MilestoneSeq]

		sub.Processed = true
		sub.Approved = approve
		sub.Reason = reason
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}

		if approve {
			if err := tx.Model(&types.Milestone{}).
				Where("proposal_id = ? AND seq = ?", sub.ProposalID, sub.MilestoneSeq).
				Update("verified", true).Error; err != nil {
				return err
			}

			amount := m.Threshold
			if sub.MilestoneSeq > 0 {
				amount -= ms[sub.MilestoneSeq-1].Threshold
			}
			if err := e.treasury.ReleaseMilestoneFunds(tx, sub.ProposalID, sub.MilestoneSeq, amount, p.Owner); err != nil {
				return err
			}

			audits = append(audits,
				types.AuditEvent{
					Kind:         AuditProofApproved,
					Actor:        reviewer,
					ProposalID:   sub.ProposalID,
					MilestoneSeq: int32(sub.MilestoneSeq),
					Detail:       reason,
				},
				types.AuditEvent{
					Kind:         AuditMilestonePayout,
					Actor:        reviewer,
					ProposalID:   sub.ProposalID,
					MilestoneSeq: int32(sub.MilestoneSeq),
					Units:        amount,
					Detail:       p.Owner,
				})
		} else {
			org, err := loadOrg(tx, p.Owner)
			if err != nil {
				return err
			}
			org.StrikeCount++
			if org.StrikeCount >= e.policy.StrikeLimit {
				org.Suspended = true
				org.SuspendReason = reason
			}
			if err := tx.Save(&org).Error; err != nil {
				return err
			}

			audits = append(audits, types.AuditEvent{
				Kind:         AuditProofRejected,
				Actor:        reviewer,
				ProposalID:   sub.ProposalID,
				MilestoneSeq: int32(sub.MilestoneSeq),
				Detail:       reason,
			})
			if org.Suspended {
				audits = append(audits, types.AuditEvent{
					Kind:         AuditOrgSuspended,
					Actor:        reviewer,
					ProposalID:   sub.ProposalID,
					MilestoneSeq: int32(sub.MilestoneSeq),
					Detail:       fmt.Sprintf("strike %d: %s", org.StrikeCount, reason),
				})
			}
		}

		for i := range audits {
			if err := e.appendAudit(tx, &audits[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, ev := range audits {
		e.publishAudit(ctx, ev)
	}
	return nil
}

// EmergencySuspend suspends an organization without a rejected proof, for
// severe out-of-band violations. Privileged; checked at the boundary.
func (e *Engine) EmergencySuspend(ctx context.Context, orgAddress, reason, admin string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var audit types.AuditEvent
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := loadOrg(tx, orgAddress)
		if err != nil {
			return err
		}
		if org.Suspended {
			return fmt.Errorf("%w: organization already suspended", ErrPreconditionFailed)
		}
		org.Suspended = true
		org.SuspendReason = reason
		if err := tx.Save(&org).Error; err != nil {
			return err
		}

		audit = types.AuditEvent{
			Kind:         AuditOrgSuspended,
			Actor:        admin,
			MilestoneSeq: -1,
			Detail:       fmt.Sprintf("emergency: %s", reason),
		}
		return e.appendAudit(tx, &audit)
	})
	if err != nil {
		return err
	}

	e.publishAudit(ctx, audit)
	return nil
}

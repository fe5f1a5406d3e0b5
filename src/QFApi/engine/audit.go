package engine

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"

	"github.com/commonsfund/quadfund/src/QFApi/types"
)

// Audit event kinds
const (
	AuditVoteCast        = "vote_cast"
	AuditProposalCreated = "proposal_created"
	AuditProofSubmitted  = "proof_submitted"
	AuditProofApproved   = "proof_approved"
	AuditProofRejected   = "proof_rejected"
	AuditOrgSuspended    = "org_suspended"
	AuditOrgRegistered   = "org_registered"
	AuditMilestonePayout = "milestone_payout"
)

// appendAudit chains ev onto the log inside the caller's transaction.
// Hash = blake2b-256 over the previous hash plus the event's key fields,
// so the log is tamper-evident without any external anchor.
func (e *Engine) appendAudit(tx *gorm.DB, ev *types.AuditEvent) error {
	var prev types.AuditEvent
	err := tx.Order("id DESC").First(&prev).Error
	switch {
	case err == nil:
		ev.PrevHash = prev.Hash
	case errors.Is(err, gorm.ErrRecordNotFound):
		ev.PrevHash = ""
	default:
		return err
	}

	ev.CreatedAt = e.now()
	sum := blake2b.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d|%d|%d|%d|%d|%d|%s",
		ev.PrevHash, ev.Kind, ev.Actor, ev.ProposalID, ev.MilestoneSeq,
		ev.Units, ev.Cost, ev.TotalBefore, ev.TotalAfter, ev.Detail)))
	ev.Hash = hex.EncodeToString(sum[:])

	if err := tx.Create(ev).Error; err != nil {
		return err
	}
	return nil
}

// publishAudit forwards a committed event to the configured publisher
// (redis stream in production). Publish failures are logged, not
// surfaced: the DB row is the source of truth.
func (e *Engine) publishAudit(ctx context.Context, ev types.AuditEvent) {
	if e.publish == nil {
		return
	}
	if err := e.publish(ctx, ev); err != nil {
		log.Printf("audit publish failed for event %d: %v", ev.ID, err)
	}
}

// AuditLog returns up to limit events with ID greater than after, oldest
// first, for external observers that poll instead of following the stream.
func (e *Engine) AuditLog(ctx context.Context, after uint64, limit int) ([]types.AuditEvent, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var events []types.AuditEvent
	err := e.db.WithContext(ctx).Where("id > ?", after).Order("id ASC").Limit(limit).Find(&events).Error
	return events, err
}

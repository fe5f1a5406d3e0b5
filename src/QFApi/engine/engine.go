package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/commonsfund/quadfund/src/QFApi/types"
)

// Treasury is the external balance/custody collaborator. Debit and
// ReleaseMilestoneFunds receive the engine's open transaction so their
// writes commit or roll back together with the vote or verification that
// triggered them.
type Treasury interface {
	Debit(tx *gorm.DB, participant string, amount uint64) error
	ReleaseMilestoneFunds(tx *gorm.DB, proposalID uint64, milestoneSeq uint32, amount uint64, beneficiary string) error
	UnitScale() uint64
}

// Policy holds the tunable adversarial-response knobs.
type Policy struct {
	// StrikeLimit is the number of rejected proofs that suspends an
	// organization. 1 means zero tolerance.
	StrikeLimit uint32
}

// Publisher forwards committed audit events to external observers.
type Publisher func(ctx context.Context, ev types.AuditEvent) error

// Engine is the voting, reputation and milestone-disbursement core. Every
// mutating operation runs under one mutex and one DB transaction, so the
// ledger never observes a half-applied vote or verification.
type Engine struct {
	db       *gorm.DB
	treasury Treasury
	policy   Policy
	publish  Publisher
	now      func() time.Time

	mu sync.Mutex
}

func New(db *gorm.DB, treasury Treasury, policy Policy) *Engine {
	if policy.StrikeLimit == 0 {
		policy.StrikeLimit = 1
	}
	return &Engine{
		db:       db,
		treasury: treasury,
		policy:   policy,
		now:      time.Now,
	}
}

// SetPublisher attaches an audit event publisher (optional).
func (e *Engine) SetPublisher(p Publisher) { e.publish = p }

// SetClock overrides the engine clock. Test hook.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// MilestoneSpec describes one funding checkpoint at proposal creation.
type MilestoneSpec struct {
	Description string
	Threshold   uint64
}

// CreateProposal registers a proposal with its ordered milestones. The
// owner must be a registry-approved, non-suspended organization and the
// cumulative thresholds must be strictly increasing.
func (e *Engine) CreateProposal(ctx context.Context, owner, title string, milestones []MilestoneSpec) (uint64, error) {
	if len(milestones) == 0 {
		return 0, fmt.Errorf("%w: at least one milestone required", ErrInvalidInput)
	}
	var prev uint64
	for i, m := range milestones {
		if m.Threshold == 0 || (i > 0 && m.Threshold <= prev) {
			return 0, fmt.Errorf("%w: milestone thresholds must be strictly increasing", ErrInvalidInput)
		}
		prev = m.Threshold
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var proposalID uint64
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := loadOrg(tx, owner)
		if err != nil {
			return err
		}
		if !org.Approved {
			return fmt.Errorf("%w: organization %s is not registry approved", ErrPermissionDenied, owner)
		}
		if org.Suspended {
			return fmt.Errorf("%w: organization %s is suspended", ErrPreconditionFailed, owner)
		}

		p := types.Proposal{Owner: owner, Title: title}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		for i, m := range milestones {
			row := types.Milestone{
				ProposalID:  p.ID,
				Seq:         uint32(i),
				Description: m.Description,
				Threshold:   m.Threshold,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		proposalID = p.ID

		return e.appendAudit(tx, &types.AuditEvent{
			Kind:         AuditProposalCreated,
			Actor:        owner,
			ProposalID:   p.ID,
			MilestoneSeq: -1,
			Detail:       title,
		})
	})
	return proposalID, err
}

// RegisterOrg whitelists an organization. The registry itself is admin
// bookkeeping, kept here only so its writes share the audit log.
func (e *Engine) RegisterOrg(ctx context.Context, address, name, admin string) error {
	if address == "" {
		return fmt.Errorf("%w: empty address", ErrInvalidInput)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing types.Org
		err := tx.First(&existing, "address = ?", address).Error
		if err == nil {
			return fmt.Errorf("%w: organization %s already registered", ErrPreconditionFailed, address)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		org := types.Org{Address: address, Name: name, Approved: true}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		return e.appendAudit(tx, &types.AuditEvent{
			Kind:         AuditOrgRegistered,
			Actor:        admin,
			MilestoneSeq: -1,
			Detail:       address,
		})
	})
}

// GetReputation returns the derived reputation view for a participant. A
// participant who has never voted gets the zero view at tier 0.
func (e *Engine) GetReputation(ctx context.Context, participant string) (ReputationView, error) {
	var rec types.Reputation
	err := e.db.WithContext(ctx).First(&rec, "address = ?", participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ReputationView{}, nil
	}
	if err != nil {
		return ReputationView{}, err
	}
	return viewOf(rec, e.treasury.UnitScale()), nil
}

// OrgStatus is the caller-facing standing of an organization.
type OrgStatus struct {
	StrikeCount uint32 `json:"strikeCount"`
	Suspended   bool   `json:"suspended"`
	Approved    bool   `json:"approved"`
}

func (e *Engine) OrganizationStatus(ctx context.Context, org string) (OrgStatus, error) {
	row, err := loadOrg(e.db.WithContext(ctx), org)
	if err != nil {
		return OrgStatus{}, err
	}
	return OrgStatus{StrikeCount: row.StrikeCount, Suspended: row.Suspended, Approved: row.Approved}, nil
}

func loadOrg(tx *gorm.DB, address string) (types.Org, error) {
	var org types.Org
	err := tx.First(&org, "address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return org, fmt.Errorf("%w: organization %s", ErrNotFound, address)
	}
	return org, err
}

func loadProposal(tx *gorm.DB, id uint64) (types.Proposal, error) {
	var p types.Proposal
	err := tx.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, fmt.Errorf("%w: proposal %d", ErrNotFound, id)
	}
	return p, err
}

func loadMilestones(tx *gorm.DB, proposalID uint64) ([]types.Milestone, error) {
	var ms []types.Milestone
	err := tx.Where("proposal_id = ?", proposalID).Order("seq ASC").Find(&ms).Error
	if err == nil && len(ms) == 0 {
		return nil, fmt.Errorf("%w: proposal %d", ErrNotFound, proposalID)
	}
	return ms, err
}

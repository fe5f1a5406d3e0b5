package types

import "time"

// Members are authenticated addresses known to the system. Admin members
// are the privileged reviewers for proof verification and suspensions.
type Member struct {
	Address string `gorm:"primaryKey;size:128"`
	IsAdmin bool   `gorm:"default:false"`
}

// Organizations eligible to submit funding proposals. Approved mirrors the
// external registry whitelist; StrikeCount/Suspended is the standing record
// maintained by the proof review engine.
type Org struct {
	Address       string `gorm:"primaryKey;size:128"`
	Name          string `gorm:"size:128"`
	Approved      bool   `gorm:"default:false"`
	StrikeCount   uint32 `gorm:"default:0"`
	Suspended     bool   `gorm:"default:false"`
	SuspendReason string `gorm:"size:512"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Participant reputation record. Created lazily on a participant's first
// vote and never deleted. Timestamps are unix seconds so day arithmetic
// stays integer-only.
type Reputation struct {
	Address        string `gorm:"primaryKey;size:128"`
	TotalSessions  uint64 `gorm:"not null;default:0"`
	UniqueTargets  uint64 `gorm:"not null;default:0"`
	FirstVoteAt    int64  `gorm:"not null;default:0"`
	LastVoteAt     int64  `gorm:"not null;default:0"`
	TotalUnitsCast uint64 `gorm:"not null;default:0"`
}

// Cumulative units a participant holds on one proposal. Monotonically
// non-decreasing; the row count per participant is their unique-target set.
type VotePosition struct {
	ProposalID uint64 `gorm:"primaryKey"`
	Address    string `gorm:"primaryKey;size:128"`
	UnitsHeld  uint64 `gorm:"not null;default:0"`
	UpdatedAt  time.Time
}

// Funding proposals
type Proposal struct {
	ID                 uint64 `gorm:"primaryKey"`
	Owner              string `gorm:"index;size:128;not null"`
	Title              string `gorm:"size:255"`
	TotalUnitsReceived uint64 `gorm:"not null;default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Ordered funding checkpoints per proposal. Threshold is cumulative and
// strictly increasing with Seq.
type Milestone struct {
	ProposalID  uint64 `gorm:"primaryKey"`
	Seq         uint32 `gorm:"primaryKey;autoIncrement:false"`
	Description string `gorm:"size:512"`
	Threshold   uint64 `gorm:"not null"`
	Verified    bool   `gorm:"default:false"`
}

// Milestone completion evidence submitted by the proposal owner. Evidence
// is an opaque reference (content hash/URI); the engine never fetches it.
type ProofSubmission struct {
	ID           uint64 `gorm:"primaryKey"`
	ProposalID   uint64 `gorm:"index;not null"`
	MilestoneSeq uint32 `gorm:"not null"`
	Evidence     string `gorm:"size:512;not null"`
	Submitter    string `gorm:"size:128;not null"`
	SubmittedAt  time.Time
	Processed    bool   `gorm:"default:false"`
	Approved     bool   `gorm:"default:false"`
	Reason       string `gorm:"size:1024"`
}

// Treasury balances (fungible voting credits)
type Balance struct {
	Address   string `gorm:"primaryKey;size:128"`
	Units     uint64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// Record of funds released for a verified milestone
type Payout struct {
	ID           uint64 `gorm:"primaryKey"`
	ProposalID   uint64 `gorm:"index;not null"`
	MilestoneSeq uint32 `gorm:"not null"`
	Amount       uint64 `gorm:"not null"`
	Beneficiary  string `gorm:"size:128;not null"`
	CreatedAt    time.Time
}

// Append-only audit log. Every mutating engine operation writes one event;
// Hash chains over PrevHash so tampering is detectable.
type AuditEvent struct {
	ID           uint64 `gorm:"primaryKey"`
	Kind         string `gorm:"size:32;index;not null"`
	Actor        string `gorm:"size:128"`
	ProposalID   uint64 `gorm:"index"`
	MilestoneSeq int32  `gorm:"default:-1"`
	Units        uint64 `gorm:"default:0"`
	Cost         uint64 `gorm:"default:0"`
	TotalBefore  uint64 `gorm:"default:0"`
	TotalAfter   uint64 `gorm:"default:0"`
	Detail       string `gorm:"size:1024"`
	PrevHash     string `gorm:"size:64"`
	Hash         string `gorm:"size:64"`
	CreatedAt    time.Time
}

// Settings
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:32;not null"`
	Value string `gorm:"size:256;not null"`
}

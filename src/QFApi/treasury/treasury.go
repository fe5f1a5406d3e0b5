package treasury

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"

	"gorm.io/gorm"

	"github.com/commonsfund/quadfund/src/QFApi/engine"
	"github.com/commonsfund/quadfund/src/QFApi/types"
)

// Ledger is the gorm-backed balance collaborator. Debits and payouts run
// on the transaction handle passed in by the engine so they commit with
// the operation that triggered them. Custody of real funds is out of
// scope; payouts are recorded, not transferred.
type Ledger struct {
	db *gorm.DB

	mu        sync.RWMutex
	unitScale uint64
}

func NewLedger(db *gorm.DB, unitScale uint64) *Ledger {
	if unitScale == 0 {
		unitScale = 1
	}
	return &Ledger{db: db, unitScale: unitScale}
}

// UnitScale is the mint-rate-derived scale factor the reputation tracker
// uses for its whale thresholds.
func (l *Ledger) UnitScale() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.unitScale
}

// SetUnitScale applies a runtime settings update ("unit_scale").
func (l *Ledger) SetUnitScale(value string) {
	scale, err := strconv.ParseUint(value, 10, 64)
	if err != nil || scale == 0 {
		log.Printf("treasury: ignoring bad unit_scale %q", value)
		return
	}
	l.mu.Lock()
	l.unitScale = scale
	l.mu.Unlock()
}

// Debit removes amount units from the participant's balance, failing with
// engine.ErrInsufficientBalance when the balance does not cover it.
func (l *Ledger) Debit(tx *gorm.DB, participant string, amount uint64) error {
	var bal types.Balance
	err := tx.First(&bal, "address = ?", participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && bal.Units < amount) {
		return fmt.Errorf("%w: need %d units", engine.ErrInsufficientBalance, amount)
	}
	if err != nil {
		return err
	}
	bal.Units -= amount
	return tx.Save(&bal).Error
}

// Credit adds units to a participant's balance (admin faucet).
func (l *Ledger) Credit(address string, amount uint64) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var bal types.Balance
		err := tx.First(&bal, "address = ?", address).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			bal = types.Balance{Address: address}
		} else if err != nil {
			return err
		}
		if bal.Units+amount < bal.Units {
			return fmt.Errorf("%w: balance overflow", engine.ErrArithmeticOverflow)
		}
		bal.Units += amount
		return tx.Save(&bal).Error
	})
}

// BalanceOf returns the participant's current balance, zero if unknown.
func (l *Ledger) BalanceOf(address string) (uint64, error) {
	var bal types.Balance
	err := l.db.First(&bal, "address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return bal.Units, err
}

// ReleaseMilestoneFunds records the disbursement for a verified milestone.
func (l *Ledger) ReleaseMilestoneFunds(tx *gorm.DB, proposalID uint64, milestoneSeq uint32, amount uint64, beneficiary string) error {
	payout := types.Payout{
		ProposalID:   proposalID,
		MilestoneSeq: milestoneSeq,
		Amount:       amount,
		Beneficiary:  beneficiary,
	}
	if err := tx.Create(&payout).Error; err != nil {
		return err
	}
	log.Printf("treasury: released %d units for proposal %d milestone %d to %s",
		amount, proposalID, milestoneSeq, beneficiary)
	return nil
}

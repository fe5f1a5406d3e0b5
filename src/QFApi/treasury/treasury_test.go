package treasury_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/commonsfund/quadfund/src/QFApi/data"
	"github.com/commonsfund/quadfund/src/QFApi/engine"
	"github.com/commonsfund/quadfund/src/QFApi/treasury"
	"github.com/commonsfund/quadfund/src/QFApi/types"
)

func newTestLedger(t *testing.T) (*treasury.Ledger, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, data.Migrate(db))
	return treasury.NewLedger(db, 1000), db
}

func TestCreditAndDebit(t *testing.T) {
	ledger, db := newTestLedger(t)

	require.NoError(t, ledger.Credit("alice", 100))
	require.NoError(t, ledger.Credit("alice", 50))

	balance, err := ledger.BalanceOf("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(150), balance)

	require.NoError(t, ledger.Debit(db, "alice", 120))
	balance, err = ledger.BalanceOf("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(30), balance)
}

func TestDebitInsufficient(t *testing.T) {
	ledger, db := newTestLedger(t)

	err := ledger.Debit(db, "nobody", 1)
	assert.ErrorIs(t, err, engine.ErrInsufficientBalance)

	require.NoError(t, ledger.Credit("bob", 10))
	err = ledger.Debit(db, "bob", 11)
	assert.ErrorIs(t, err, engine.ErrInsufficientBalance)

	balance, err := ledger.BalanceOf("bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), balance)
}

func TestReleaseMilestoneFundsRecordsPayout(t *testing.T) {
	ledger, db := newTestLedger(t)

	require.NoError(t, ledger.ReleaseMilestoneFunds(db, 7, 1, 250, "org-goodworks"))

	var payout types.Payout
	require.NoError(t, db.First(&payout, "proposal_id = ?", 7).Error)
	assert.Equal(t, uint32(1), payout.MilestoneSeq)
	assert.Equal(t, uint64(250), payout.Amount)
	assert.Equal(t, "org-goodworks", payout.Beneficiary)
}

func TestUnitScaleUpdates(t *testing.T) {
	ledger, _ := newTestLedger(t)

	assert.Equal(t, uint64(1000), ledger.UnitScale())

	ledger.SetUnitScale("2500")
	assert.Equal(t, uint64(2500), ledger.UnitScale())

	// Garbage and zero are ignored.
	ledger.SetUnitScale("not-a-number")
	ledger.SetUnitScale("0")
	assert.Equal(t, uint64(2500), ledger.UnitScale())
}

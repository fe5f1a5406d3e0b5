package data

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/commonsfund/quadfund/src/QFApi/types"
)

func MustMySQL(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := Migrate(db); err != nil {
		log.Fatalf("mysql migrate: %v", err)
	}
	return db
}

// Migrate creates or updates the schema for all engine tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Member{},
		&types.Org{},
		&types.Reputation{},
		&types.VotePosition{},
		&types.Proposal{},
		&types.Milestone{},
		&types.ProofSubmission{},
		&types.Balance{},
		&types.Payout{},
		&types.AuditEvent{},
		&types.Setting{},
	)
}

package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ksred/tradepulse/internal/journal"
)

// NewDatabase opens (or creates) the sqlite database at the given path and
// migrates the journal schema. Use ":memory:" for throwaway databases.
func NewDatabase(path string) (*gorm.DB, error) {
	if path == "" {
		path = "tradepulse.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&journal.OrderRecord{},
		&journal.FillRecord{},
		&journal.DecisionRecord{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

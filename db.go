package main

import (
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger reports slow queries and real errors. A missing key is an
// ordinary Get miss, not an error.
func gormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func OpenDB(path string) (*gorm.DB, error) {
	return openDB(path, gormLogger(log.New(os.Stdout, "\r\n", log.LstdFlags)))
}

func openDB(path string, l logger.Interface) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{Logger: l})
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&KVEntry{},
	)
}

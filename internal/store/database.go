package store

import (
	"fmt"
	"strings"

	"github.com/boundless-xyz/risc0-solana/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func isPostgres(connectionString string) bool {
	return strings.HasPrefix(connectionString, "postgres://") ||
		strings.HasPrefix(connectionString, "postgresql://") ||
		strings.Contains(connectionString, "host=")
}

// ConnectToDatabase opens postgres for postgres DSNs and sqlite for
// anything else, then migrates every table.
func ConnectToDatabase(connectionString string, log *logger.Logger) (*gorm.DB, error) {
	dialector := sqlite.Open(connectionString)
	if isPostgres(connectionString) {
		dialector = postgres.Open(connectionString)
	}

	log.Info("Establishing connection to database...")
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot establish database connection: %w", err)
	}

	if !isPostgres(connectionString) {
		// sqlite allows a single writer
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info("Running migrations for tables...")
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrating database failed: %w", err)
	}

	log.Info("All tables created (or already exist).")
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&RouterRecord{},
		&EntryRecord{},
		&RetiredSelector{},
		&OutboxEvent{},
		&LogAuditEntry{},
	)
}

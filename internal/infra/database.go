package infra

import (
	"fmt"

	"github.com/TheYates/bernat-medical-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// NewDatabase opens a GORM connection for the configured driver, migrates the
// schema from the models and applies the constraints GORM cannot express.
// The sqlite driver is meant for tests and single-node demos.
func NewDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres, "":
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// SQLite serialises writers; one connection keeps in-memory databases alive
		// and makes every transaction see the same data.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table and then applies schema patches.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that GORM tags cannot express.
// Only Postgres gets them; SQLite relies on the application-level checks.
func applySchemaPatches(db *gorm.DB) error {
	if db.Dialector.Name() != DriverPostgres {
		return nil
	}
	patches := []string{
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_drugs_stock_non_negative') THEN
		    ALTER TABLE drugs ADD CONSTRAINT chk_drugs_stock_non_negative CHECK (stock >= 0);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_drugs_units_per_purchase') THEN
		    ALTER TABLE drugs ADD CONSTRAINT chk_drugs_units_per_purchase CHECK (units_per_purchase > 0);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stock_transactions_status') THEN
		    ALTER TABLE stock_transactions ADD CONSTRAINT chk_stock_transactions_status
		      CHECK (status IN ('pending', 'approved', 'rejected'));
		  END IF;
		END $$`,
		// partial index for the pending queue
		`CREATE INDEX IF NOT EXISTS idx_stock_transactions_pending
		    ON stock_transactions (created_at)
		    WHERE status = 'pending'`,
		`CREATE INDEX IF NOT EXISTS idx_stock_transactions_resolved
		    ON stock_transactions (approved_at DESC)
		    WHERE status <> 'pending'`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

package database

import (
	"context"
	"fmt"
	"log/slog"

	"stackit/internal/config"
	"stackit/internal/middleware"

	"gorm.io/gorm"
)

// SchemaStatus describes what ApplySchema would do for a config.
type SchemaStatus struct {
	Environment        string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
}

// schemaPolicy: SQL migrations are authoritative on Postgres. AutoMigrate is a
// development convenience and never runs in production.
func schemaPolicy(db *gorm.DB, cfg *config.Config) (runSQL bool, runAuto bool) {
	runSQL = db.Dialector.Name() == "postgres"
	runAuto = cfg.DBAutoMigrate && !cfg.IsProduction()
	if !runSQL && !cfg.IsProduction() {
		runAuto = true
	}
	return runSQL, runAuto
}

// AutoMigrate creates or updates every persistent table through GORM.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema runs SQL migrations and, outside production, GORM AutoMigrate.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	runSQL, runAuto := schemaPolicy(db, cfg)

	if runSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}

	if runAuto {
		middleware.Logger.Info("Running GORM AutoMigrate", slog.String("env", cfg.Env))
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return nil
}

// GetSchemaStatus reports applied and pending SQL migrations.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	runSQL, runAuto := schemaPolicy(db, cfg)

	status := &SchemaStatus{
		Environment:        cfg.Env,
		WillRunSQL:         runSQL,
		WillRunAutoMigrate: runAuto,
	}

	store := NewMigrationStore(db)
	applied, err := store.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied

	appliedSet := make(map[int]bool, len(applied))
	for _, version := range applied {
		appliedSet[version] = true
	}
	for _, m := range GetMigrations() {
		if !appliedSet[m.Version] {
			status.PendingMigrations = append(status.PendingMigrations, m)
		}
	}

	return status, nil
}

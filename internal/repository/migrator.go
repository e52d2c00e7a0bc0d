package repository

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"golinks/internal/model"
	"golinks/pkg/logging"
)

// Migration is one versioned schema change. Migrations run in order at
// startup; applied IDs are recorded in schema_migrations so each one runs
// exactly once, instead of the try-ALTER-and-ignore-the-error pattern.
type Migration struct {
	ID   string
	Name string
	Up   func(db *gorm.DB) error
}

// MigrationRecord tracks which migrations have been applied.
type MigrationRecord struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (MigrationRecord) TableName() string {
	return "schema_migrations"
}

type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{
		db:         db,
		migrations: allMigrations(),
	}
}

func allMigrations() []Migration {
	return []Migration{
		{
			ID:   "001_create_links",
			Name: "create links table with unique code and leaderboard index",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(&model.Link{})
			},
		},
		{
			ID:   "002_create_daily_stats",
			Name: "create daily_stats roll-up table",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(&model.DailyStat{})
			},
		},
	}
}

// Run executes all pending migrations, each inside a transaction together
// with its schema_migrations record.
func (m *Migrator) Run() error {
	if err := m.db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var applied []MigrationRecord
	if err := m.db.Find(&applied).Error; err != nil {
		return fmt.Errorf("fetching applied migrations: %w", err)
	}

	appliedSet := make(map[string]bool, len(applied))
	for _, r := range applied {
		appliedSet[r.ID] = true
	}

	for _, migration := range m.migrations {
		if appliedSet[migration.ID] {
			continue
		}

		logging.Logger.Info("Running migration",
			zap.String("id", migration.ID),
			zap.String("name", migration.Name),
		)

		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&MigrationRecord{
				ID:   migration.ID,
				Name: migration.Name,
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %s: %w", migration.ID, err)
		}
	}

	return nil
}

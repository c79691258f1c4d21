package database

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DataflowSolutions/Oncore-sub001/internal/schedule"
)

const migrationBackfillAutoGenerated = "2026-06-12_backfill_auto_generated_flag"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillAutoGenerated, apply: backfillAutoGeneratedFlag},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// Rows written before provenance tracking carried a source tag without the
// auto_generated flag; the sync writer only recognizes flagged rows as its
// own, so the flag is backfilled from the tag.
func backfillAutoGeneratedFlag(db *gorm.DB) error {
	return db.Model(&schedule.Item{}).
		Where("source <> '' AND source_ref <> '' AND auto_generated = ?", false).
		Update("auto_generated", true).Error
}

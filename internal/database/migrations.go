package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Migration struct {
	ID        uint   `gorm:"primaryKey"`
	Version   string `gorm:"uniqueIndex;size:255"`
	AppliedAt time.Time
}

// RunMigrations applies every *.sql file in dir that has not been recorded yet,
// in file name order.
func RunMigrations(db *gorm.DB, dir string, log *zap.Logger) (int, error) {
	if err := db.AutoMigrate(&Migration{}); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return 0, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	sort.Strings(files)

	applied := 0
	for _, file := range files {
		version := filepath.Base(file)

		var count int64
		if err := db.Model(&Migration{}).Where("version = ?", version).Count(&count).Error; err != nil {
			return applied, err
		}
		if count > 0 {
			log.Debug("skipping migration", zap.String("version", version))
			continue
		}

		sqlContent, err := os.ReadFile(file)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration file %s: %w", version, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(sqlContent)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", version, err)
			}
			return tx.Create(&Migration{Version: version, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return applied, err
		}

		applied++
		log.Info("applied migration", zap.String("version", version))
	}

	return applied, nil
}

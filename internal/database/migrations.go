package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"compliance-service/internal/models"
)

// MigrationRecord tracks which migrations have been applied
type MigrationRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Version   string `gorm:"uniqueIndex;size:255"`
	AppliedAt int64  `gorm:"autoCreateTime"`
}

// RunMigrations runs all pending database migrations
func RunMigrations(db *gorm.DB) error {
	log.Println("Starting database migrations...")

	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}

	log.Println("  → Running schema migrations...")
	modelsToMigrate := []struct {
		name  string
		model interface{}
	}{
		{"BusinessProfile", &models.BusinessProfile{}},
		{"ComplianceObligation", &models.ComplianceObligation{}},
	}
	for _, m := range modelsToMigrate {
		log.Printf("    → Migrating %s...", m.name)
		if err := db.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("failed to auto-migrate %s: %w", m.name, err)
		}
		log.Printf("    ✓ %s migrated", m.name)
	}
	log.Println("  ✓ Schema migrations complete")

	log.Println("✓ All database migrations complete")
	return nil
}

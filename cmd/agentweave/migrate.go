package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/agentweave/config"
	"github.com/BaSui01/agentweave/store"
)

// migrate creates or updates the schema for all persisted entities.
func migrate(cfg *config.Config, logger *zap.Logger) error {
	db, err := openDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeDatabase(db, logger)

	repo := store.NewRepository(db, logger)
	if err := repo.AutoMigrate(); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	logger.Info("schema migrated",
		zap.String("driver", cfg.Database.Driver),
	)
	return nil
}

func closeDatabase(db *gorm.DB, logger *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("failed to close database", zap.Error(err))
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/repositories"
	"github.com/anonto42/effisocial/backend/pkg/config"
	"github.com/anonto42/effisocial/backend/pkg/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the PostgreSQL schema and create MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := config.InitDB(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize databases: %w", err)
		}
		defer db.CloseDB()
		return migrate(cmd.Context(), db)
	},
}

func migrate(ctx context.Context, db *config.DB) error {
	if err := db.Postgres.WithContext(ctx).AutoMigrate(models.RelationalModels()...); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	log.Info("PostgreSQL auto-migrations completed")

	if err := repositories.NewMongoPostRepository(db.MongoDB).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create post indexes: %w", err)
	}
	if err := repositories.NewMongoMessageRepository(db.MongoDB).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}
	log.Info("MongoDB indexes ensured")
	return nil
}

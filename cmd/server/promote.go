package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anonto42/effisocial/backend/internal/repositories"
	"github.com/anonto42/effisocial/backend/internal/services"
	"github.com/anonto42/effisocial/backend/pkg/config"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Grant the admin role to a user",
	Long: `Grant the admin role to the account with the given email. The user must
log in again for the role to appear in their token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			return fmt.Errorf("--email is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := config.InitDB(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize databases: %w", err)
		}
		defer db.CloseDB()

		users := services.NewUserService(
			repositories.NewPostgresUserRepository(db.Postgres),
			repositories.NewPostgresGroupRepository(db.Postgres),
			nil,
		)
		if err := users.Promote(cmd.Context(), email); err != nil {
			return err
		}
		fmt.Printf("✓ %s is now an admin\n", email)
		return nil
	},
}

func init() {
	promoteCmd.Flags().String("email", "", "email of the account to promote")
}

package cmd

import (
	"bitwise74/taskcamp/db"
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/internal/repository"
	"bitwise74/taskcamp/pkg/security"
	"bitwise74/taskcamp/pkg/validators"
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Creates an active superuser",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		email = validators.NormalizeEmail(email)
		if err := validators.EmailValidator(email); err != nil {
			return err
		}

		if err := validators.PasswordValidator(password); err != nil {
			return err
		}

		cfg, err := setup(cmd)
		if err != nil {
			return err
		}

		conn, err := db.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database, %w", err)
		}

		return createSuperuser(cmd.Context(), repository.NewUsers(conn), security.New(), email, password)
	},
}

func init() {
	createSuperuserCmd.Flags().String("email", "", "superuser email address")
	createSuperuserCmd.Flags().String("password", "", "superuser password")
	createSuperuserCmd.MarkFlagRequired("email")
	createSuperuserCmd.MarkFlagRequired("password")
}

func createSuperuser(ctx context.Context, users *repository.Users, argon *security.ArgonHash, email, password string) error {
	hash, err := argon.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}

	if err := users.Create(ctx, user); err != nil {
		return err
	}

	zap.L().Info("Superuser created", zap.String("email", email), zap.Uint("userID", user.ID))
	return nil
}

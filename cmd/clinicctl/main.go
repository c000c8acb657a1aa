// Command clinicctl runs one-off maintenance tasks against the pharmacy database.
package main

import (
	"fmt"
	"os"

	"github.com/TheYates/bernat-medical-sub000/internal/config"
	"github.com/TheYates/bernat-medical-sub000/internal/infra"
	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinicctl",
		Short: "Clinic pharmacy maintenance commands",
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedAdminCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openDB() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and constraints",
		RunE: func(cmd *cobra.Command, args []string) error {
			// NewDatabase migrates on open.
			if _, err := openDB(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func seedAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create or reset an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			fullName, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			hash, err := service.HashPassword(password)
			if err != nil {
				return err
			}

			user := &model.User{
				Username:     username,
				FullName:     fullName,
				PasswordHash: hash,
				Role:         model.RoleAdmin,
				Active:       true,
			}
			if email != "" {
				user.Email = &email
			}
			err = db.WithContext(cmd.Context()).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "username"}},
				DoUpdates: clause.AssignmentColumns([]string{"full_name", "email", "password_hash", "role", "active"}),
			}).Create(user).Error
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %q created or updated\n", username)
			return nil
		},
	}
	cmd.Flags().String("username", "admin", "Login name")
	cmd.Flags().String("password", "", "Password (min 8 characters)")
	cmd.Flags().String("name", "Pharmacy Admin", "Display name")
	cmd.Flags().String("email", "", "Address for low-stock and approval alerts")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash used for stored passwords",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := service.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

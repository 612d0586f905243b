package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yigit/deptportal/internal/bootstrap"
	"github.com/yigit/deptportal/internal/seed"
)

var adminFlags seed.AdminAccount

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account if it does not exist",
	Long: `create-admin inserts an admin account into the configured store.
Flags override the admin section of the config file. An existing account
with the same email is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
		if err != nil {
			return err
		}

		account := seed.AdminAccount{Name: cfg.Admin.Name, Email: cfg.Admin.Email, Password: cfg.Admin.Password}
		if adminFlags.Name != "" {
			account.Name = adminFlags.Name
		}
		if adminFlags.Email != "" {
			account.Email = adminFlags.Email
		}
		if adminFlags.Password != "" {
			account.Password = adminFlags.Password
		}
		if account.Email == "" || account.Password == "" {
			return fmt.Errorf("admin email and password are required")
		}

		repos, database, err := bootstrap.SetupRepositories(cfg, lgr)
		if err != nil {
			return err
		}
		if database != nil {
			defer database.Close()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		created, err := seed.EnsureAdmin(ctx, repos.Users, account, lgr)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", account.Email)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists\n", account.Email)
		}
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminFlags.Name, "name", "", "display name")
	createAdminCmd.Flags().StringVar(&adminFlags.Email, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminFlags.Password, "password", "", "initial password")
}

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yigit/deptportal/internal/app/migrations"
	"github.com/yigit/deptportal/internal/bootstrap"
	"github.com/yigit/deptportal/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newMigrator()
		if err != nil {
			return err
		}
		return m.Up()
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations (default 1 step)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = n
		}

		m, err := newMigrator()
		if err != nil {
			return err
		}
		return m.Down(steps)
	},
}

func newMigrator() (*migrations.Migrator, error) {
	cfg, _, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, fmt.Errorf("migrations need the postgres driver, configured driver is %q", cfg.Database.Driver)
	}
	return migrations.NewMigrator(cfg.GetPostgresConnectionString()), nil
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

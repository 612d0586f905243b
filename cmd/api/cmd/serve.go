package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yigit/deptportal/internal/bootstrap"
	"github.com/yigit/deptportal/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
		if err != nil {
			return err
		}

		srv, err := server.NewServer(context.Background(), cfg, lgr)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to initialize server")
			return err
		}

		if err := srv.Run(); err != nil {
			lgr.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
			return err
		}
		lgr.Info().Msg("Application finished gracefully.")
		return nil
	},
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string

	// rootCmd runs the API server when called without a subcommand
	rootCmd = &cobra.Command{
		Use:   "portal",
		Short: "Department portal API server",
		Long: `portal serves the department portal API: typed resources (events, hackathons,
projects, certifications, PYQs, quizzes, flashcards), event registrations,
notifications with live websocket delivery, uploads and AI study helpers.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}
)

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "config file path (environment variables override it)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)
}

package main

import (
	"fmt"

	"github.com/jonathan/interview-planner/internal/config"
	"github.com/jonathan/interview-planner/internal/logger"
	"github.com/jonathan/interview-planner/internal/server"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	port       int
	configPath string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  `Start an HTTP server that exposes the interview endpoints. Sessions live in memory or Redis; reports are persisted when DATABASE_URL is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadServeConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runServe(cmd, cfg)
		},
	}
	cmd.Flags().IntVar(&opts.port, "port", 8080, "Port to listen on (overrides config and PORT)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a YAML or JSON config file")
	return cmd
}

// loadServeConfig layers the --port flag over the file and environment config.
func loadServeConfig(cmd *cobra.Command, opts *serveOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = opts.port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	srv, err := server.New(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(cmd.Context())
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solatis/subordinate/internal/core/api"
	"github.com/solatis/subordinate/internal/core/auth"
	"github.com/solatis/subordinate/internal/core/config"
	"github.com/solatis/subordinate/internal/core/db"
	"github.com/solatis/subordinate/internal/core/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC rule API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	serveCmd.Flags().Int("port", 50061, "gRPC server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	database, queries, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := requireMigrated(database); err != nil {
		return err
	}

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set SB_HMAC_SECRET environment variable)")
	}

	service, err := api.NewService(db.NewStore(queries), log)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	grpcServer, err := server.NewGRPCServer(cfg.Server, service, auth.NewAuthenticator(secrets, queries), log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", Version).Str("address", cfg.Server.Address()).Int("hmac_secrets", len(secrets)).Msg("starting rule API")
	return grpcServer.Start(ctx)
}

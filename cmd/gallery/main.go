package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/GoArmGo/ArtGallery/internal/app"
	"github.com/GoArmGo/ArtGallery/internal/di"
	"github.com/spf13/cobra"
)

var version = "dev"

// bootstrap-логгер (используется только на этапе инициализации т.к еще не создан основной логгер)
var bootstrapLogger = slog.New(
	slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
)

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "gallery",
	Short:   "Art gallery API: owners, tokens and art pieces",
	Long: `gallery serves a small art gallery API. Owners register and log in
with an opaque token, then manage their own art pieces and images.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), app.ModeServer)
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume image cleanup messages and delete unused images",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), app.ModeWorker)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, workerCmd)
}

func run(ctx context.Context, mode string) error {
	bootstrapLogger.Info("starting application", "mode", mode, "version", version)

	application, err := di.BuildApp(ctx)
	if err != nil {
		bootstrapLogger.Error("failed to build app", "error", err)
		return err
	}

	log := application.LoggerIns()
	if err := application.Run(ctx, mode); err != nil {
		log.Error("application run failed", "error", err)
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vinr.eu/secretsdemo/internal/aws"
	"vinr.eu/secretsdemo/internal/config"
	"vinr.eu/secretsdemo/internal/demo"
	"vinr.eu/secretsdemo/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "secretsdemo",
		Short:        "Print the contents of one AWS Secrets Manager secret",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Failures below are already reported on stderr.
			cmd.SilenceErrors = true
			ctx := logger.WithApp(cmd.Context(), "secretsdemo")

			cfg, err := config.Load()
			if err != nil {
				cmd.PrintErrln("Error loading config:", err)
				return err
			}
			logger.InitLogger(cmd.ErrOrStderr(), logger.ParseLevel(cfg.LogLevel))
			logger.Debug(ctx, "config loaded", "config", cfg.String())

			awsCfg, err := aws.LoadConfig(ctx, cfg)
			if err != nil {
				logger.Error(ctx, "failed to load aws config", "error", err)
				return err
			}

			client := aws.NewSecretsManagerClient(awsCfg)
			return demo.Run(ctx, client, cfg.SecretID, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

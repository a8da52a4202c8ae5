package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"vinr.eu/secretsdemo/internal/config"
	"vinr.eu/secretsdemo/internal/logger"
	"vinr.eu/secretsdemo/internal/mockstore"
)

type options struct {
	addr     string
	seedFile string
	region   string
	debug    bool
	denyList string

	// listening receives the bound address once the listener is up.
	listening func(addr string)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return newCommand(&options{})
}

func newCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mockstore",
		Short: "Serve GetSecretValue locally for MODE=local",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "0.0.0.0:4566", "listen address")
	cmd.Flags().StringVar(&opts.seedFile, "secrets", "", "YAML seed file")
	cmd.Flags().StringVar(&opts.region, "region", config.DefaultRegion, "region used in returned ARNs")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&opts.denyList, "deny", os.Getenv("MOCKSTORE_DENY"), "comma-separated secret ids answered with AccessDeniedException")
	return cmd
}

// run serves until ctx is cancelled, then shuts the server down.
func run(ctx context.Context, opts *options, logOut io.Writer) error {
	level := logger.ParseLevel("info")
	if opts.debug {
		level = logger.ParseLevel("debug")
	}
	logger.InitLogger(logOut, level)
	ctx = logger.WithApp(ctx, "mockstore")
	gin.SetMode(gin.ReleaseMode)

	var seed mockstore.Seed
	if opts.seedFile != "" {
		var err error
		if seed, err = mockstore.LoadSeedFile(opts.seedFile); err != nil {
			logger.Error(ctx, "failed to load seed file", "error", err)
			return err
		}
	}
	if opts.denyList != "" {
		seed.Deny = append(seed.Deny, strings.Split(opts.denyList, ",")...)
	}

	store, err := mockstore.NewStore(seed,
		mockstore.WithRegion(opts.region),
		mockstore.WithEnv(os.LookupEnv),
	)
	if err != nil {
		logger.Error(ctx, "failed to build store", "error", err)
		return err
	}

	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		logger.Error(ctx, "failed to listen", "addr", opts.addr, "error", err)
		return err
	}
	srv := &http.Server{
		Handler:           mockstore.NewServer(store).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	addr := ln.Addr().String()
	logger.Info(ctx, "mock secrets manager listening", "addr", addr, "secrets", len(seed.Secrets)+len(seed.Binary))
	if opts.listening != nil {
		opts.listening(addr)
	}

	select {
	case err, ok := <-serveErr:
		if ok {
			logger.Error(ctx, "failed to serve", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "failed to shutdown server", "error", err)
		return err
	}
	logger.Info(ctx, "server exiting")
	return nil
}

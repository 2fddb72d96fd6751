package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"classd/internal/config"
	"classd/internal/dispatch"
	"classd/internal/httpapi"
	"classd/internal/registry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "classd:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	addr        string
	maxBody     int64
	corsOrigins []string
	corsMethods []string
	corsHeaders []string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "classd",
		Short:         "Classification gateway combining local and remote research-pub models",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}
	f := root.Flags()
	f.StringVar(&opts.configPath, "config", "", "Optional config file (.yaml/.json/.toml); env vars override it")
	f.StringVar(&opts.addr, "addr", "", "HTTP listen address, e.g. :8080 (defaults "+config.EnvAddr+" or :8080)")
	f.Int64Var(&opts.maxBody, "max-body-bytes", 0, "Maximum accepted upload size in bytes (0 = default)")
	f.StringSliceVar(&opts.corsOrigins, "cors-origins", nil, "Allowed CORS origins; CORS stays off when empty")
	f.StringSliceVar(&opts.corsMethods, "cors-methods", []string{"GET", "POST"}, "Allowed CORS methods")
	f.StringSliceVar(&opts.corsHeaders, "cors-headers", []string{"Content-Type"}, "Allowed CORS headers")
	return root
}

func run(cmd *cobra.Command, opts *options) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.FromEnv(opts.configPath)
	if err != nil {
		// startup configuration errors are fatal with a diagnostic
		logger.Error().Err(err).Msg("configuration error")
		return err
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		logger = logger.Level(lvl)
	}
	if cmd.Flags().Changed("addr") && opts.addr != "" {
		cfg.Addr = opts.addr
	}

	reg := registry.FromConfig(cfg)
	disp, err := dispatch.New(cfg, reg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("model load failed")
		return err
	}

	httpapi.SetLogger(logger)
	if opts.maxBody > 0 {
		httpapi.SetMaxBodyBytes(opts.maxBody)
	} else if cfg.MaxBodyBytes > 0 {
		httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	}
	httpapi.SetCORSOptions(len(opts.corsOrigins) > 0, opts.corsOrigins, opts.corsMethods, opts.corsHeaders)

	baseCtx, baseCancel := context.WithCancel(context.Background())
	defer baseCancel()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(disp)}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("classd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}
	baseCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

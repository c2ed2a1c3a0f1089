// Command authshell-devserver is a local authentication backend serving
// /api/login, /api/verify-token and /api/logout for development and tests.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gundaabinav333/authshell/internal/devserver"
	"github.com/gundaabinav333/authshell/internal/infra/buildinfo"
	"github.com/gundaabinav333/authshell/internal/infra/shutdown"
	"github.com/gundaabinav333/authshell/internal/infra/tlsroots"
	"github.com/gundaabinav333/authshell/internal/server/httpserver"
	"github.com/gundaabinav333/authshell/internal/telemetry/logger"
	"github.com/gundaabinav333/authshell/internal/telemetry/metric"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app := &cli.App{
		Name:    "authshell-devserver",
		Usage:   "Development authentication server",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{devserver.EnvPrefix + "CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides the config file)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := devserver.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addr := c.String("addr"); addr != "" {
		cfg.Addr = addr
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	srv, err := devserver.New(cfg, devserver.WithLogger(log), devserver.WithRegistry(metric.Global()))
	if err != nil {
		return err
	}

	var opts []httpserver.Option
	scheme := "http"
	if cfg.TLSCert != "" {
		tlsCfg, err := tlsroots.ServerConfig(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return err
		}
		opts = append(opts, httpserver.WithTLS(tlsCfg))
		scheme = "https"
	}

	httpServer := httpserver.New(cfg.Addr, srv.Handler(), opts...)
	addr, err := httpServer.Listen()
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	log.Info("devserver listening",
		"url", scheme+"://"+addr.String(),
		"version", buildinfo.Get().Version,
		"users", len(cfg.Users))

	h := shutdown.NewHandler(shutdownTimeout)
	serveCtx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(serveCtx)
		h.Trigger()
	}()
	h.OnShutdown(func(context.Context) error {
		log.Info("shutting down HTTP server")
		stop()
		return <-errCh
	})

	if err := h.Wait(c.Context); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	log.Info("devserver stopped")
	return nil
}

package command

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gundaabinav333/authshell/internal/cli/config"
	"github.com/gundaabinav333/authshell/internal/infra/confloader"
	"github.com/gundaabinav333/authshell/internal/infra/shutdown"
	"github.com/gundaabinav333/authshell/internal/server/httpserver"
	"github.com/gundaabinav333/authshell/internal/session"
	"github.com/gundaabinav333/authshell/internal/telemetry/logger"
	"github.com/gundaabinav333/authshell/internal/telemetry/metric"
	"github.com/gundaabinav333/authshell/internal/web"
)

// ServeCommand returns the serve command.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web shell on a local address",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default from serve.addr)",
			},
			&cli.StringSliceFlag{
				Name:  "require-role",
				Usage: "Only admit users holding one of these roles to the dashboard",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	rt, err := setup(c, session.WithNavigator(session.RequestNavigator))
	if err != nil {
		return exitError(err)
	}

	addr := c.String("addr")
	if addr == "" {
		addr = rt.cfg.Serve.Addr
	}
	roles := c.StringSlice("require-role")
	if len(roles) == 0 {
		roles = rt.cfg.Serve.RequireRoles
	}

	rt.metrics.Registerer().MustRegister(metric.NewSessionCollector(func() string {
		return rt.ctrl.Status().String()
	}, session.StatusNames()...))

	shell, err := web.New(rt.ctrl, web.Config{
		LoginPath:     rt.cfg.Routes.Login,
		HomePath:      rt.cfg.Routes.Protected,
		ForbiddenPath: rt.cfg.Routes.Forbidden,
		RequireRoles:  roles,
	}, web.WithLogger(rt.log), web.WithRegistry(rt.metrics))
	if err != nil {
		return err
	}

	srv := httpserver.New(addr, shell.Handler(), httpserver.WithShutdownTimeout(rt.cfg.Serve.ShutdownTimeout))
	bound, err := srv.Listen()
	if err != nil {
		return exitError(fmt.Errorf("listen on %s: %w", addr, err))
	}
	fmt.Fprintf(c.App.ErrWriter, "Serving on http://%s%s\n", bound, rt.cfg.Routes.Login)

	// The guard answers "loading" until the restored session is verified.
	go rt.ctrl.Initialize(c.Context)

	h := shutdown.NewHandler(rt.cfg.Serve.ShutdownTimeout)

	serveCtx, stopServe := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(serveCtx)
		h.Trigger()
	}()
	h.OnShutdown(func(context.Context) error {
		stopServe()
		return <-errCh
	})

	if w := watchConfig(c, rt); w != nil {
		h.OnShutdown(func(context.Context) error { return w.Stop() })
	}

	err = h.Wait(c.Context)
	rt.log.Info("web shell stopped")
	return err
}

// watchConfig reloads log.level whenever the config file changes. It
// returns nil when there is no file to watch.
func watchConfig(c *cli.Context, rt *runtime) *confloader.Watcher {
	path := ParseGlobalFlags(c).Config
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	w, err := confloader.NewWatcher(path, confloader.WithWatcherLogger(logger.Slog(rt.log)))
	if err != nil {
		rt.log.Warn("config watch disabled", "path", path, "error", err)
		return nil
	}
	w.OnChange(func(string) {
		cfg, err := loadConfig(c)
		if err != nil {
			rt.log.Warn("config reload failed", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			rt.log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w
}

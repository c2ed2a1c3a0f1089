package command

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/gundaabinav333/authshell/internal/cli/config"
	"github.com/gundaabinav333/authshell/internal/cli/output"
	"github.com/gundaabinav333/authshell/internal/core/domain"
	"github.com/gundaabinav333/authshell/internal/infra/buildinfo"
	"github.com/gundaabinav333/authshell/internal/session"
	"github.com/gundaabinav333/authshell/internal/session/authapi"
	"github.com/gundaabinav333/authshell/internal/session/store"
	"github.com/gundaabinav333/authshell/internal/telemetry/logger"
	"github.com/gundaabinav333/authshell/internal/telemetry/metric"
)

const metaRuntime = "runtime"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 "authshell",
		Usage:                "Log in to an authentication server and keep the session across runs",
		Version:              buildinfo.String(),
		HideVersion:          true,
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Metadata:             map[string]any{},
		Commands: []*cli.Command{
			LoginCommand(),
			LogoutCommand(),
			StatusCommand(),
			WhoamiCommand(),
			ServeCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		After: closeRuntime,
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.authshell/config.yaml)",
			EnvVars: []string{"AUTHSHELL_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Authentication server base URL",
			EnvVars: []string{"AUTHSHELL_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:  "ephemeral",
			Usage: "Keep the session in memory only",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// GlobalFlags are the flags shared by every command.
type GlobalFlags struct {
	Config    string
	Server    string
	Output    string
	Ephemeral bool
	Verbose   bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:    c.String("config"),
		Server:    c.String("server"),
		Output:    c.String("output"),
		Ephemeral: c.Bool("ephemeral"),
		Verbose:   c.Bool("verbose"),
	}
}

// loadConfig reads the configuration with the global flags applied on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	flags := ParseGlobalFlags(c)

	overrides := map[string]any{}
	if flags.Server != "" {
		overrides["api.base_url"] = flags.Server
	}
	if flags.Output != "" {
		overrides["output"] = flags.Output
	}
	if flags.Verbose {
		overrides["log.level"] = "debug"
	}
	return config.Load(flags.Config, overrides)
}

// runtime is the per-invocation object graph.
type runtime struct {
	cfg     *config.Config
	format  output.Format
	log     logger.Logger
	metrics *metric.Registry
	store   store.Store
	client  *authapi.Client
	ctrl    *session.Controller
}

// setup builds the runtime once per invocation. Extra options are applied
// to the controller.
func setup(c *cli.Context, opts ...session.Option) (*runtime, error) {
	if rt, ok := c.App.Metadata[metaRuntime].(*runtime); ok {
		return rt, nil
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return nil, err
	}

	reg := metric.NewRegistry()

	st, err := openStore(cfg, c.Bool("ephemeral"), reg, log)
	if err != nil {
		return nil, err
	}

	client, err := authapi.New(authapi.Config{
		BaseURL:    cfg.API.BaseURL,
		LoginPath:  cfg.API.LoginPath,
		VerifyPath: cfg.API.VerifyPath,
		LogoutPath: cfg.API.LogoutPath,
		Timeout:    cfg.API.Timeout,
		CAFile:     cfg.API.CAFile,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	ctrlOpts := []session.Option{
		session.WithLogger(log),
		session.WithMetrics(reg),
		session.WithRoutes(cfg.Routes.Login, cfg.Routes.Protected),
	}
	rt := &runtime{
		cfg:     cfg,
		format:  format,
		log:     log,
		metrics: reg,
		store:   st,
		client:  client,
		ctrl:    session.New(st, client, append(ctrlOpts, opts...)...),
	}
	c.App.Metadata[metaRuntime] = rt
	return rt, nil
}

func openStore(cfg *config.Config, ephemeral bool, reg *metric.Registry, log logger.Logger) (store.Store, error) {
	if ephemeral {
		return store.NewMemoryStore(), nil
	}

	bc := store.DefaultBadgerConfig(cfg.Store.Dir)
	bc.GCInterval = cfg.Store.GCInterval
	bc.Registerer = reg.Registerer()
	bc.Logger = logger.Slog(log)

	if cfg.Store.Encrypt {
		key, err := store.LoadOrCreateKey(cfg.Store.KeyFile)
		if err != nil {
			return nil, domain.ErrStoreUnavailable.WithDetails("session key").WithCause(err)
		}
		sealer, err := store.NewXChaCha20(key)
		if err != nil {
			return nil, domain.ErrStoreUnavailable.WithDetails("session key").WithCause(err)
		}
		bc.Sealer = sealer
	}

	return store.OpenBadger(bc)
}

func closeRuntime(c *cli.Context) error {
	rt, ok := c.App.Metadata[metaRuntime].(*runtime)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, metaRuntime)
	return rt.store.Close()
}

// print writes data to the app's stdout in the configured format.
func (rt *runtime) print(c *cli.Context, data any) error {
	return output.Print(c.App.Writer, rt.format, data)
}

// exitError turns err into a cli exit error carrying its user message.
func exitError(err error) error {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return err
	}
	return cli.Exit(domain.UserMessage(err), 1)
}

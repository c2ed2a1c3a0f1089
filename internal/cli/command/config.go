package command

import (
	"fmt"
	"net/url"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gundaabinav333/authshell/internal/cli/config"
	"github.com/gundaabinav333/authshell/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect the configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return exitError(err)
	}
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return exitError(err)
	}

	masked := *cfg
	masked.API.BaseURL = redactURL(cfg.API.BaseURL)
	return output.Print(c.App.Writer, format, &masked)
}

func configPath(c *cli.Context) error {
	path := ParseGlobalFlags(c).Config
	if path == "" {
		path = config.DefaultConfigPath()
	}

	fmt.Fprintln(c.App.Writer, path)
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(c.App.ErrWriter, "(file does not exist, defaults apply)")
	}
	return nil
}

// redactURL hides a password embedded in raw.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

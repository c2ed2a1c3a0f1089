package command

import (
	"github.com/urfave/cli/v2"

	"github.com/gundaabinav333/authshell/internal/cli/output"
	"github.com/gundaabinav333/authshell/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(c *cli.Context) error {
			format, err := output.ParseFormat(c.String("output"))
			if err != nil {
				return exitError(err)
			}

			info := buildinfo.Get()
			if format == output.FormatTable {
				return output.Print(c.App.Writer, format, map[string]string{
					"version":    info.Version,
					"commit":     info.Commit,
					"build_time": info.BuildTime,
					"go_version": info.GoVersion,
				})
			}
			return output.Print(c.App.Writer, format, info)
		},
	}
}

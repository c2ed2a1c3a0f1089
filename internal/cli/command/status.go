package command

import (
	"github.com/urfave/cli/v2"
)

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Restore the saved session and show its state",
		Action: runStatus,
	}
}

func runStatus(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return exitError(err)
	}

	rt.ctrl.Initialize(c.Context)
	s := rt.ctrl.Snapshot()
	return rt.print(c, statusView{
		Status: s.Status.String(),
		Server: rt.client.BaseURL(),
		User:   s.Credential,
		Error:  s.Error,
	})
}

// WhoamiCommand returns the whoami command.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Print the logged-in user",
		Action: runWhoami,
	}
}

func runWhoami(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return exitError(err)
	}

	rt.ctrl.Initialize(c.Context)
	user := rt.ctrl.CurrentUser()
	if user == nil {
		return cli.Exit("not logged in", 1)
	}
	return rt.print(c, userView{user})
}

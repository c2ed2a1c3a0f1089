package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/gundaabinav333/authshell/internal/cli/output"
	"github.com/gundaabinav333/authshell/internal/core/domain"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and persist the session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "email",
				Aliases: []string{"e"},
				Usage:   "Account email (prompted when omitted)",
				EnvVars: []string{"AUTHSHELL_EMAIL"},
			},
			&cli.BoolFlag{
				Name:  "password-stdin",
				Usage: "Read the password from stdin",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Log in again even when a session is active",
			},
		},
		Action: runLogin,
	}
}

func runLogin(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return exitError(err)
	}

	rt.ctrl.Initialize(c.Context)
	if rt.ctrl.IsAuthenticated() && !c.Bool("force") {
		user := rt.ctrl.CurrentUser()
		fmt.Fprintf(c.App.ErrWriter, "Already logged in as %s <%s>\n", user.Name, user.Email)
		return rt.print(c, userView{user})
	}

	req, err := readLoginRequest(c)
	if err != nil {
		return exitError(err)
	}

	spinner := output.NewSpinner(c.App.ErrWriter, "Logging in to "+rt.client.BaseURL())
	spinner.Start()
	if err := rt.ctrl.Login(c.Context, req); err != nil {
		spinner.Fail(rt.ctrl.Snapshot().Error)
		return cli.Exit("", 1)
	}

	user := rt.ctrl.CurrentUser()
	spinner.Success(fmt.Sprintf("Logged in as %s <%s>", user.Name, user.Email))
	return rt.print(c, userView{user})
}

func readLoginRequest(c *cli.Context) (domain.LoginRequest, error) {
	p := newPrompter(c.App.Reader, c.App.ErrWriter)

	req := domain.LoginRequest{Email: c.String("email")}
	var err error
	if c.Bool("password-stdin") {
		if req.Email == "" {
			return req, domain.ErrMissingArgument.WithDetails("--email is required with --password-stdin")
		}
		if req.Password, err = p.all(); err != nil {
			return req, err
		}
		return req, req.Validate()
	}

	if req.Email == "" {
		if req.Email, err = p.line("Email: "); err != nil {
			return req, err
		}
	}
	if req.Password, err = p.secret("Password: "); err != nil {
		return req, err
	}
	return req, req.Validate()
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "End the session and forget it locally",
		Action: runLogout,
	}
}

func runLogout(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return exitError(err)
	}

	rt.ctrl.Initialize(c.Context)
	wasLoggedIn := rt.ctrl.IsAuthenticated()
	rt.ctrl.Logout(c.Context)

	if wasLoggedIn {
		fmt.Fprintln(c.App.ErrWriter, "Logged out")
	} else {
		fmt.Fprintln(c.App.ErrWriter, "Not logged in")
	}
	return nil
}

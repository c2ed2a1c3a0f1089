// Command authshell logs in to an authentication server, keeps the session
// across runs, and can serve a small web shell over it.
package main

import (
	"fmt"
	"os"

	"github.com/gundaabinav333/authshell/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

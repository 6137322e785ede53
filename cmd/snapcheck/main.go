// Command snapcheck compares player outputs against golden artifacts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/snapcheck/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		// Commands print their own errors; flag and argument errors are
		// reported here.
		if _, ok := err.(*cli.ExitError); !ok {
			fmt.Fprintln(os.Stderr, "Error:", err)
			stop()
			os.Exit(cli.ExitCommandError)
		}
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}

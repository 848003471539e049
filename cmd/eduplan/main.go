package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eduplan/seatplan/internal/cli"
	"github.com/eduplan/seatplan/pkg/errors"
)

// Exit codes. Rejected input is told apart from failures so scripts can
// skip bad plans and retry the rest.
const (
	exitFailure     = 1
	exitInvalid     = 2
	exitInterrupted = 130
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		code := exitCode(err)
		if code != exitInterrupted {
			report(os.Stderr, err)
		}
		cancel()
		os.Exit(code)
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	next := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if next != nil {
			return next(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

func exitCode(err error) int {
	switch {
	case stderrors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.IsInvalid(err):
		return exitInvalid
	default:
		return exitFailure
	}
}

// report prints coded errors as "message [CODE]".
func report(w io.Writer, err error) {
	if code := errors.GetCode(err); code != "" {
		fmt.Fprintf(w, "Error: %s [%s]\n", errors.UserMessage(err), code)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"

	"github.com/jeffijoe/typesync/pkg/errors"
)

// Execute runs the typesync CLI with args (without the program name).
// Logs go to stderr at info level, or debug level with --verbose.
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//	if err := cli.Execute(ctx, os.Args[1:]); err != nil {
//	    cli.ReportError(os.Stderr, err)
//	    os.Exit(1)
//	}
func Execute(ctx context.Context, args []string) error {
	root := New(os.Stderr, LogInfo).RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// ReportError prints err to w without its error code.
func ReportError(w io.Writer, err error) {
	printError(w, "%s", errors.UserMessage(err))
}

// ExitCode maps an error returned by Execute to a process exit code.
// Interrupted runs exit with 130 like other shell tools.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jeffijoe/typesync/internal/cli"
)

func main() {
	// TYPESYNC_* settings may come from a .env file in the working directory.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := cli.Execute(ctx, os.Args[1:])
	code := cli.ExitCode(err)
	if code == 1 {
		cli.ReportError(os.Stderr, err)
	}
	if code != 0 {
		cancel()
		os.Exit(code)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"icwfixtures/internal/app"
	"icwfixtures/internal/infrastructure"
	"icwfixtures/pkg/contracts"
)

func main() {
	version := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *version {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stdout)
	stop()
	os.Exit(code)
}

// run generates the fixtures and returns the process exit code
func run(ctx context.Context, stdout io.Writer, opts ...app.Option) int {
	defer infrastructure.CloseLogFile()

	application, err := app.NewApplication(opts...)
	if err != nil {
		infrastructure.WithError(infrastructure.LoggerWithContext(ctx), err).
			ErrorContext(ctx, "Failed to initialize application")
		return 1
	}

	_, runErr := application.Run(ctx)
	if err := application.Close(context.Background()); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		infrastructure.WithError(application.Logger, runErr).ErrorContext(ctx, "Fixture generation failed")
		return 1
	}

	fmt.Fprintln(stdout, application.CompletionMessage())
	return 0
}

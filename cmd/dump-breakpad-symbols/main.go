package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/dump-breakpad-symbols/internal/cli"
)

func main() {
	// Cancelling the context kills a running dump_syms and unwinds any
	// unpacked RPM before exit.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.Execute(ctx)
}

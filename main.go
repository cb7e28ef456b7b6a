// gotx - one-shot TCP request/response transactions with per-phase timeouts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gotx/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "gotx: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/clusterboard/internal/commands"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := commands.New().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "clusterboard: %v\n", err)
		return 1
	}
	return 0
}

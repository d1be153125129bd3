package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/s0up4200/agroapi/cmd"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.SetVersion(version, buildTime)
	cmd.Execute(ctx)
}

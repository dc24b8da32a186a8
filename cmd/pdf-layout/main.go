package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spherical/pdf-layout/cmd/pdf-layout/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commands.Execute(ctx)
	stop()
	os.Exit(code)
}

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/openstax/bookops/internal/cli"
	"github.com/openstax/bookops/pkg/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.NewPrinter(os.Stderr, ui.FormatAuto).Error(err)
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:          "notifier",
		Short:        "WhatsApp notification loops for the reseller panel",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		remindersCmd(),
		invoicesCmd(),
		resellerNoticesCmd(),
		connectionMonitorCmd(),
	)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("notifier exited", "err", err)
		os.Exit(1)
	}
}

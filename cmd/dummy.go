package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fitsim/internal/dummy"
	"fitsim/internal/logging"
)

var dummyCmd = &cobra.Command{
	Use:   "dummy",
	Short: "Run the built-in fake fitness gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		failRate, _ := cmd.Flags().GetFloat64("fail-rate")
		jitter, _ := cmd.Flags().GetDuration("jitter")
		level, _ := cmd.Flags().GetString("log-level")

		if failRate < 0 || failRate > 1 {
			return fmt.Errorf("fail-rate must be within [0,1], got %v", failRate)
		}
		log, err := logging.New(level, logging.FormatConsole, os.Stderr)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return dummy.Start(ctx, dummy.ServerConfig{
			Port:     port,
			FailRate: failRate,
			Jitter:   jitter,
			Log:      log,
		})
	},
}

func init() {
	dummyCmd.Flags().IntP("port", "p", 3000, "Port to run the fake gateway on")
	dummyCmd.Flags().Float64("fail-rate", 0, "Probability in [0,1] of answering an /api request with 503")
	dummyCmd.Flags().Duration("jitter", 0, "Maximum random delay added to every response")
	dummyCmd.Flags().String("log-level", "info", "Request log level (debug logs every request)")
}

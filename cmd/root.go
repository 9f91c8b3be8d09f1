package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fitsim/internal/banner"
	"fitsim/internal/cli"
	"fitsim/internal/config"
	"fitsim/internal/runner"
)

var (
	cfgFile string
	envFile string

	// Mode flags
	auto        bool
	authOnly    bool
	interactive bool
)

var rootCmd = &cobra.Command{
	Use:   "fitsim",
	Short: "fitsim - Fitness App User Simulator",
	Long: `
fitsim drives a fitness application's API the way a new user would:
it registers, logs in, fills in a profile and a goal, logs meals and
exercises, then reads back the analytics.

Modes:
1. Interactive (default): pick a mode from a menu
2. --auto: run every stage without prompting
3. --auth-only: register and log in, then stop`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := initConfig(cmd)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		term := newTerminal()
		defer term.Close()

		return simulate(ctx, cfg, modeFlags{auto: auto, authOnly: authOnly}, term, cli.Start)
	},
}

func Execute() {
	// Custom Help with Banner
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	err := rootCmd.Execute()
	switch {
	case errors.Is(err, runner.ErrAuthenticationFailed):
		fmt.Fprintln(os.Stderr, "Simulation stopped:", err)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}

// exitCode is 0 for any completed run, including an exit from the menu.
func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

func init() {
	rootCmd.AddCommand(dummyCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fitsim.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.Flags().BoolVarP(&auto, "auto", "a", false, "Run the full simulation without prompting")
	rootCmd.Flags().BoolVar(&authOnly, "auth-only", false, "Run the Authentication stage only")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Choose the mode from a menu (default)")
	rootCmd.MarkFlagsMutuallyExclusive("auto", "auth-only", "interactive")

	config.RegisterFlags(rootCmd.Flags())
}

func initConfig(cmd *cobra.Command) config.Config {
	cfg, err := config.Load(config.Sources{ConfigFile: cfgFile, EnvFile: envFile})
	if err != nil {
		config.Exitf("load config: %v", err)
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		config.Exitf("apply flags: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		config.Exitf("invalid config: %v", err)
	}
	return cfg
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go.goms.io/aks/AKSupport/pkg/config"
	"go.goms.io/aks/AKSupport/pkg/logger"
)

var (
	configPath string
	logLevel   string
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the process exit code
func run(args []string) int {
	rootCmd := newRootCommand()
	rootCmd.SetArgs(args)

	// Set up context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(os.Stderr, "Command execution failed: %v\n", exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintf(os.Stderr, "Command execution failed: %v\n", err)
	return 1
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "aksupport",
		Short:         "AKS Kubernetes version support checker",
		Long:          "Checks whether the Kubernetes version of an AKS cluster is still supported in its region and notifies operators when it is not",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML configuration file (optional, environment variables are always read)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level: debug, info, warning, error")

	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewVersionCommand())

	// Set up persistent pre-run to initialize config and logger
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Skip config loading for version command
		if cmd.Name() == "version" {
			return nil
		}

		if logLevel != "" {
			if err := logger.ValidateLogLevel(logLevel); err != nil {
				return &exitCodeError{Code: 1, Err: err}
			}
		}

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return &exitCodeError{Code: 1, Err: fmt.Errorf("failed to load configuration: %w", err)}
		}

		level := cfg.Agent.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		ctx := logger.SetupLogger(cmd.Context(), level, cfg.Agent.LogDir)
		cmd.SetContext(ctx)
		return nil
	}

	return rootCmd
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"go.goms.io/aks/AKSupport/pkg/checker"
	"go.goms.io/aks/AKSupport/pkg/config"
	"go.goms.io/aks/AKSupport/pkg/logger"
)

// Version information variables (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// exitCodeError carries the process exit code of a finished command.
// Err is nil when the code only reports a support status.
type exitCodeError struct {
	Code int
	Err  error
}

func (e *exitCodeError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *exitCodeError) Unwrap() error {
	return e.Err
}

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "check [VERSION]",
		Short: "Check the cluster Kubernetes version against the AKS support policy",
		Long: "Reads the running Kubernetes version, compares it with the versions AKS supports in the configured region " +
			"and notifies the configured channels when support has ended or is ending soon. " +
			"Exit codes: 0 supported, 1 failure, 2 not supported, 3 support ending soon. " +
			"An optional VERSION argument replaces the running version, which is useful for testing notifications.",
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "text", "json", "yaml":
				return nil
			default:
				return &exitCodeError{Code: checker.ExitFailure, Err: fmt.Errorf("invalid --output %q. Valid values are: text, json, yaml", output)}
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			override := ""
			if len(args) == 1 {
				override = args[0]
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), override, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Report format: text, json, yaml")
	return cmd
}

// NewVersionCommand creates a new version command
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version, build commit, and build time information",
		Run: func(cmd *cobra.Command, args []string) {
			runVersion(cmd.OutOrStdout())
		},
	}

	return cmd
}

// runCheck performs one support check and converts its outcome into an exit code
func runCheck(ctx context.Context, out io.Writer, override, output string) error {
	log := logger.GetLoggerFromContext(ctx)

	cfg := config.GetConfig()
	if cfg == nil {
		return &exitCodeError{Code: checker.ExitFailure, Err: fmt.Errorf("configuration has not been loaded")}
	}

	c, err := checker.NewFromConfig(cfg, override, log)
	if err != nil {
		return &exitCodeError{Code: checker.ExitFailure, Err: err}
	}

	result, runErr := c.Run(ctx)
	if err := writeReport(out, result, output); err != nil {
		log.Errorf("Failed to write report: %v", err)
	}
	if runErr != nil {
		return &exitCodeError{Code: checker.ExitFailure, Err: runErr}
	}
	if result.ExitCode != checker.ExitSupported {
		return &exitCodeError{Code: result.ExitCode}
	}
	return nil
}

// writeReport renders the check result in the requested format
func writeReport(out io.Writer, result *checker.Result, output string) error {
	if result == nil {
		return nil
	}

	switch output {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result to JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to marshal result to YAML: %w", err)
		}
		return enc.Close()
	default:
		return writeTextReport(out, result)
	}
}

func writeTextReport(out io.Writer, result *checker.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Cluster:   %s\n", result.ClusterName)
	fmt.Fprintf(&b, "Region:    %s\n", result.Region)
	if result.RunningVersion != "" {
		fmt.Fprintf(&b, "Running:   %s\n", result.RunningVersion)
	}
	if len(result.CatalogVersions) > 0 {
		fmt.Fprintf(&b, "Supported: %s\n", strings.Join(result.CatalogVersions, ", "))
	}
	if result.Status != nil {
		fmt.Fprintf(&b, "Status:    %s\n", result.Status)
	}
	if result.Notifications != nil {
		fmt.Fprintf(&b, "Notified:  %d delivered, %d failed, %d skipped\n",
			result.Notifications.Delivered, result.Notifications.Failed, result.Notifications.Skipped)
	}
	if result.Error != "" {
		fmt.Fprintf(&b, "Error:     %s\n", result.Error)
	}
	_, err := io.WriteString(out, b.String())
	return err
}

// runVersion displays version information
func runVersion(out io.Writer) {
	fmt.Fprintf(out, "AKSupport\n")
	fmt.Fprintf(out, "Version: %s\n", Version)
	fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
	fmt.Fprintf(out, "Build Time: %s\n", BuildTime)
}

// Package cli implements the relnotes command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnotes/internal/config"
	apperrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/git"
)

// Command group identifiers for help output.
const (
	GroupWorkflows     = "workflows"
	GroupConfiguration = "configuration"
	GroupInternal      = "internal"
)

var (
	configFlag  string
	debugFlag   bool
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "relnotes",
	Short: "Render changelogs from structured release metadata",
	Long: `relnotes renders a CHANGELOG.md from a releases.yaml manifest, grouping
commits by category and package and crediting contributors per release.

The manifest can be written by hand or collected from a git repository and
enriched with GitHub pull-request metadata.

Documentation: https://github.com/ariel-frischer/relnotes`,
	Example: `  relnotes render                  # Render the manifest to CHANGELOG.md
  relnotes render --stdout         # Render to stdout instead
  relnotes preview                 # Colorized terminal preview
  relnotes preview v0.6.0          # Preview a single release
  relnotes collect                 # Build the manifest from git history
  relnotes watch                   # Re-render whenever the manifest changes`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugFlag {
			git.SetDebugLogger(func(format string, args ...any) {
				fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
			})
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to project config file (default: .relnotes/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupWorkflows, Title: "Workflow Commands:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration Commands:"},
		&cobra.Group{ID: GroupInternal, Title: "Additional Commands:"},
	)
}

// Execute runs the root command. Structured errors are printed with
// remediation guidance; ExitError codes terminate the process directly.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}

	if cliErr := apperrors.AsCLIError(err); cliErr != nil {
		apperrors.PrintError(cliErr)
	} else {
		apperrors.PrintSimpleError(err, apperrors.Runtime)
	}
	return err
}

// loadConfiguration loads the effective configuration, honoring the
// global --config flag.
func loadConfiguration() (*config.Configuration, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, apperrors.WrapWithMessage(err, apperrors.Configuration,
			"loading configuration",
			"Check .relnotes/config.yml for syntax errors",
			"Run 'relnotes config' to see the effective configuration")
	}
	return cfg, nil
}

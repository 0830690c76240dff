package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnotes/internal/changelog"
)

var previewPlainFlag bool

var previewCmd = &cobra.Command{
	Use:   "preview [release]",
	Short: "Preview release notes in the terminal",
	Long: `Preview release notes from the manifest with terminal colors.

By default, shows every release with at least one categorized commit. Pass a
release name to preview just that release ("v" prefix optional).

Examples:
  relnotes preview              # Preview all releases
  relnotes preview v0.6.0       # Preview one release
  relnotes preview unreleased   # Preview unreleased changes
  relnotes preview --plain      # Plain output (no colors)`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPreview(cmd, args)
	},
}

func init() {
	previewCmd.GroupID = GroupWorkflows
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().BoolVar(&previewPlainFlag, "plain", false, "Plain text output (no colors)")
	previewCmd.Flags().StringVar(&renderManifestFlag, "manifest", "", "Path to the release manifest (overrides config)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	log, err := loadManifest(cfg)
	if err != nil {
		return err
	}

	opts := changelog.FormatOptions{Plain: previewPlainFlag}

	if len(args) == 1 {
		return previewRelease(log, args[0], cfg.Categories, cmd, opts)
	}

	return changelog.FormatTerminal(log.Releases, cfg.Categories, cmd.OutOrStdout(), opts)
}

func previewRelease(log *changelog.Changelog, name string, categories []string, cmd *cobra.Command, opts changelog.FormatOptions) error {
	rel, err := log.Get(name)
	if err != nil {
		var notFound *changelog.ReleaseNotFoundError
		if errors.As(err, &notFound) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Release %q not found.\n\n", name)
			fmt.Fprintf(cmd.ErrOrStderr(), "Available releases:\n")
			for _, n := range log.Names() {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", n)
			}
			return NewExitError(ExitInvalidArguments)
		}
		return fmt.Errorf("getting release: %w", err)
	}

	return changelog.FormatRelease(rel, categories, cmd.OutOrStdout(), opts)
}

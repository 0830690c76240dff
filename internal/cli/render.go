package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnotes/internal/changelog"
	"github.com/ariel-frischer/relnotes/internal/config"
	apperrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/progress"
)

var (
	renderManifestFlag   string
	renderOutputFlag     string
	renderStdoutFlag     bool
	renderNoProgressFlag bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the release manifest to markdown",
	Long: `Render the releases.yaml manifest to a markdown changelog.

Commits are grouped under the configured category headings, in order; within
a category, commits scoped to packages render under per-package bullets.
Releases without any categorized commit are omitted.

Examples:
  relnotes render                        # Write to the configured output path
  relnotes render --stdout               # Print to stdout
  relnotes render --manifest notes.yaml  # Render a specific manifest`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRender(cmd)
	},
}

func init() {
	renderCmd.GroupID = GroupWorkflows
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderManifestFlag, "manifest", "", "Path to the release manifest (overrides config)")
	renderCmd.Flags().StringVar(&renderOutputFlag, "output", "", "Path for the rendered markdown (overrides config)")
	renderCmd.Flags().BoolVar(&renderStdoutFlag, "stdout", false, "Print markdown to stdout instead of writing a file")
	renderCmd.Flags().BoolVar(&renderNoProgressFlag, "no-progress", false, "Disable the progress spinner")
}

func runRender(cmd *cobra.Command) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	log, err := loadManifest(cfg)
	if err != nil {
		return err
	}

	md := renderMarkdown(cfg, log)

	if renderStdoutFlag {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}

	outputPath := cfg.OutputPath
	if renderOutputFlag != "" {
		outputPath = renderOutputFlag
	}

	if err := os.WriteFile(outputPath, []byte(md), 0o644); err != nil {
		return apperrors.WrapWithMessage(err, apperrors.Runtime, "writing changelog")
	}

	if verboseFlag {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d releases, %d commits)\n",
			outputPath, len(log.Releases), log.CommitCount())
	}
	return nil
}

// renderMarkdown renders the manifest with a spinner on interactive
// terminals and silently otherwise.
func renderMarkdown(cfg *config.Configuration, log *changelog.Changelog) string {
	var ind progress.Indicator = progress.Noop{}
	if !renderNoProgressFlag && !renderStdoutFlag {
		ind = progress.NewIndicator(progress.DetectTerminalCapabilities())
	}

	r := changelog.NewRenderer(changelog.Options{
		Categories:   cfg.Categories,
		BaseIssueURL: cfg.BaseIssueURL,
	}, ind)

	return r.RenderAll(log.Releases)
}

// loadManifest loads and validates the release manifest, honoring the
// --manifest override.
func loadManifest(cfg *config.Configuration) (*changelog.Changelog, error) {
	path := cfg.ManifestPath
	if renderManifestFlag != "" {
		path = renderManifestFlag
	}

	log, err := changelog.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewPrerequisiteError(
				fmt.Sprintf("release manifest not found at %s", path),
				"Run 'relnotes collect' to build one from git history",
				"Or set manifest_path in .relnotes/config.yml")
		}
		if changelog.IsValidationError(err) {
			return nil, apperrors.Wrap(err, apperrors.Configuration,
				"Fix the reported field in the release manifest")
		}
		return nil, apperrors.WrapWithMessage(err, apperrors.Runtime, "loading release manifest")
	}
	return log, nil
}

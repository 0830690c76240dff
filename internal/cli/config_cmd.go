package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/relnotes/internal/config"
)

var configInitFlag bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration after merging defaults, the user
config, the project config, and RELNOTES_* environment variables.

Examples:
  relnotes config          # Print the effective configuration
  relnotes config --init   # Write a commented .relnotes/config.yml template`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfig(cmd)
	},
}

func init() {
	configCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configInitFlag, "init", false, "Write a commented project config template")
}

func runConfig(cmd *cobra.Command) error {
	if configInitFlag {
		return writeConfigTemplate(cmd)
	}

	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(configView(cfg))
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

// configView maps the configuration to its file representation for display.
func configView(cfg *config.Configuration) map[string]interface{} {
	return map[string]interface{}{
		"repo":             cfg.Repo,
		"categories":       cfg.Categories,
		"labels":           cfg.Labels,
		"base_issue_url":   cfg.BaseIssueURL,
		"manifest_path":    cfg.ManifestPath,
		"output_path":      cfg.OutputPath,
		"github_api_url":   cfg.GithubAPIURL,
		"github_token_env": cfg.GithubTokenEnv,
		"concurrency":      cfg.Concurrency,
	}
}

func writeConfigTemplate(cmd *cobra.Command) error {
	path := config.ProjectConfigPath()
	if configFlag != "" {
		path = configFlag
	}

	if err := config.WriteTemplate(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

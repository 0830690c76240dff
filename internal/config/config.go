// Package config provides hierarchical configuration management for relnotes
// using koanf. Configuration is loaded with priority: environment variables >
// project config (.relnotes/config.yml) > user config
// (~/.config/relnotes/config.yml) > defaults. Legacy JSON project configs are
// still read, with a deprecation warning.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration represents the relnotes CLI tool configuration.
type Configuration struct {
	// Categories is the ordered list of category headings for rendering.
	// Output sections always follow this order.
	Categories []string `koanf:"categories"`

	// Labels maps GitHub issue labels to category names, used when
	// collecting release data from a repository.
	Labels map[string]string `koanf:"labels"`

	// BaseIssueURL is the URL prefix for issue links in rewritten titles
	// (e.g., "https://github.com/owner/repo/issues/"). Derived from Repo
	// when empty.
	BaseIssueURL string `koanf:"base_issue_url"`

	// Repo is the "owner/name" of the GitHub repository used for
	// collection and metadata enrichment.
	Repo string `koanf:"repo"`

	// ManifestPath is the path to the releases.yaml manifest.
	ManifestPath string `koanf:"manifest_path"`

	// OutputPath is where rendered markdown is written.
	OutputPath string `koanf:"output_path"`

	// GithubAPIURL overrides the GitHub API base URL (for GHE setups).
	GithubAPIURL string `koanf:"github_api_url"`

	// GithubTokenEnv names the environment variable holding the API token.
	GithubTokenEnv string `koanf:"github_token_env"`

	// Concurrency bounds parallel metadata lookups during collection.
	Concurrency int `koanf:"concurrency"`
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .relnotes/config.yml)
	ProjectConfigPath string
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := getWarningWriter(opts.WarningWriter)

	loadDefaults(k)

	if err := loadUserConfig(k); err != nil {
		return nil, err
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// getWarningWriter returns the warning writer or defaults to stderr.
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values.
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level YAML config if it exists.
func loadUserConfig(k *koanf.Koanf) error {
	path, err := UserConfigPath()
	if err != nil || !fileExists(path) {
		return nil
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading user config %s: %w", path, err)
	}
	return nil
}

// loadProjectConfig loads project-level config (YAML preferred, legacy JSON
// supported with a warning). Supports a custom path override for testing.
func loadProjectConfig(k *koanf.Koanf, customPath string, warningWriter io.Writer, skipWarnings bool) error {
	yamlPath := ProjectConfigPath()
	if customPath != "" {
		yamlPath = customPath
	}
	legacyPath := LegacyProjectConfigPath()

	if fileExists(yamlPath) {
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading project config %s: %w", yamlPath, err)
		}
		if fileExists(legacyPath) && !skipWarnings {
			fmt.Fprintf(warningWriter, "Warning: Legacy JSON config found at %s (ignored, using %s)\n", legacyPath, yamlPath)
		}
		return nil
	}

	if fileExists(legacyPath) {
		if err := k.Load(file.Provider(legacyPath), json.Parser()); err != nil {
			return fmt.Errorf("loading legacy project config %s: %w", legacyPath, err)
		}
		if !skipWarnings {
			fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON config at %s\n", legacyPath)
			fmt.Fprintf(warningWriter, "  Rewrite it as %s to silence this warning.\n\n", ProjectConfigPath())
		}
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides.
// RELNOTES_OUTPUT_PATH maps to output_path, and so on.
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider("RELNOTES_", ".", envTransform), nil); err != nil {
		return fmt.Errorf("loading environment config: %w", err)
	}
	return nil
}

// envTransform maps RELNOTES_* variable names to config keys.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "RELNOTES_"))
}

// finalizeConfig unmarshals, validates, and applies derived values.
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := ValidateConfigValues(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// base_issue_url can be derived from repo instead of spelled out.
	if cfg.BaseIssueURL == "" && cfg.Repo != "" {
		cfg.BaseIssueURL = "https://github.com/" + cfg.Repo + "/issues/"
	}
	if cfg.BaseIssueURL != "" && !strings.HasSuffix(cfg.BaseIssueURL, "/") {
		cfg.BaseIssueURL += "/"
	}

	cfg.ManifestPath = expandHomePath(cfg.ManifestPath)
	cfg.OutputPath = expandHomePath(cfg.OutputPath)

	return &cfg, nil
}

// UserConfigPath returns the XDG-compliant user config path.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "relnotes", "config.yml"), nil
}

// ProjectConfigPath returns the project-level config path.
func ProjectConfigPath() string {
	return filepath.Join(".relnotes", "config.yml")
}

// LegacyProjectConfigPath returns the deprecated JSON project config path.
func LegacyProjectConfigPath() string {
	return filepath.Join(".relnotes", "config.json")
}

// expandHomePath expands a leading "~/" to the user's home directory.
func expandHomePath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns the default configuration values keyed by config path.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"categories": []string{
			"New Feature",
			"Bug Fix",
			"Documentation",
			"Internal",
		},
		"labels": map[string]string{
			"enhancement":   "New Feature",
			"feature":       "New Feature",
			"bug":           "Bug Fix",
			"documentation": "Documentation",
			"docs":          "Documentation",
			"internal":      "Internal",
			"chore":         "Internal",
		},
		"base_issue_url":   "",
		"repo":             "",
		"manifest_path":    "releases.yaml",
		"output_path":      "CHANGELOG.md",
		"github_api_url":   "https://api.github.com",
		"github_token_env": "GITHUB_TOKEN",
		"concurrency":      5,
	}
}

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options.
func GetDefaultConfigTemplate() string {
	return `# relnotes configuration
# Priority: RELNOTES_* env vars > .relnotes/config.yml > ~/.config/relnotes/config.yml

# Repository used for collection and metadata enrichment ("owner/name")
repo: ""

# Category headings, in rendering order
categories:
  - New Feature
  - Bug Fix
  - Documentation
  - Internal

# GitHub label -> category mapping used by 'relnotes collect'
labels:
  enhancement: New Feature
  feature: New Feature
  bug: Bug Fix
  documentation: Documentation
  docs: Documentation
  internal: Internal
  chore: Internal

# Issue link prefix for "fixes #N" rewrites (derived from repo when empty)
base_issue_url: ""

manifest_path: releases.yaml          # Release manifest read by 'relnotes render'
output_path: CHANGELOG.md             # Rendered markdown destination

# GitHub API settings
github_api_url: https://api.github.com
github_token_env: GITHUB_TOKEN        # Env var holding the API token
concurrency: 5                        # Parallel metadata lookups (1-32)
`
}

// WriteTemplate writes the commented config template to path, creating the
// parent directory. Refuses to overwrite an existing file.
func WriteTemplate(path string) error {
	if fileExists(path) {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(GetDefaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}

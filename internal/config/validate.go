package config

import (
	"fmt"
	"strings"
)

// ValidateConfigValues checks that configuration values are within bounds.
// Returns the first violation found.
func ValidateConfigValues(cfg *Configuration) error {
	if len(cfg.Categories) == 0 {
		return fmt.Errorf("categories: at least one category is required")
	}
	for i, cat := range cfg.Categories {
		if strings.TrimSpace(cat) == "" {
			return fmt.Errorf("categories[%d]: category name cannot be blank", i)
		}
	}

	for label, cat := range cfg.Labels {
		if !containsCategory(cfg.Categories, cat) {
			return fmt.Errorf("labels[%q]: maps to unknown category %q", label, cat)
		}
	}

	if cfg.Repo != "" {
		parts := strings.Split(cfg.Repo, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return fmt.Errorf("repo: expected \"owner/name\", got %q", cfg.Repo)
		}
	}

	if cfg.Concurrency < 1 || cfg.Concurrency > 32 {
		return fmt.Errorf("concurrency: must be between 1 and 32, got %d", cfg.Concurrency)
	}

	return nil
}

func containsCategory(categories []string, name string) bool {
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}

package changelog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidationError represents a manifest validation error with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Load reads and validates a releases.yaml manifest from the given path.
// Returns the parsed Changelog struct or an error with context.
func Load(path string) (*Changelog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening release manifest: %w", err)
	}
	defer f.Close()

	return LoadFromReader(f)
}

// LoadFromReader reads and validates a manifest from an io.Reader.
// This is useful for testing and for loading fetched content.
func LoadFromReader(r io.Reader) (*Changelog, error) {
	var changelog Changelog

	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&changelog); err != nil {
		return nil, fmt.Errorf("parsing release manifest YAML: %w", err)
	}

	if err := Validate(&changelog); err != nil {
		return nil, err
	}

	return &changelog, nil
}

// Save writes the manifest to the given path as YAML.
func Save(path string, c *Changelog) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding release manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing release manifest: %w", err)
	}
	return nil
}

// Validate checks that a Changelog struct satisfies all schema constraints.
// Returns nil if valid, or a ValidationError with details if invalid.
func Validate(c *Changelog) error {
	unreleasedCount := 0
	seenNames := make(map[string]bool)

	for i := range c.Releases {
		r := &c.Releases[i]
		if err := validateRelease(r, i); err != nil {
			return err
		}

		name := NormalizeName(r.Name)
		if seenNames[name] {
			return &ValidationError{
				Field:   fmt.Sprintf("releases[%d].name", i),
				Message: fmt.Sprintf("duplicate release %q", r.Name),
			}
		}
		seenNames[name] = true

		if r.IsUnreleased() {
			unreleasedCount++
		}
	}

	if unreleasedCount > 1 {
		return &ValidationError{
			Field:   "releases",
			Message: "only one 'unreleased' release is allowed",
		}
	}

	return nil
}

// validateRelease checks constraints for a single release entry.
func validateRelease(r *Release, index int) error {
	if r.Name == "" {
		return &ValidationError{
			Field:   fmt.Sprintf("releases[%d].name", index),
			Message: "required field is empty",
		}
	}

	if !r.IsUnreleased() && r.Date == "" {
		return &ValidationError{
			Field:   fmt.Sprintf("releases[%d].date", index),
			Message: "date is required for released entries",
		}
	}

	if r.Date != "" {
		if err := validateDateFormat(r.Date, index); err != nil {
			return err
		}
	}

	for j := range r.Commits {
		if err := validateCommit(&r.Commits[j], index, j); err != nil {
			return err
		}
	}

	for j, contrib := range r.Contributors {
		if strings.TrimSpace(contrib.Login) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("releases[%d].contributors[%d].login", index, j),
				Message: "required field is empty",
			}
		}
	}

	return nil
}

// validateCommit checks constraints for a single commit entry.
func validateCommit(c *Commit, releaseIndex, commitIndex int) error {
	for k, cat := range c.Categories {
		if strings.TrimSpace(cat) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("releases[%d].commits[%d].categories[%d]", releaseIndex, commitIndex, k),
				Message: "category cannot be empty",
			}
		}
	}

	for k, pkg := range c.Packages {
		if strings.TrimSpace(pkg) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("releases[%d].commits[%d].packages[%d]", releaseIndex, commitIndex, k),
				Message: "package name cannot be empty",
			}
		}
	}

	if c.Issue != nil && c.Issue.Number < 0 {
		return &ValidationError{
			Field:   fmt.Sprintf("releases[%d].commits[%d].issue.number", releaseIndex, commitIndex),
			Message: fmt.Sprintf("issue number must not be negative, got %d", c.Issue.Number),
		}
	}

	return nil
}

// validateDateFormat checks that the date is in YYYY-MM-DD format.
func validateDateFormat(date string, index int) error {
	datePattern := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	if !datePattern.MatchString(date) {
		return &ValidationError{
			Field:   fmt.Sprintf("releases[%d].date", index),
			Message: fmt.Sprintf("invalid date format %q (expected: YYYY-MM-DD)", date),
		}
	}
	return nil
}

// NormalizeName normalizes a release name by lowercasing and removing the
// "v" prefix. This allows accepting both "v0.6.0" and "0.6.0" as input.
func NormalizeName(name string) string {
	return strings.TrimPrefix(strings.ToLower(name), "v")
}

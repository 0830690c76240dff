package changelog

import (
	"fmt"
	"strings"
)

// ReleaseNotFoundError is returned when a requested release doesn't exist.
type ReleaseNotFoundError struct {
	Name      string
	Available []string
}

func (e *ReleaseNotFoundError) Error() string {
	return fmt.Sprintf("release %q not found (available: %s)",
		e.Name, strings.Join(e.Available, ", "))
}

// Get retrieves a specific release from the changelog.
// Accepts both "v0.6.0" and "0.6.0" formats (normalizes the input).
// Returns ReleaseNotFoundError if the release doesn't exist.
func (c *Changelog) Get(name string) (*Release, error) {
	normalized := NormalizeName(name)

	for i := range c.Releases {
		if NormalizeName(c.Releases[i].Name) == normalized {
			return &c.Releases[i], nil
		}
	}

	return nil, &ReleaseNotFoundError{
		Name:      name,
		Available: c.Names(),
	}
}

// Unreleased retrieves the unreleased entry, or nil if there is none.
func (c *Changelog) Unreleased() *Release {
	for i := range c.Releases {
		if c.Releases[i].IsUnreleased() {
			return &c.Releases[i]
		}
	}
	return nil
}

// Names returns all release names in the order they appear (newest first).
func (c *Changelog) Names() []string {
	names := make([]string, len(c.Releases))
	for i := range c.Releases {
		names[i] = c.Releases[i].Name
	}
	return names
}

// CommitCount returns the total number of commits across all releases.
func (c *Changelog) CommitCount() int {
	count := 0
	for i := range c.Releases {
		count += len(c.Releases[i].Commits)
	}
	return count
}

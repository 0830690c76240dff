// Package changelog provides YAML-first release-notes management for relnotes.
//
// This package implements:
//   - releases.yaml manifest parsing and validation
//   - Markdown generation grouped by category and package
//   - Release querying for CLI display
//   - Colorized terminal preview
//
// The releases.yaml manifest serves as the single source of truth for all
// release content. CHANGELOG.md is generated from it by the Renderer, which
// groups commits under the configured category headings and credits
// contributors per release.
package changelog

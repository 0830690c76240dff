package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewAllReleases(t *testing.T) {
	manifestPath, configPath := writeFixtures(t)

	stdout, _, err := execute(t, "preview", "--plain",
		"--manifest", manifestPath, "--config", configPath)
	require.NoError(t, err)

	assert.Contains(t, stdout, "## v1.0.0 (2026-01-15)")
	assert.Contains(t, stdout, "### New Feature")
	assert.Contains(t, stdout, "  - add preview command (#30)")
}

func TestPreviewSingleRelease(t *testing.T) {
	manifestPath, configPath := writeFixtures(t)

	// The "v" prefix is optional when naming a release.
	stdout, _, err := execute(t, "preview", "1.0.0", "--plain",
		"--manifest", manifestPath, "--config", configPath)
	require.NoError(t, err)

	assert.Contains(t, stdout, "## v1.0.0 (2026-01-15)")
}

func TestPreviewUnknownRelease(t *testing.T) {
	manifestPath, configPath := writeFixtures(t)

	_, stderr, err := execute(t, "preview", "v9.9.9", "--plain",
		"--manifest", manifestPath, "--config", configPath)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitInvalidArguments, exitErr.Code)

	assert.Contains(t, stderr, `Release "v9.9.9" not found.`)
	assert.Contains(t, stderr, "v1.0.0")
}

func TestConfigCommandShowsEffectiveConfig(t *testing.T) {
	_, configPath := writeFixtures(t)

	stdout, _, err := execute(t, "config", "--config", configPath)
	require.NoError(t, err)

	assert.Contains(t, stdout, "repo: octo/widgets")
	assert.Contains(t, stdout, "manifest_path: releases.yaml")
	assert.Contains(t, stdout, "base_issue_url: https://github.com/octo/widgets/issues/")
}

func TestConfigInitWritesTemplate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), ".relnotes", "config.yml")

	stdout, _, err := execute(t, "config", "--init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+path)

	// A second init refuses to overwrite.
	_, _, err = execute(t, "config", "--init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

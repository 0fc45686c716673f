// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_FindsConfigInStartDir(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
rule_dirs:
  - rules
roots:
  - src
glob: "*.go"
`)

	cfg, err := Discover(root)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, "*.go", cfg.Glob)
	assert.Equal(t, []string{filepath.Join(root, "rules")}, cfg.RuleDirs)
	assert.Equal(t, []string{filepath.Join(root, "src")}, cfg.Roots)
}

func TestDiscover_WalksUpFromNestedDir(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "rule_dirs:\n  - rules\n")

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Discover(nested)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, root, cfg.Root)
}

func TestDiscover_ReturnsNilWhenNoConfigFound(t *testing.T) {
	root := t.TempDir()
	cfg, err := Discover(root)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestEffectiveRuleDirs_EnvOverrideWins(t *testing.T) {
	cfg := &ProjectConfig{RuleDirs: []string{"/from/config"}}
	t.Setenv("SGREP_RULE_DIR", "/from/env")
	assert.Equal(t, []string{"/from/env"}, cfg.EffectiveRuleDirs())
}

func TestEffectiveRuleDirs_NilConfigIsSafe(t *testing.T) {
	t.Setenv("SGREP_RULE_DIR", "")
	var cfg *ProjectConfig
	assert.Nil(t, cfg.EffectiveRuleDirs())
}

func TestEffectiveRoots_FallsBackToWorkingDirectory(t *testing.T) {
	var cfg *ProjectConfig
	roots, err := cfg.EffectiveRoots()
	require.NoError(t, err)
	require.Len(t, roots, 1)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, cwd, roots[0])
}

func writeConfig(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, ".sgrep")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
}

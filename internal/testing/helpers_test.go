// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupSandbox_CreatesUsableSandbox(t *testing.T) {
	sb := SetupSandbox(t)
	require.NotNil(t, sb)
	assert.Len(t, sb.Roots(), 1)
}

func TestWriteFixtureFile_WritesUnderSandboxRoot(t *testing.T) {
	sb := SetupSandbox(t)
	path := WriteFixtureFile(t, sb, "nested/a.js", "console.log(1);")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "console.log(1);", string(data))
}

func TestWriteRuleFixture_AppendsYAMLExtension(t *testing.T) {
	dir := t.TempDir()
	path := WriteRuleFixture(t, dir, "no-console", `
id: no-console
language: javascript
rule:
  pattern: console.log($X)
`)
	assert.Contains(t, path, "no-console.yaml")

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestLoadCatalogFixture_LoadsWrittenRules(t *testing.T) {
	dir := t.TempDir()
	WriteRuleFixture(t, dir, "no-console.yaml", `
id: no-console
language: javascript
rule:
  pattern: console.log($X)
`)

	cat := LoadCatalogFixture(t, dir)
	rf, err := cat.Get("no-console")
	require.NoError(t, err)
	assert.Equal(t, "javascript", rf.Language)
}

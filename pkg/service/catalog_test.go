package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/sgrep/pkg/rule"
)

func TestListRule_ReflectsLoadedCatalog(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "no-console.yaml", `
id: no-console
language: javascript
rule:
  pattern: console.log($X)
`)
	s, err := New(Config{RuleDirs: []string{dir}})
	require.NoError(t, err)

	rules := s.ListRule()
	require.Len(t, rules, 1)
	assert.Equal(t, "no-console", rules[0].ID)
}

func TestGetRule_UnknownIDReturnsError(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)

	_, err = s.GetRule("missing")
	require.Error(t, err)
}

func TestCreateRule_WritesFileAndReloadsCatalog(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Config{RuleDirs: []string{dir}})
	require.NoError(t, err)

	rf := &rule.RuleFile{
		ID:       "no-console",
		Language: "javascript",
		Message:  "avoid console.log",
		Severity: "warning",
		Fix:      "logger.info($X)",
		Rule:     &rule.Rule{Kind: rule.KindPattern, PatternText: "console.log($X)"},
	}
	require.NoError(t, s.CreateRule(dir, rf))

	path := filepath.Join(dir, "no-console.yaml")
	_, statErr := os.Stat(path)
	require.NoError(t, statErr)

	got, err := s.GetRule("no-console")
	require.NoError(t, err)
	assert.Equal(t, "javascript", got.Language)
	assert.Equal(t, "logger.info($X)", got.Fix)
}

func TestCreateRule_RejectsExistingPath(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "no-console.yaml", `
id: no-console
language: javascript
rule:
  pattern: console.log($X)
`)
	s, err := New(Config{RuleDirs: []string{dir}})
	require.NoError(t, err)

	rf := &rule.RuleFile{
		ID:       "no-console",
		Language: "javascript",
		Rule:     &rule.Rule{Kind: rule.KindPattern, PatternText: "console.log($X)"},
	}
	err = s.CreateRule(dir, rf)
	require.Error(t, err)
}

func TestCreateRule_RejectsCyclicReference(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "a.yaml", `
id: a
language: javascript
rule:
  matches: b
`)
	s, err := New(Config{RuleDirs: []string{dir}})
	require.NoError(t, err)

	rf := &rule.RuleFile{
		ID:       "b",
		Language: "javascript",
		Rule:     &rule.Rule{Kind: rule.KindMatches, RefID: "a"},
	}
	err = s.CreateRule(dir, rf)
	require.Error(t, err)
	assert.IsType(t, &rule.CycleError{}, err)
}

func TestDeleteRule_RemovesFileAndReloadsCatalog(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "no-console.yaml", `
id: no-console
language: javascript
rule:
  pattern: console.log($X)
`)
	s, err := New(Config{RuleDirs: []string{dir}})
	require.NoError(t, err)
	require.Len(t, s.ListRule(), 1)

	require.NoError(t, s.DeleteRule("no-console"))
	assert.Empty(t, s.ListRule())

	_, statErr := os.Stat(filepath.Join(dir, "no-console.yaml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDeleteRule_UnknownIDReturnsError(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)

	err = s.DeleteRule("missing")
	require.Error(t, err)
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyRuleDirsYieldsEmptyCatalog(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	assert.Empty(t, s.ListRule())
}

func TestListLanguages_IsSortedAndNonEmpty(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	names := s.ListLanguages()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i])
	}
}

func TestReload_PicksUpNewRuleDir(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Config{RuleDirs: []string{dir}})
	require.NoError(t, err)
	assert.Empty(t, s.ListRule())

	writeRuleFile(t, dir, "no-console.yaml", `
id: no-console
language: javascript
rule:
  pattern: console.log($X)
`)

	require.NoError(t, s.Reload())
	assert.Len(t, s.ListRule(), 1)
}

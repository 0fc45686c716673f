package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/sgrep/pkg/pipeline"
)

func TestSearch_SingleSnippet(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)

	matches, err := s.Search(MatchRequest{
		Language: "javascript",
		Source:   `function greet() { console.log("hi"); console.error("bad"); }`,
		PatternSpec: PatternSpec{
			Pattern: "console.log($X)",
		},
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, `"hi"`, matches[0].Vars["X"].Text)
}

func TestSearch_UnknownLanguage(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)

	_, err = s.Search(MatchRequest{Language: "cobol", Source: "x", PatternSpec: PatternSpec{Pattern: "x"}})
	require.Error(t, err)
}

func TestFileSearch_ScansSandboxedTree(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "a.js", `console.log(1);`)
	writeSourceFile(t, dir, "b.js", `console.error(2);`)

	s, err := New(Config{})
	require.NoError(t, err)

	result, err := s.FileSearch(FileMatchRequest{
		Roots:       []string{dir},
		PatternSpec: PatternSpec{Pattern: "console.log($X)"},
		Options:     pipeline.Options{Glob: "*.js"},
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "1", result.Files[0].Matches[0].Vars["X"].Text)
}

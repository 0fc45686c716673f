package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/sgrep/pkg/lang"
	"github.com/kraklabs/sgrep/pkg/matcher"
	"github.com/kraklabs/sgrep/pkg/pattern"
	"github.com/kraklabs/sgrep/pkg/sandbox"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func consoleLogMatcher(t *testing.T) MatchFunc {
	t.Helper()
	cache := pattern.NewCache(0)
	return func(l *lang.Language, root *sitter.Node, source []byte) ([]*matcher.Match, error) {
		p, err := cache.CompileCached(l, "console.log($X)", pattern.CompileOptions{})
		if err != nil {
			return nil, err
		}
		return matcher.FindAll(p, root, source), nil
	}
}

func TestSearch_AccumulatesAcrossFilesInSortedOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", `console.log(1);`)
	writeFile(t, dir, "b.js", `console.log(2); console.log(3);`)

	sb, err := sandbox.New([]string{dir})
	require.NoError(t, err)

	result, err := Search(lang.NewRegistry(), sb, Options{Glob: "*.js"}, consoleLogMatcher(t))
	require.NoError(t, err)
	require.Len(t, result.Files, 2)
	assert.Equal(t, filepath.Join(dir, "a.js"), result.Files[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.js"), result.Files[1].Path)
	assert.True(t, result.Cursor.IsComplete)
}

func TestSearch_PaginatesViaCursor(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", `console.log(1);`)
	writeFile(t, dir, "b.js", `console.log(2);`)

	sb, err := sandbox.New([]string{dir})
	require.NoError(t, err)
	reg := lang.NewRegistry()

	first, err := Search(reg, sb, Options{Glob: "*.js", MaxResults: 1}, consoleLogMatcher(t))
	require.NoError(t, err)
	require.Len(t, first.Files, 1)
	assert.False(t, first.Cursor.IsComplete)
	assert.Equal(t, filepath.Join(dir, "a.js"), first.Cursor.LastFilePath)

	second, err := Search(reg, sb, Options{Glob: "*.js", MaxResults: 1, Cursor: first.Cursor}, consoleLogMatcher(t))
	require.NoError(t, err)
	require.Len(t, second.Files, 1)
	assert.Equal(t, filepath.Join(dir, "b.js"), second.Files[0].Path)
	assert.True(t, second.Cursor.IsComplete)
}

func TestSearch_SkipsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.js", `console.log(1);`)

	sb, err := sandbox.New([]string{dir})
	require.NoError(t, err)

	result, err := Search(lang.NewRegistry(), sb, Options{Glob: "*.js", MaxFileSize: 4}, consoleLogMatcher(t))
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, ReasonSizeExceeded, result.Skipped[0].Reason)
}

func TestSearch_ContextLinesClippedToFileBoundaries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "one();\nconsole.log(1);\nthree();\n")

	sb, err := sandbox.New([]string{dir})
	require.NoError(t, err)

	result, err := Search(lang.NewRegistry(), sb, Options{Glob: "*.js", ContextLines: 5}, consoleLogMatcher(t))
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.Len(t, result.Files[0].Matches, 1)
	m := result.Files[0].Matches[0]
	assert.Equal(t, []string{"one();"}, m.Before)
	assert.Equal(t, []string{"three();"}, m.After)
}

func TestReplace_WritesAtomicallyAndComputesHashes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.js", `console.log(1);`)

	sb, err := sandbox.New([]string{dir})
	require.NoError(t, err)

	replaceFn := func(m *matcher.Match) (string, error) {
		return "logger.info(" + m.Vars["X"].Text + ")", nil
	}

	result, err := Replace(lang.NewRegistry(), sb, Options{Glob: "*.js"}, consoleLogMatcher(t), replaceFn, false)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].Applied)
	assert.NotEmpty(t, result.Files[0].BeforeHash)
	assert.NotEqual(t, result.Files[0].BeforeHash, result.Files[0].AfterHash)

	rewritten, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "logger.info(1);", string(rewritten))
}

func TestReplace_DryRunLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.js", `console.log(1);`)

	sb, err := sandbox.New([]string{dir})
	require.NoError(t, err)

	replaceFn := func(m *matcher.Match) (string, error) {
		return "logger.info(" + m.Vars["X"].Text + ")", nil
	}

	result, err := Replace(lang.NewRegistry(), sb, Options{Glob: "*.js"}, consoleLogMatcher(t), replaceFn, true)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.False(t, result.Files[0].Applied)
	assert.True(t, result.Files[0].DryRun)

	untouched, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `console.log(1);`, string(untouched))
}

func TestReplace_RejectsOverlappingEditsPerFileIsolated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", `console.log(1);`)
	writeFile(t, dir, "b.js", `console.log(2);`)

	sb, err := sandbox.New([]string{dir})
	require.NoError(t, err)

	cache := pattern.NewCache(0)
	brokenMatcher := func(l *lang.Language, root *sitter.Node, source []byte) ([]*matcher.Match, error) {
		p, err := cache.CompileCached(l, "console.log($X)", pattern.CompileOptions{})
		if err != nil {
			return nil, err
		}
		ms := matcher.FindAll(p, root, source)
		if len(ms) == 1 {
			dup := *ms[0]
			return []*matcher.Match{ms[0], &dup}, nil
		}
		return ms, nil
	}
	replaceFn := func(m *matcher.Match) (string, error) { return "x", nil }

	result, err := Replace(lang.NewRegistry(), sb, Options{Glob: "*.js"}, brokenMatcher, replaceFn, true)
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	require.Len(t, result.Skipped, 2)
	for _, s := range result.Skipped {
		assert.Equal(t, ReasonReplaceError, s.Reason)
	}
}

func TestSearch_CompleteCursorYieldsEmptyPage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", `console.log(1);`)

	sb, err := sandbox.New([]string{dir})
	require.NoError(t, err)

	result, err := Search(lang.NewRegistry(), sb, Options{Glob: "*.js", Cursor: Cursor{IsComplete: true}}, consoleLogMatcher(t))
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.True(t, result.Cursor.IsComplete)
}

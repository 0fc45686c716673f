package embed

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/sgrep/pkg/lang"
	"github.com/kraklabs/sgrep/pkg/matcher"
	"github.com/kraklabs/sgrep/pkg/pattern"
)

func jsMatches(t *testing.T, l *lang.Language, body []byte, patternText string) ([]*matcher.Match, error) {
	t.Helper()
	p, err := pattern.Compile(l, patternText, pattern.CompileOptions{})
	require.NoError(t, err)

	parser := sitter.NewParser()
	parser.SetLanguage(l.Grammar)
	tree, err := parser.ParseCtx(context.Background(), nil, body)
	require.NoError(t, err)

	return matcher.FindAll(p, tree.RootNode(), body), nil
}

func TestFindRegions_HTMLScriptBlock(t *testing.T) {
	reg := lang.NewRegistry()
	host, err := reg.LanguageForName("html")
	require.NoError(t, err)

	src := []byte("<html><body>\n<script>\nconsole.log(1);\n</script>\n</body></html>")

	regions, err := FindRegions(reg, host, "javascript", src)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Contains(t, regions[0].Body, "console.log(1);")
}

func TestFindRegions_MarkdownFencedBlockFiltersByLanguageTag(t *testing.T) {
	reg := lang.NewRegistry()
	host, err := reg.LanguageForName("markdown")
	require.NoError(t, err)

	src := []byte("# Title\n\n```python\nprint(1)\n```\n\n```javascript\nconsole.log(2);\n```\n")

	regions, err := FindRegions(reg, host, "javascript", src)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Contains(t, regions[0].Body, "console.log(2);")
}

func TestExtractAndMatch_RemapsCoordinatesIntoOuterBuffer(t *testing.T) {
	reg := lang.NewRegistry()
	host, err := reg.LanguageForName("html")
	require.NoError(t, err)

	src := []byte("<body>\n<script>\nfoo();\nconsole.log(42);\n</script>\n</body>")

	results, err := ExtractAndMatch(reg, host, "javascript", src, func(embedded *lang.Language, body []byte) ([]*matcher.Match, error) {
		return jsMatches(t, embedded, body, "console.log($X)")
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.Len(t, results[0].Matches, 1)

	m := results[0].Matches[0]
	assert.Equal(t, "42", m.Vars["X"].Text)
	assert.Equal(t, string(src[m.StartByte:m.EndByte]), m.Text)
	assert.Equal(t, 4, m.StartLine)
}

func TestExtractAndMatch_PerRegionFailureIsolatesOthers(t *testing.T) {
	reg := lang.NewRegistry()
	host, err := reg.LanguageForName("html")
	require.NoError(t, err)

	src := []byte("<script>\nconsole.log(1);\n</script>\n<script>\nconsole.log(2);\n</script>\n")

	first := true
	results, err := ExtractAndMatch(reg, host, "javascript", src, func(embedded *lang.Language, body []byte) ([]*matcher.Match, error) {
		if first {
			first = false
			return nil, assertErr
		}
		return jsMatches(t, embedded, body, "console.log($X)")
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Error(t, results[0].Err)
	require.NoError(t, results[1].Err)
	require.Len(t, results[1].Matches, 1)
}

var assertErr = &regionFailure{}

type regionFailure struct{}

func (e *regionFailure) Error() string { return "simulated region failure" }

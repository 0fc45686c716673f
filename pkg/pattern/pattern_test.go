package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/sgrep/pkg/lang"
)

func goLang(t *testing.T) *lang.Language {
	t.Helper()
	reg := lang.NewRegistry()
	l, err := reg.LanguageForName("go")
	require.NoError(t, err)
	return l
}

func TestCompile_SingleMetavar(t *testing.T) {
	p, err := Compile(goLang(t), "fmt.Println($ARG)", CompileOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ARG"}, p.MetaNames)
}

func TestCompile_MultiMetavar(t *testing.T) {
	p, err := Compile(goLang(t), "fmt.Println($$$ARGS)", CompileOptions{})
	require.NoError(t, err)
	assert.Contains(t, p.MetaNames, "ARGS")
}

func TestCompile_AnonymousMetavarNotCollected(t *testing.T) {
	p, err := Compile(goLang(t), "fmt.Println($_)", CompileOptions{})
	require.NoError(t, err)
	assert.Empty(t, p.MetaNames)
}

func TestCompile_ContextRequiresPatternHole(t *testing.T) {
	_, err := Compile(goLang(t), "x", CompileOptions{Context: "func f() { }"})
	require.Error(t, err)
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
}

func TestCompile_SelectorNotFound(t *testing.T) {
	_, err := Compile(goLang(t), "1", CompileOptions{Selector: "nonexistent_kind"})
	require.Error(t, err)
	var selErr *SelectorError
	require.ErrorAs(t, err, &selErr)
}

func TestScanMetavars(t *testing.T) {
	tokens := ScanMetavars("foo($A, $$$B, $_)")
	require.Len(t, tokens, 3)
	assert.Equal(t, "A", tokens[0].Name)
	assert.False(t, tokens[0].Multi)
	assert.Equal(t, "B", tokens[1].Name)
	assert.True(t, tokens[1].Multi)
	assert.True(t, tokens[2].Anonymous)
}

func TestCache_CompileCachedReusesEntry(t *testing.T) {
	c := NewCache(0)
	l := goLang(t)

	p1, err := c.CompileCached(l, "fmt.Println($ARG)", CompileOptions{})
	require.NoError(t, err)
	p2, err := c.CompileCached(l, "fmt.Println($ARG)", CompileOptions{})
	require.NoError(t, err)

	assert.Same(t, p1, p2)
	assert.Equal(t, 1, c.Len())
}

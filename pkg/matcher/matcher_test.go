package matcher

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/sgrep/pkg/lang"
	"github.com/kraklabs/sgrep/pkg/pattern"
)

func parseGo(t *testing.T, src string) (*lang.Language, *sitter.Node, []byte) {
	t.Helper()
	reg := lang.NewRegistry()
	l, err := reg.LanguageForName("go")
	require.NoError(t, err)

	parser := sitter.NewParser()
	parser.SetLanguage(l.Grammar)
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	require.NoError(t, err)
	return l, tree.RootNode(), []byte(src)
}

func TestFindAll_SingleMetavarMatch(t *testing.T) {
	l, root, source := parseGo(t, `package p

func f() {
	fmt.Println("hello")
}
`)
	p, err := pattern.Compile(l, `fmt.Println($ARG)`, pattern.CompileOptions{})
	require.NoError(t, err)

	matches := FindAll(p, root, source)
	require.Len(t, matches, 1)
	assert.Equal(t, `"hello"`, matches[0].Vars["ARG"].Text)
}

func TestFindAll_NonOverlapping(t *testing.T) {
	l, root, source := parseGo(t, `package p

func f() {
	fmt.Println(fmt.Println("nested"))
}
`)
	p, err := pattern.Compile(l, `fmt.Println($ARG)`, pattern.CompileOptions{})
	require.NoError(t, err)

	matches := FindAll(p, root, source)
	require.Len(t, matches, 1, "outer match should win and suppress the nested candidate")
}

func TestFindAll_MultiMetavarPreservesWhitespace(t *testing.T) {
	l, root, source := parseGo(t, `package p

func f() {
	fmt.Println(1,   2,3)
}
`)
	p, err := pattern.Compile(l, `fmt.Println($$$ARGS)`, pattern.CompileOptions{})
	require.NoError(t, err)

	matches := FindAll(p, root, source)
	require.Len(t, matches, 1)
	assert.Equal(t, "1,   2,3", matches[0].Vars["ARGS"].Text)
	assert.Equal(t, []string{"1", "2", "3"}, matches[0].Vars["ARGS"].Seq)
}

func TestFindAll_RepeatedMetavarMustBindEqually(t *testing.T) {
	l, root, source := parseGo(t, `package p

func f() {
	x = a + b
	y = a + a
}
`)
	p, err := pattern.Compile(l, `$X + $X`, pattern.CompileOptions{})
	require.NoError(t, err)

	matches := FindAll(p, root, source)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].Vars["X"].Text)
}

func TestFindAll_AnonymousWildcardNoConstraint(t *testing.T) {
	l, root, source := parseGo(t, `package p

func f() {
	x = a + b
}
`)
	p, err := pattern.Compile(l, `$_ + $_`, pattern.CompileOptions{})
	require.NoError(t, err)

	matches := FindAll(p, root, source)
	require.Len(t, matches, 1)
	assert.NotContains(t, matches[0].Vars, "_")
}

func TestFindAll_NoMatch(t *testing.T) {
	l, root, source := parseGo(t, `package p

func f() {
	fmt.Println("hi")
}
`)
	p, err := pattern.Compile(l, `fmt.Printf($ARG)`, pattern.CompileOptions{})
	require.NoError(t, err)

	assert.Empty(t, FindAll(p, root, source))
}

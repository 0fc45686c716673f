package rule

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kraklabs/sgrep/pkg/lang"
	"github.com/kraklabs/sgrep/pkg/pattern"
)

func parseJS(t *testing.T, src string) (*lang.Language, *sitter.Node, []byte) {
	t.Helper()
	reg := lang.NewRegistry()
	l, err := reg.LanguageForName("javascript")
	require.NoError(t, err)

	parser := sitter.NewParser()
	parser.SetLanguage(l.Grammar)
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	require.NoError(t, err)
	return l, tree.RootNode(), []byte(src)
}

func TestEvaluate_SimplePattern(t *testing.T) {
	l, root, source := parseJS(t, `function greet() { console.log("Hello"); }`)
	r := decodeRule(t, `pattern: console.log($VAR)`)

	matches, err := Evaluate(r, &EvalContext{Lang: l, Cache: pattern.NewCache(0)}, root, source)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, `"Hello"`, matches[0].Vars["VAR"].Text)
}

func TestEvaluate_RelationalScenario(t *testing.T) {
	src := `
class C {
	debug() {
		console.log("x");
		this.p();
	}
}
class D {
	calculate() {
		console.log("y");
		return 1;
	}
}
function standalone() {
	console.log("z");
}
`
	l, root, source := parseJS(t, src)

	var r Rule
	require.NoError(t, yaml.Unmarshal([]byte(`
all:
  - kind: method_definition
    inside:
      kind: class_declaration
  - has:
      pattern: console.log($_)
  - not:
      has:
        kind: return_statement
`), &r))

	matches, err := Evaluate(&r, &EvalContext{Lang: l, Cache: pattern.NewCache(0)}, root, source)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0].Text, "debug")
}

func TestEvaluate_Any_UnionDedup(t *testing.T) {
	l, root, source := parseJS(t, `console.log(1); console.warn(2);`)

	var r Rule
	require.NoError(t, yaml.Unmarshal([]byte(`
any:
  - pattern: console.log($X)
  - pattern: console.warn($X)
`), &r))

	matches, err := Evaluate(&r, &EvalContext{Lang: l, Cache: pattern.NewCache(0)}, root, source)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestEvaluate_Not_ExcludesMatches(t *testing.T) {
	l, root, source := parseJS(t, `const a = 1;`)

	var r Rule
	require.NoError(t, yaml.Unmarshal([]byte(`
not:
  kind: number
`), &r))

	matches, err := Evaluate(&r, &EvalContext{Lang: l, Cache: pattern.NewCache(0)}, root, source)
	require.NoError(t, err)
	for _, m := range matches {
		assert.NotEqual(t, "1", m.Text)
	}
}

func TestEvaluate_MatchesResolvesFromCatalog(t *testing.T) {
	l, root, source := parseJS(t, `console.log(1);`)

	cat := NewCatalog()
	base := &Rule{Kind: KindPattern, PatternText: "console.log($X)"}
	cat.entries = map[string]*Entry{"base-rule": {File: &RuleFile{ID: "base-rule", Language: "javascript", Rule: base}}}
	cat.order = []string{"base-rule"}

	ref := &Rule{Kind: KindMatches, RefID: "base-rule"}
	matches, err := Evaluate(ref, &EvalContext{Lang: l, Cache: pattern.NewCache(0), Catalog: cat}, root, source)
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestCatalog_DuplicateIdFirstSeenWins(t *testing.T) {
	cat := NewCatalog()
	first := &RuleFile{ID: "r1", Language: "go", Rule: &Rule{Kind: KindNodeKind, NodeKind: "x"}, Path: "a.yaml"}
	second := &RuleFile{ID: "r1", Language: "go", Rule: &Rule{Kind: KindNodeKind, NodeKind: "y"}, Path: "b.yaml"}
	cat.add(first)
	cat.add(second)

	got, err := cat.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, "a.yaml", got.Path)

	diags := cat.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, []string{"b.yaml"}, diags[0].SuppressedPaths)
}

func TestCatalog_DetectCycles(t *testing.T) {
	cat := NewCatalog()
	cat.entries = map[string]*Entry{
		"a": {File: &RuleFile{ID: "a", Rule: &Rule{Kind: KindMatches, RefID: "b"}}},
		"b": {File: &RuleFile{ID: "b", Rule: &Rule{Kind: KindMatches, RefID: "a"}}},
	}
	cat.order = []string{"a", "b"}

	err := cat.DetectCycles()
	require.Error(t, err)
	var cerr *CycleError
	require.ErrorAs(t, err, &cerr)
}

package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func decodeRule(t *testing.T, doc string) *Rule {
	t.Helper()
	var r Rule
	require.NoError(t, yaml.Unmarshal([]byte(doc), &r))
	return &r
}

func TestUnmarshal_AtomicPatternScalar(t *testing.T) {
	r := decodeRule(t, `pattern: console.log($VAR)`)
	assert.Equal(t, KindPattern, r.Kind)
	assert.Equal(t, "console.log($VAR)", r.PatternText)
}

func TestUnmarshal_AtomicPatternObject(t *testing.T) {
	r := decodeRule(t, `
pattern:
  pattern: "$X"
  context: "func f() { $PATTERN }"
  selector: identifier
  strictness: ast
`)
	assert.Equal(t, KindPattern, r.Kind)
	assert.Equal(t, "$X", r.PatternText)
	assert.Equal(t, "func f() { $PATTERN }", r.Context)
	assert.Equal(t, "identifier", r.Selector)
}

func TestUnmarshal_AtomicKind(t *testing.T) {
	r := decodeRule(t, `kind: method_definition`)
	assert.Equal(t, KindNodeKind, r.Kind)
	assert.Equal(t, "method_definition", r.NodeKind)
}

func TestUnmarshal_Logical(t *testing.T) {
	r := decodeRule(t, `
all:
  - kind: method_definition
  - not:
      regex: "TODO"
`)
	require.Equal(t, KindAll, r.Kind)
	require.Len(t, r.Children, 2)
	assert.Equal(t, KindNodeKind, r.Children[0].Kind)
	assert.Equal(t, KindNot, r.Children[1].Kind)
	assert.Equal(t, KindRegex, r.Children[1].Inner.Kind)
}

func TestUnmarshal_RelationalWithAnchor(t *testing.T) {
	r := decodeRule(t, `
kind: method_definition
inside:
  kind: class_declaration
`)
	require.Equal(t, KindInside, r.Kind)
	require.NotNil(t, r.Self)
	assert.Equal(t, KindNodeKind, r.Self.Kind)
	assert.Equal(t, "method_definition", r.Self.NodeKind)
	require.NotNil(t, r.Other)
	assert.Equal(t, "class_declaration", r.Other.NodeKind)
}

func TestUnmarshal_BareRelational(t *testing.T) {
	r := decodeRule(t, `
has:
  pattern: console.log($_)
`)
	require.Equal(t, KindHas, r.Kind)
	assert.Nil(t, r.Self)
	require.NotNil(t, r.Other)
	assert.Equal(t, KindPattern, r.Other.Kind)
}

func TestUnmarshal_UnknownFieldRejected(t *testing.T) {
	var r Rule
	err := yaml.Unmarshal([]byte(`pattern: foo
bogus: true
`), &r)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUnmarshal_AmbiguousVariantRejected(t *testing.T) {
	var r Rule
	err := yaml.Unmarshal([]byte(`pattern: foo
kind: bar
`), &r)
	require.Error(t, err)
}

func TestUnmarshal_InvalidRegexRejected(t *testing.T) {
	var r Rule
	err := yaml.Unmarshal([]byte(`regex: "[unterminated"`), &r)
	require.Error(t, err)
}

package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAST_ReturnsDumpAndSortedNodeKinds(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)

	result, err := s.GenerateAST("javascript", `console.log(1);`)
	require.NoError(t, err)

	require.NotEmpty(t, result.Dump)
	assert.True(t, strings.HasPrefix(result.Dump, "("))
	require.NotEmpty(t, result.NodeKinds)
	for i := 1; i < len(result.NodeKinds); i++ {
		assert.LessOrEqual(t, result.NodeKinds[i-1], result.NodeKinds[i])
	}
	assert.Contains(t, result.NodeKinds, "call_expression")
}

func TestGenerateAST_UnknownLanguage(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)

	_, err = s.GenerateAST("cobol", "x")
	require.Error(t, err)
}

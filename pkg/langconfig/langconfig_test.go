package langconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRestTrailingKind(t *testing.T) {
	assert.Equal(t, "base_field_initializer", RestTrailingKind("rust"))
	assert.Equal(t, "", RestTrailingKind("go"))
	assert.Equal(t, "", RestTrailingKind("unknown"))
}

func TestIsTrivia(t *testing.T) {
	assert.True(t, IsTrivia("go", "comment"))
	assert.False(t, IsTrivia("go", "identifier"))
	assert.True(t, IsTrivia("rust", "line_comment"))
	assert.True(t, IsTrivia("rust", "block_comment"))
	assert.True(t, IsTrivia("unknown", "comment"))
}

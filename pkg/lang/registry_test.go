package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageForName_KnownAndUnknown(t *testing.T) {
	r := NewRegistry()

	l, err := r.LanguageForName("Go")
	require.NoError(t, err)
	assert.Equal(t, "go", l.Name)
	assert.NotNil(t, l.Grammar)

	_, err = r.LanguageForName("cobol")
	require.Error(t, err)
	var uerr *ErrUnknownLanguage
	require.ErrorAs(t, err, &uerr)
}

func TestLanguageForPath(t *testing.T) {
	r := NewRegistry()

	l, ok := r.LanguageForPath("main.go")
	require.True(t, ok)
	assert.Equal(t, "go", l.Name)

	l, ok = r.LanguageForPath("component.tsx")
	require.True(t, ok)
	assert.Equal(t, "typescript", l.Name)

	_, ok = r.LanguageForPath("README")
	assert.False(t, ok)

	_, ok = r.LanguageForPath("data.csv")
	assert.False(t, ok)
}

func TestEmbeddedHosts(t *testing.T) {
	r := NewRegistry()

	html, err := r.LanguageForName("html")
	require.NoError(t, err)
	hosts := r.EmbeddedHosts(html)
	require.NotEmpty(t, hosts)
	assert.Equal(t, "javascript", hosts[0].EmbeddedLang)

	goLang, err := r.LanguageForName("go")
	require.NoError(t, err)
	assert.Empty(t, r.EmbeddedHosts(goLang))
}

func TestNames_IsSorted(t *testing.T) {
	r := NewRegistry()
	names := r.Names()
	for i := 1; i < len(names); i++ {
		assert.True(t, names[i-1] < names[i])
	}
	assert.Contains(t, names, "go")
	assert.Contains(t, names, "markdown")
}

func TestRegister_Overrides(t *testing.T) {
	r := NewRegistry()
	r.Register(&Language{Name: "go", Extensions: []string{".go2"}})

	l, err := r.LanguageForName("go")
	require.NoError(t, err)
	assert.Nil(t, l.Grammar, "re-registering replaces the prior entry wholesale")

	l, ok := r.LanguageForPath("x.go2")
	require.True(t, ok)
	assert.Equal(t, "go", l.Name)
}

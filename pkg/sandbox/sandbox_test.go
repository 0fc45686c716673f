package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestResolve_SimpleGlob(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"))
	writeFile(t, filepath.Join(root, "b.go"))
	writeFile(t, filepath.Join(root, "c.txt"))

	sb, err := New([]string{root})
	require.NoError(t, err)

	matches, err := sb.Resolve("*.go")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.go"),
		filepath.Join(root, "b.go"),
	}, matches)
}

func TestResolve_DoubleStarRecursesSubdirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pkg", "sub", "foo.go"))
	writeFile(t, filepath.Join(root, "top.go"))

	sb, err := New([]string{root})
	require.NoError(t, err)

	matches, err := sb.Resolve("**/*.go")
	require.NoError(t, err)
	assert.Contains(t, matches, filepath.Join(root, "pkg", "sub", "foo.go"))
}

func TestResolve_RejectsTraversalSegment(t *testing.T) {
	root := t.TempDir()
	sb, err := New([]string{root})
	require.NoError(t, err)

	_, err = sb.Resolve("../escape/*.go")
	require.Error(t, err)
	var verr *ViolationError
	require.ErrorAs(t, err, &verr)
}

func TestResolve_RejectsAbsolutePathOutsideRoots(t *testing.T) {
	root := t.TempDir()
	sb, err := New([]string{root})
	require.NoError(t, err)

	_, err = sb.Resolve("/etc/*.conf")
	require.Error(t, err)
}

func TestResolve_AbsolutePathWithinRootIsPermitted(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"))

	sb, err := New([]string{root})
	require.NoError(t, err)

	matches, err := sb.Resolve(filepath.Join(root, "*.go"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.go")}, matches)
}

func TestResolve_MalformedGlob(t *testing.T) {
	root := t.TempDir()
	sb, err := New([]string{root})
	require.NoError(t, err)

	_, err = sb.Resolve("[unterminated")
	require.Error(t, err)
}

func TestNew_RequiresAtLeastOneRoot(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestResolve_MultipleRootsAggregateSorted(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeFile(t, filepath.Join(rootA, "z.go"))
	writeFile(t, filepath.Join(rootB, "a.go"))

	sb, err := New([]string{rootA, rootB})
	require.NoError(t, err)

	matches, err := sb.Resolve("*.go")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.True(t, matches[0] < matches[1], "results should be lexicographically sorted")
}

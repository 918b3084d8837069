package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestScanFindsDescriptorsAndSources(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"gamekit.cppbind":    "link(gamekit.h) gamekit",
		"gamekit.h":          "",
		"gamekit.cpp":        "",
		"sub/math.cppbind":   "link(math.hpp) math",
		"sub/math.hpp":       "",
		"README.md":          "",
		"notes.txt":          "",
	})

	res, err := Scan(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"gamekit.cppbind", filepath.Join("sub", "math.cppbind")}, res.Descriptors)
	assert.Equal(t, []string{"gamekit.cpp", "gamekit.h", filepath.Join("sub", "math.hpp")}, res.Sources)
}

func TestScanSkipsHiddenAndBuildDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"keep.cppbind":           "x",
		".hidden/skip.cppbind":   "x",
		".hiddenfile.cppbind":    "x",
		"build/out.cppbind":      "x",
		"node_modules/x.cppbind": "x",
	})

	res, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.cppbind"}, res.Descriptors)
}

func TestScanHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":            "generated/\nscratch.cppbind\n",
		"keep.cppbind":          "x",
		"scratch.cppbind":       "x",
		"generated/gen.cppbind": "x",
	})

	res, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.cppbind"}, res.Descriptors)
}

func TestDescriptorPaths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.cppbind": "x"})

	res, err := Scan(root)
	require.NoError(t, err)
	paths := res.DescriptorPaths(root)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(root, "a.cppbind"), paths[0])
}

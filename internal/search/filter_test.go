package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestIsBinaryFile(t *testing.T) {
	dir := t.TempDir()

	text := writeFile(t, filepath.Join(dir, "a.txt"), []byte("plain text\n"))
	bin := writeFile(t, filepath.Join(dir, "b.bin"), []byte{'h', 'i', 0, 'x'})

	// A null byte past the first probe chunk still counts
	late := make([]byte, probeChunkSize+10)
	for i := range late {
		late[i] = 'a'
	}
	late[probeChunkSize+5] = 0
	lateBin := writeFile(t, filepath.Join(dir, "late.dat"), late)

	assert.False(t, IsBinaryFile(text))
	assert.True(t, IsBinaryFile(bin))
	assert.True(t, IsBinaryFile(lateBin))
	assert.False(t, IsBinaryFile(filepath.Join(dir, "missing")), "probe failures never skip")
}

func TestIsTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "f.txt"), []byte("0123456789"))

	assert.False(t, IsTooLarge(path, 10))
	assert.True(t, IsTooLarge(path, 9))
	assert.False(t, IsTooLarge(filepath.Join(dir, "missing"), 0))
}

func TestShouldSkipFile(t *testing.T) {
	dir := t.TempDir()
	text := writeFile(t, filepath.Join(dir, "ok.txt"), []byte("hello"))
	bin := writeFile(t, filepath.Join(dir, "no.bin"), []byte("hel\x00lo"))

	assert.False(t, ShouldSkipFile(text, 1024))
	assert.True(t, ShouldSkipFile(bin, 1024))
	assert.True(t, ShouldSkipFile(text, 2))
}

func TestShouldPrioritizeDirectory(t *testing.T) {
	priority := []string{"src", "lib", "app", "components", "pages"}

	assert.True(t, ShouldPrioritizeDirectory("/repo/src", priority))
	assert.True(t, ShouldPrioritizeDirectory("/repo/web/components", priority))
	assert.False(t, ShouldPrioritizeDirectory("/repo/source", priority))
	assert.False(t, ShouldPrioritizeDirectory("/repo/src/util", priority))
	assert.False(t, ShouldPrioritizeDirectory("/repo/src", nil))
}

func TestPathFilter(t *testing.T) {
	root := filepath.FromSlash("/repo")
	f := NewPathFilter(root, []string{"**/node_modules/**", "build", "**/*.min.js", "[broken"})

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"/repo", true, true},
		{"/repo/node_modules", true, false},
		{"/repo/web/node_modules", true, false},
		{"/repo/web/node_modules/pkg", true, false},
		{"/repo/build", true, false},
		{"/repo/web/build", true, true},
		{"/repo/src", true, true},
		{"/repo/app.min.js", false, false},
		{"/repo/app.js", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			path := filepath.FromSlash(tt.path)
			if tt.isDir {
				assert.Equal(t, tt.want, f.ShouldSearchDirectory(path))
			} else {
				assert.Equal(t, tt.want, f.ShouldSearchFile(path))
			}
		})
	}
}

func TestPathFilter_NoPatterns(t *testing.T) {
	var nilFilter *PathFilter
	assert.True(t, nilFilter.ShouldSearchDirectory("/anything"))
	assert.True(t, NewPathFilter("/repo", nil).ShouldSearchDirectory("/repo/.git"))
}

func TestPathFilter_Include(t *testing.T) {
	root := filepath.FromSlash("/repo")
	f := NewPathFilter(root, []string{"**/vendor/**"}).WithInclude([]string{"**/*.go", "docs/*.md", "[broken"})

	assert.True(t, f.ShouldSearchFile(filepath.FromSlash("/repo/main.go")))
	assert.True(t, f.ShouldSearchFile(filepath.FromSlash("/repo/internal/x/y.go")))
	assert.True(t, f.ShouldSearchFile(filepath.FromSlash("/repo/docs/readme.md")))
	assert.False(t, f.ShouldSearchFile(filepath.FromSlash("/repo/readme.md")))
	assert.False(t, f.ShouldSearchFile(filepath.FromSlash("/repo/vendor/lib/z.go")), "exclude wins over include")

	assert.True(t, f.ShouldSearchDirectory(filepath.FromSlash("/repo/internal")), "include globs never prune directories")
	assert.False(t, f.ShouldSearchDirectory(filepath.FromSlash("/repo/vendor")))

	assert.True(t, NewPathFilter(root, nil).WithInclude(nil).ShouldSearchFile(filepath.FromSlash("/repo/any.bin")))
}

package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/scanocr/internal/common"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o600))
}

func TestListPDFs(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.pdf"))
	touch(t, filepath.Join(root, "A.PDF"))
	touch(t, filepath.Join(root, "c.Pdf"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "b-Page1.txt"))
	touch(t, filepath.Join(root, ".hidden.pdf"))
	touch(t, filepath.Join(root, "sub", "deep.pdf"))
	touch(t, filepath.Join(root, ".git", "inside.pdf"))
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir.pdf"), 0o755))

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "top level only",
			opts: Options{},
			want: []string{".hidden.pdf", "A.PDF", "b.pdf", "c.Pdf"},
		},
		{
			name: "skip hidden",
			opts: Options{SkipHidden: true},
			want: []string{"A.PDF", "b.pdf", "c.Pdf"},
		},
		{
			name: "recursive",
			opts: Options{Recursive: true, SkipHidden: true},
			want: []string{"A.PDF", "b.pdf", "c.Pdf", filepath.Join("sub", "deep.pdf")},
		},
		{
			name: "recursive with hidden",
			opts: Options{Recursive: true},
			want: []string{".git/inside.pdf", ".hidden.pdf", "A.PDF", "b.pdf", "c.Pdf", "sub/deep.pdf"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stats, err := ListPDFs(root, tt.opts)
			require.NoError(t, err)

			var rel []string
			for _, p := range got {
				r, err := filepath.Rel(root, p)
				require.NoError(t, err)
				rel = append(rel, filepath.ToSlash(r))
			}
			var want []string
			for _, w := range tt.want {
				want = append(want, filepath.ToSlash(w))
			}
			assert.Equal(t, want, rel)
			assert.EqualValues(t, len(tt.want), stats.Matched)
		})
	}
}

func TestListPDFsEmptyDir(t *testing.T) {
	got, stats, err := ListPDFs(t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, stats.Matched)
}

func TestListPDFsErrors(t *testing.T) {
	_, _, err := ListPDFs("  ", Options{})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, _, err = ListPDFs(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.True(t, errors.Is(err, os.ErrNotExist))

	file := filepath.Join(t.TempDir(), "x.pdf")
	touch(t, file)
	_, _, err = ListPDFs(file, Options{})
	assert.True(t, errors.Is(err, errNotDir))
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/a/.b"))
	assert.False(t, IsHidden("/a/b"))
	assert.False(t, IsHidden("."))
	assert.False(t, IsHidden(".."))
}

package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/scanocr/internal/common"
)

func TestFileWriter(t *testing.T) {
	t.Run("defaults to the document directory", func(t *testing.T) {
		dir := t.TempDir()
		w := NewFileWriter("", nil)
		d := Document{Name: "invoice", Path: filepath.Join(dir, "invoice.pdf")}

		path, err := w.WritePage(context.Background(), d, 2, "hello")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "invoice-Page2.txt"), path)

		body, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello\n", string(body))
	})

	t.Run("creates the output directory and overwrites", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "nested", "out")
		w := NewFileWriter(out, nil)
		d := Document{Name: "a", Path: "/elsewhere/a.pdf"}

		_, err := w.WritePage(context.Background(), d, 1, "first\n")
		require.NoError(t, err)
		path, err := w.WritePage(context.Background(), d, 1, "")
		require.NoError(t, err)

		body, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "\n", string(body))
	})

	t.Run("writes after the context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		w := NewFileWriter(t.TempDir(), nil)

		path, err := w.WritePage(ctx, Document{Name: "late"}, 1, "done")
		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("unwritable target is a persist error", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0o600))

		w := NewFileWriter(filepath.Join(blocker, "sub"), nil)
		_, err := w.WritePage(context.Background(), Document{Name: "x"}, 1, "t")
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrPersist))
	})
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Report.Final.PDF")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	d, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "Report.Final", d.Name)
	assert.Equal(t, path, d.Path)
	assert.Equal(t, []byte("%PDF-1.4"), d.Data)

	_, err = LoadDocument(filepath.Join(dir, "missing.pdf"))
	assert.True(t, errors.Is(err, common.ErrDecode))
}

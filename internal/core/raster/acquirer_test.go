package raster

import (
	"context"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/testutil"
)

func TestPageCount(t *testing.T) {
	for _, n := range []int{0, 1, 3, 12} {
		got, err := PageCount(testutil.PDF(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	got, err := PageCount(testutil.TextPDF("HELLO WORLD", "(second line)"))
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	_, err = PageCount(nil)
	assert.Error(t, err)

	_, err = PageCount(testutil.CorruptPDF())
	assert.Error(t, err)

	_, err = PageCount([]byte("plain text, not a pdf"))
	assert.Error(t, err)
}

func TestAcquirerDecode(t *testing.T) {
	ctx := context.Background()

	t.Run("pages come back in increasing order", func(t *testing.T) {
		stub := &testutil.Pdftoppm{Pages: 12}
		a := NewAcquirer(Config{DPI: 150}, nil, WithRunner(stub))

		imgs, err := a.Decode(ctx, testutil.PDF(12))
		require.NoError(t, err)
		require.Len(t, imgs, 12)
		for i, img := range imgs {
			assert.Equal(t, i+1, img.Page)
			decoded, err := img.Decode()
			require.NoError(t, err)
			// the stub encodes the page number in the width
			assert.Equal(t, 4+img.Page, decoded.Bounds().Dx())
		}

		calls := stub.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "pdftoppm", calls[0][0])
		assert.Equal(t, []string{"-r", "150", "-png"}, calls[0][1:4])
	})

	t.Run("zero-page pdf is an empty, non-error result", func(t *testing.T) {
		stub := &testutil.Pdftoppm{}
		a := NewAcquirer(Config{}, nil, WithRunner(stub))

		imgs, err := a.Decode(ctx, testutil.PDF(0))
		require.NoError(t, err)
		assert.Empty(t, imgs)
		assert.Empty(t, stub.Calls(), "rasterizer is not invoked")
	})

	t.Run("corrupt buffer is a DecodeError", func(t *testing.T) {
		stub := &testutil.Pdftoppm{Pages: 1}
		a := NewAcquirer(Config{}, nil, WithRunner(stub))

		imgs, err := a.Decode(ctx, testutil.CorruptPDF())
		assert.ErrorIs(t, err, common.ErrDecode)
		assert.Nil(t, imgs)
		assert.Empty(t, stub.Calls())
	})

	t.Run("rasterizer failure is a DecodeError", func(t *testing.T) {
		a := NewAcquirer(Config{}, nil, WithRunner(&testutil.Pdftoppm{Pages: 2, Fail: true}))

		_, err := a.Decode(ctx, testutil.PDF(2))
		assert.ErrorIs(t, err, common.ErrDecode)
		assert.Contains(t, err.Error(), "xref")
	})

	t.Run("missing rendered page is a DecodeError", func(t *testing.T) {
		a := NewAcquirer(Config{}, nil, WithRunner(&testutil.Pdftoppm{Pages: 3, Skip: map[int]bool{2: true}}))

		_, err := a.Decode(ctx, testutil.PDF(3))
		assert.ErrorIs(t, err, common.ErrDecode)
	})

	t.Run("max pages caps rendering", func(t *testing.T) {
		stub := &testutil.Pdftoppm{Pages: 5}
		a := NewAcquirer(Config{MaxPages: 2}, nil, WithRunner(stub))

		imgs, err := a.Decode(ctx, testutil.PDF(5))
		require.NoError(t, err)
		assert.Len(t, imgs, 2)
		assert.Contains(t, stub.Calls()[0], "-l")
	})

	t.Run("release hook fires once per image", func(t *testing.T) {
		released := map[int]int{}
		a := NewAcquirer(Config{}, nil,
			WithRunner(&testutil.Pdftoppm{Pages: 3}),
			WithReleaseHook(func(page int) { released[page]++ }),
		)

		imgs, err := a.Decode(ctx, testutil.PDF(3))
		require.NoError(t, err)
		ReleaseAll(imgs)
		ReleaseAll(imgs)
		assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1}, released)
	})
}

func TestImageRelease(t *testing.T) {
	calls := 0
	img := NewImage(1, testutil.PNG(testutil.Solid(2, 2, color.White)), func(int) { calls++ })

	assert.False(t, img.Released())
	assert.NotZero(t, img.Size())

	img.Release()
	img.Release()

	assert.True(t, img.Released())
	assert.Equal(t, 1, calls)
	assert.Nil(t, img.Bytes())
	_, err := img.Decode()
	assert.ErrorIs(t, err, ErrReleased)
}

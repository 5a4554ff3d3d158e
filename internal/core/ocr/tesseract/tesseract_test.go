//go:build ocr

package tesseract

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/scanocr/constants"
	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/core/ocr"
	"github.com/joseph-ayodele/scanocr/internal/testutil"
)

func skipWithoutTesseract(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed")
	}
}

func TestRecognizeKnownText(t *testing.T) {
	skipWithoutTesseract(t)
	f, err := NewFactory(nil)
	require.NoError(t, err)

	png := testutil.PNG(testutil.TextImage("HELLO WORLD", 4))
	res, err := ocr.Recognize(context.Background(), f, ocr.EngineConfig{
		Language:    "eng",
		Mode:        constants.EngineModeDefault,
		PageSegMode: 7,
	}, png)
	require.NoError(t, err)

	assert.Equal(t, []string{"HELLO", "WORLD"}, strings.Fields(strings.ToUpper(ocr.NormalizeText(res.Text))))
	assert.GreaterOrEqual(t, res.MeanConfidence, 0.80)
}

func TestRecognizeCorruptImage(t *testing.T) {
	skipWithoutTesseract(t)
	f, err := NewFactory(nil)
	require.NoError(t, err)

	_, err = ocr.Recognize(context.Background(), f, ocr.EngineConfig{Language: "eng"}, []byte("not an image"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrEngine))
}

func TestExpiredContext(t *testing.T) {
	skipWithoutTesseract(t)
	f, err := NewFactory(nil)
	require.NoError(t, err)

	eng, err := f.Open(ocr.EngineConfig{Language: "eng", PageSegMode: 3})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err = eng.Recognize(ctx, testutil.PNG(testutil.TextImage("TIMEOUT", 6)))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.NoError(t, eng.Close())
	assert.NoError(t, eng.Close())
}

//go:build !ocr

package tesseract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/core/ocr"
)

func TestNewFactoryNotEnabled(t *testing.T) {
	f, err := NewFactory(nil)
	assert.Nil(t, f)
	assert.True(t, errors.Is(err, ErrNotEnabled))
	assert.False(t, Enabled)
}

func TestStubOpenIsEngineError(t *testing.T) {
	var f *Factory
	_, err := f.Open(ocr.EngineConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrEngine))
	assert.True(t, errors.Is(err, ErrNotEnabled))
}

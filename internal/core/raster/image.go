// Package raster turns PDF documents into per-page PNG rasters and owns the
// lifecycle of those rasters.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"sync"
)

// ErrReleased is returned when a released image is used.
var ErrReleased = errors.New("raster image already released")

// Image is one rendered page held as an encoded PNG buffer. It is owned by a
// single pipeline step at a time and must be released exactly once.
type Image struct {
	// Page is the 1-based page number within its document.
	Page int

	mu        sync.Mutex
	data      []byte
	released  bool
	onRelease func(page int)
}

// NewImage wraps encoded raster data. onRelease, if set, fires on the first Release.
func NewImage(page int, data []byte, onRelease func(page int)) *Image {
	return &Image{Page: page, data: data, onRelease: onRelease}
}

// Bytes returns the encoded buffer, or nil once released. Callers must not modify it.
func (i *Image) Bytes() []byte {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.data
}

// Size is the encoded size in bytes.
func (i *Image) Size() int {
	return len(i.Bytes())
}

// Decode parses the buffer into pixels.
func (i *Image) Decode() (image.Image, error) {
	data := i.Bytes()
	if data == nil {
		return nil, ErrReleased
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode page %d: %w", i.Page, err)
	}
	return img, nil
}

// Release drops the buffer. Only the first call has any effect.
func (i *Image) Release() {
	i.mu.Lock()
	if i.released {
		i.mu.Unlock()
		return
	}
	i.released = true
	i.data = nil
	hook := i.onRelease
	i.mu.Unlock()

	if hook != nil {
		hook(i.Page)
	}
}

// Released reports whether Release has been called.
func (i *Image) Released() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.released
}

// ReleaseAll releases every image in imgs; already released images are skipped.
func ReleaseAll(imgs []*Image) {
	for _, img := range imgs {
		if img != nil {
			img.Release()
		}
	}
}

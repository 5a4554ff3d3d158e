package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PNG encodes img, panicking on failure (fixtures only).
func PNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Solid returns a w x h image filled with c.
func Solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// Gradient returns a w x h RGBA image whose brightness ramps left to right,
// with a dark square in the middle. Useful where uniform input would hide bugs.
func Gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(80 + (x*150)/max(w-1, 1))
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	for y := h / 3; y < 2*h/3; y++ {
		for x := w / 3; x < 2*w/3; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 10, B: 10, A: 255})
		}
	}
	return img
}

// TextImage renders text in black on white with the 7x13 bitmap face, then
// scales it up by an integer factor so the glyph strokes are thick enough
// for OCR.
func TextImage(text string, scale int) *image.Gray {
	if scale < 1 {
		scale = 1
	}
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil() + 20
	h := 13 + 20

	src := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(src, src.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  src,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(10, 10+face.Ascent),
	}
	d.DrawString(text)

	dst := image.NewGray(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h*scale; y++ {
		for x := 0; x < w*scale; x++ {
			dst.SetGray(x, y, src.GrayAt(x/scale, y/scale))
		}
	}
	return dst
}

package preprocess

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

// BT.709 luma weights.
const (
	lumaR = 0.2125
	lumaG = 0.7154
	lumaB = 0.0721
)

var errEmptyImage = errors.New("image has no pixels")

// Upscale resizes src by factor in both dimensions with bilinear interpolation.
func Upscale(src image.Image, factor int) (*image.RGBA, error) {
	b := src.Bounds()
	if b.Empty() {
		return nil, errEmptyImage
	}
	if factor < 1 {
		return nil, errors.New("upscale factor must be at least 1")
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst, nil
}

// Grayscale reduces src to single-channel BT.709 luminance.
func Grayscale(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	if rgba, ok := src.(*image.RGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			row := rgba.Pix[(y+b.Min.Y-rgba.Rect.Min.Y)*rgba.Stride+(b.Min.X-rgba.Rect.Min.X)*4:]
			for x := 0; x < b.Dx(); x++ {
				p := row[x*4 : x*4+3]
				dst.Pix[y*dst.Stride+x] = luma8(float64(p[0]), float64(p[1]), float64(p[2]))
			}
		}
		return dst
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			dst.Pix[y*dst.Stride+x] = luma8(float64(r>>8), float64(g>>8), float64(bl>>8))
		}
	}
	return dst
}

func luma8(r, g, b float64) uint8 {
	v := lumaR*r + lumaG*g + lumaB*b + 0.5
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// BradleyThreshold binarizes src with Bradley's local adaptive threshold: a
// pixel turns black when it is darker than the mean of its window by more
// than limit (0.15 = 15%). The window is window x window pixels, clipped at
// the borders.
func BradleyThreshold(src *image.Gray, window int, limit float64) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}
	if window < 3 {
		window = 3
	}
	radius := window / 2
	part := 1 - limit

	// integral image with a zero row and column in front
	iw := w + 1
	integral := make([]int64, iw*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for x := 0; x < w; x++ {
			rowSum += int64(row[x])
			integral[(y+1)*iw+x+1] = integral[y*iw+x+1] + rowSum
		}
	}

	for y := 0; y < h; y++ {
		y1, y2 := max(y-radius, 0), min(y+radius, h-1)
		for x := 0; x < w; x++ {
			x1, x2 := max(x-radius, 0), min(x+radius, w-1)
			count := int64((x2 - x1 + 1) * (y2 - y1 + 1))
			sum := integral[(y2+1)*iw+x2+1] - integral[y1*iw+x2+1] - integral[(y2+1)*iw+x1] + integral[y1*iw+x1]

			v := src.Pix[y*src.Stride+x]
			if float64(int64(v)*count) < float64(sum)*part {
				dst.Pix[y*dst.Stride+x] = 0
			} else {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

// ContrastStretch remaps the observed intensity range of src linearly onto
// [0, 255]. A flat image is returned as an unchanged copy.
func ContrastStretch(src *image.Gray) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	lo, hi := uint8(255), uint8(0)
	for y := 0; y < h; y++ {
		for _, v := range src.Pix[y*src.Stride : y*src.Stride+w] {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}

	var lut [256]uint8
	for i := range lut {
		switch {
		case hi <= lo:
			lut[i] = uint8(i)
		case uint8(i) <= lo:
			lut[i] = 0
		case uint8(i) >= hi:
			lut[i] = 255
		default:
			lut[i] = uint8((i - int(lo)) * 255 / (int(hi) - int(lo)))
		}
	}

	for y := 0; y < h; y++ {
		in := src.Pix[y*src.Stride : y*src.Stride+w]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x, v := range in {
			out[x] = lut[v]
		}
	}
	return dst
}

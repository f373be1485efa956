package tensor

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// FromImage converts img into a channel-last (H, W, 4) uint8 array of
// non-premultiplied RGBA values.
func FromImage(img image.Image) *Array {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	h, w := b.Dy(), b.Dx()
	out := Zeros(Uint8, h, w, 4)
	for y := 0; y < h; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		dst := out.data[y*w*4 : (y+1)*w*4]
		for i, v := range src {
			dst[i] = float64(v)
		}
	}
	return out
}

// FromGray converts img to luminance and returns a channel-last (H, W, 1)
// uint8 array.
func FromGray(img image.Image) *Array {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	h, w := b.Dy(), b.Dx()
	out := Zeros(Uint8, h, w, 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.data[y*w+x] = float64(gray.Pix[y*gray.Stride+x*4])
		}
	}
	return out
}

// ToImage converts a channel-last (H, W, C) array back to an image.
// C may be 1 (gray), 3 (RGB) or 4 (RGBA). Values are rounded and clamped
// to [0, 255].
func ToImage(a *Array) (*image.NRGBA, error) {
	if len(a.shape) != 3 {
		return nil, fmt.Errorf("%w: image conversion needs (H, W, C), got %v", ErrShape, a.shape)
	}
	h, w, c := a.shape[0], a.shape[1], a.shape[2]
	if c != 1 && c != 3 && c != 4 {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrShape, c)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := a.data[(y*w+x)*c : (y*w+x+1)*c]
			o := y*img.Stride + x*4
			switch c {
			case 1:
				v := toByte(px[0])
				img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = v, v, v, 255
			case 3:
				img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = toByte(px[0]), toByte(px[1]), toByte(px[2]), 255
			case 4:
				img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = toByte(px[0]), toByte(px[1]), toByte(px[2]), toByte(px[3])
			}
		}
	}
	return img, nil
}

func toByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

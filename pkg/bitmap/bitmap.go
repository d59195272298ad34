// Package bitmap converts raster images into the packed monochrome layouts
// thermal printers transfer: row-major raster data and vertical column
// bands. Black ink is a set bit; the origin is the top-left corner.
package bitmap

import (
	"errors"
	"image"
)

// ErrTooWide is returned when a bitmap is wider than the target it should
// be centered on. Silently cropping or skipping would print something the
// caller did not ask for, so the request fails instead.
var ErrTooWide = errors.New("bitmap wider than target width")

// Bitmap is a 1-bit-per-pixel image, packed 8 pixels per byte, MSB first,
// with rows padded on the right to a whole byte.
type Bitmap struct {
	width  int
	height int
	stride int
	data   []byte
}

// New returns an all-white bitmap of the given size.
func New(width, height int) *Bitmap {
	stride := (width + 7) / 8
	return &Bitmap{
		width:  width,
		height: height,
		stride: stride,
		data:   make([]byte, stride*height),
	}
}

// FromImage flattens an arbitrary image against a white background,
// converts it to grayscale and thresholds at 50%: anything darker than
// mid-gray becomes ink.
func FromImage(m image.Image) *Bitmap {
	bounds := m.Bounds()
	b := New(bounds.Dx(), bounds.Dy())
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			r, g, bl, a := m.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA is alpha-premultiplied, so compositing over white
			// is an addition of the uncovered remainder.
			r += 0xFFFF - a
			g += 0xFFFF - a
			bl += 0xFFFF - a
			luma := (299*r + 587*g + 114*bl) / 1000
			if luma < 0x8000 {
				b.Set(x, y, true)
			}
		}
	}
	return b
}

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int { return b.width }

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int { return b.height }

// WidthBytes returns the packed row length: ceil(width/8).
func (b *Bitmap) WidthBytes() int { return b.stride }

// At reports whether the pixel at (x, y) is ink. Out-of-range coordinates
// read as white, which is what the padding rules everywhere else expect.
func (b *Bitmap) At(x, y int) bool {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return false
	}
	return b.data[y*b.stride+x/8]&(0x80>>uint(x%8)) != 0
}

// Set writes one pixel.
func (b *Bitmap) Set(x, y int, ink bool) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return
	}
	mask := byte(0x80 >> uint(x%8))
	if ink {
		b.data[y*b.stride+x/8] |= mask
	} else {
		b.data[y*b.stride+x/8] &^= mask
	}
}

// ToRaster returns the raster-format payload: rows top to bottom, each
// padded to a whole byte with white pixels. The result is always exactly
// WidthBytes() * Height() bytes.
func (b *Bitmap) ToRaster() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// ToColumnFormat slices the bitmap into uniform vertical bands for the
// column image command: 24 pixels tall in high density, 8 in low. Each blob
// holds, per source column, the band's pixels packed top-down MSB first.
// The final band keeps the full declared height, padded with white; the
// printer feeds a fixed line height per band and a short band would shear
// the image.
func (b *Bitmap) ToColumnFormat(highDensity bool) [][]byte {
	lineHeight := 8
	if highDensity {
		lineHeight = 24
	}
	colBytes := lineHeight / 8
	bands := (b.height + lineHeight - 1) / lineHeight

	out := make([][]byte, 0, bands)
	for band := 0; band < bands; band++ {
		top := band * lineHeight
		blob := make([]byte, b.width*colBytes)
		for x := 0; x < b.width; x++ {
			for k := 0; k < colBytes; k++ {
				var v byte
				for j := 0; j < 8; j++ {
					if b.At(x, top+k*8+j) {
						v |= 0x80 >> uint(j)
					}
				}
				blob[x*colBytes+k] = v
			}
		}
		out = append(out, blob)
	}
	return out
}

// Split cuts the bitmap into horizontal fragments of at most maxHeight
// rows, top to bottom, each at full width. Concatenating the fragments
// reconstructs the original exactly.
func (b *Bitmap) Split(maxHeight int) []*Bitmap {
	if maxHeight >= b.height {
		return []*Bitmap{b}
	}
	passes := (b.height + maxHeight - 1) / maxHeight
	out := make([]*Bitmap, 0, passes)
	for n := 0; n < passes; n++ {
		top := n * maxHeight
		h := maxHeight
		if top+h > b.height {
			h = b.height - top
		}
		frag := &Bitmap{
			width:  b.width,
			height: h,
			stride: b.stride,
			data:   make([]byte, b.stride*h),
		}
		copy(frag.data, b.data[top*b.stride:(top+h)*b.stride])
		out = append(out, frag)
	}
	return out
}

// Center pads the bitmap on the left so it sits centered within maxWidth
// columns. A bitmap already at maxWidth is returned unchanged; one wider
// than maxWidth fails with ErrTooWide.
func (b *Bitmap) Center(maxWidth int) (*Bitmap, error) {
	if b.width > maxWidth {
		return nil, ErrTooWide
	}
	if b.width == maxWidth {
		return b, nil
	}
	offset := (maxWidth - b.width) / 2
	centered := New(maxWidth, b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.At(x, y) {
				centered.Set(x+offset, y, true)
			}
		}
	}
	return centered, nil
}

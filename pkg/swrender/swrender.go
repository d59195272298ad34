// Package swrender draws barcode and QR symbols on the host for printers
// that lack the native commands. The resulting images go through the
// ordinary image transfer pipeline.
package swrender

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/codabar"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/qr"
	"github.com/boombuler/barcode/twooffive"
)

// ErrUnknownShape is returned for symbol types this renderer cannot draw.
var ErrUnknownShape = errors.New("unknown shape type")

// Renderer draws the symbol types supported by the underlying barcode
// library. The zero value is ready to use.
type Renderer struct{}

// New returns a Renderer.
func New() *Renderer { return &Renderer{} }

// names uses the normalized spelling (alphanumerics, uppercase) the
// dispatcher compares against.
var names = []string{
	"EAN13", "EAN8", "UPCA", "CODE39", "CODE128", "ITF", "CODABAR", "NW7", "QR",
}

// Names lists the drawable symbol types.
func (r *Renderer) Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Render draws payload as the named symbol type. For one-dimensional
// types, moduleWidth is the width of a narrow bar in dots and height the
// bar height in dots. For QR, moduleWidth is the module size in dots and
// height the error correction level 0-3.
func (r *Renderer) Render(name, payload string, moduleWidth, height int) (image.Image, error) {
	if moduleWidth < 1 {
		moduleWidth = 1
	}

	if strings.EqualFold(name, "QR") {
		return renderQR(payload, moduleWidth, height)
	}

	var (
		bc  barcode.Barcode
		err error
	)
	switch strings.ToUpper(name) {
	case "EAN13", "EAN8":
		bc, err = ean.Encode(payload)
	case "UPCA":
		// UPC-A is EAN-13 with a leading zero.
		bc, err = ean.Encode("0" + payload)
	case "CODE39":
		bc, err = code39.Encode(strings.Trim(payload, "*"), false, false)
	case "CODE128":
		bc, err = code128.Encode(payload)
	case "ITF":
		bc, err = twooffive.Encode(payload, true)
	case "CODABAR", "NW7":
		bc, err = codabar.Encode(payload)
	default:
		return nil, fmt.Errorf("shape %q: %w", name, ErrUnknownShape)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}

	if height < 1 {
		height = 64
	}
	scaled, err := barcode.Scale(bc, bc.Bounds().Dx()*moduleWidth, height)
	if err != nil {
		return nil, fmt.Errorf("scale %s: %w", name, err)
	}
	return scaled, nil
}

func renderQR(payload string, moduleSize, ecLevel int) (image.Image, error) {
	level := qr.L
	switch ecLevel {
	case 1:
		level = qr.M
	case 2:
		level = qr.Q
	case 3:
		level = qr.H
	}
	code, err := qr.Encode(payload, level, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	side := code.Bounds().Dx() * moduleSize
	scaled, err := barcode.Scale(code, side, side)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}
	return scaled, nil
}

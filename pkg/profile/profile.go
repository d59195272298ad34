// Package profile holds the declarative, per-printer-model description of
// supported code pages, features, fonts and media, loaded from the YAML
// capability database. Profiles are read-only once loaded.
package profile

import (
	"errors"
	"fmt"
)

// ErrNotSupported is returned when a profile lacks a requested font or
// feature.
var ErrNotSupported = errors.New("not supported by printer profile")

// Feature names as used by the capability database.
const (
	FeatureBarcodeA       = "barcodeA"
	FeatureBarcodeB       = "barcodeB"
	FeatureGraphics       = "graphics"
	FeatureBitImageRaster = "bitImageRaster"
	FeatureBitImageColumn = "bitImageColumn"
	FeatureQRCode         = "qrCode"
	FeaturePaperFullCut   = "paperFullCut"
	FeaturePaperPartCut   = "paperPartCut"
	FeatureCashDrawer     = "cashDrawer"
)

// Font describes one of the printer's built-in fonts.
type Font struct {
	Columns int `yaml:"columns"`
}

// MediaWidth describes the printable width. Pixels of zero means the width
// is unknown and operations that need it (centering) must not be attempted.
type MediaWidth struct {
	MM     float64 `yaml:"mm"`
	Pixels int     `yaml:"pixels"`
}

// Media describes the paper the printer takes.
type Media struct {
	DPI   int        `yaml:"dpi"`
	Width MediaWidth `yaml:"width"`
}

// Profile is the capability description of one printer model.
type Profile struct {
	Name     string
	Vendor   string
	Features map[string]bool
	// CodePages maps canonical code page names to ESC t indices,
	// unique per profile.
	CodePages map[string]int
	Fonts     map[string]Font
	Media     Media
}

// Supports reports whether the profile advertises a feature flag.
func (p *Profile) Supports(feature string) bool {
	return p.Features[feature]
}

// Columns returns the character columns available for a font. The special
// names "a" and "b" alias the indices 0 and 1.
func (p *Profile) Columns(font string) (int, error) {
	f, err := p.FontIndex(font)
	if err != nil {
		return 0, err
	}
	return p.Fonts[f].Columns, nil
}

// FontIndex resolves a font name to its index key, validating that the
// profile has it.
func (p *Profile) FontIndex(font string) (string, error) {
	switch font {
	case "a", "A":
		font = "0"
	case "b", "B":
		font = "1"
	}
	if _, ok := p.Fonts[font]; !ok {
		return "", fmt.Errorf("font %q: %w", font, ErrNotSupported)
	}
	return font, nil
}

// MediaWidthPx returns the printable width in pixels. ok is false when the
// profile does not know it.
func (p *Profile) MediaWidthPx() (int, bool) {
	if p.Media.Width.Pixels <= 0 {
		return 0, false
	}
	return p.Media.Width.Pixels, true
}

// DPI returns the printer resolution, deriving it from the media width
// when the database does not state it. 180 is the fallback most ESC/POS
// mechanisms actually have.
func (p *Profile) DPI() int {
	if p.Media.DPI > 0 {
		return p.Media.DPI
	}
	if p.Media.Width.Pixels > 0 && p.Media.Width.MM > 10 {
		// Paper width minus ~10mm margin approximates the printable area.
		return int(float64(p.Media.Width.Pixels) / ((p.Media.Width.MM - 10) / 25.4))
	}
	return 180
}

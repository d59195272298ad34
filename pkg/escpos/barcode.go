package escpos

import (
	"errors"
	"fmt"
	"image"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"printgen/pkg/profile"
)

// Barcode errors.
var (
	// ErrBarcodeType marks a barcode type no available render tier knows.
	ErrBarcodeType = errors.New("unsupported barcode type")
	// ErrBarcodeSize marks module height/width outside the command range.
	ErrBarcodeSize = errors.New("barcode size out of range")
	// ErrBarcodeCode marks a payload whose length or character set does
	// not fit the requested type.
	ErrBarcodeCode = errors.New("invalid barcode payload")
)

// barcodeTypeA maps canonical type names to the GS k selector of command
// family A (NUL-terminated payload).
var barcodeTypeA = map[string][]byte{
	"UPC-A":   setBarcodeType(0),
	"UPC-E":   setBarcodeType(1),
	"EAN13":   setBarcodeType(2),
	"EAN8":    setBarcodeType(3),
	"CODE39":  setBarcodeType(4),
	"ITF":     setBarcodeType(5),
	"NW7":     setBarcodeType(6),
	"CODABAR": setBarcodeType(6), // same selector as NW7
}

// barcodeTypeB maps canonical type names to the GS k selector of command
// family B (length-prefixed payload). The first eight entries mirror
// family A.
var barcodeTypeB = map[string][]byte{
	"UPC-A":                       setBarcodeType(65),
	"UPC-E":                       setBarcodeType(66),
	"EAN13":                       setBarcodeType(67),
	"EAN8":                        setBarcodeType(68),
	"CODE39":                      setBarcodeType(69),
	"ITF":                         setBarcodeType(70),
	"NW7":                         setBarcodeType(71),
	"CODABAR":                     setBarcodeType(71), // same selector as NW7
	"CODE93":                      setBarcodeType(72),
	"CODE128":                     setBarcodeType(73),
	"GS1-128":                     setBarcodeType(74),
	"GS1 DATABAR OMNIDIRECTIONAL": setBarcodeType(75),
	"GS1 DATABAR TRUNCATED":       setBarcodeType(76),
	"GS1 DATABAR LIMITED":         setBarcodeType(77),
	"GS1 DATABAR EXPANDED":        setBarcodeType(78),
}

// barcodeFormat declares the payload shape a native type accepts: the
// length must fall in one of the ranges and the payload must match the
// character-class pattern. Checksums are not validated; the printer will
// render whatever passes this gate.
type barcodeFormat struct {
	lengths [][2]int
	pattern *regexp.Regexp
}

var barcodeFormats = map[string]barcodeFormat{
	"UPC-A":   {[][2]int{{11, 12}}, regexp.MustCompile(`^[0-9]{11,12}$`)},
	"UPC-E":   {[][2]int{{7, 8}, {11, 12}}, regexp.MustCompile(`^([0-9]{7,8}|[0-9]{11,12})$`)},
	"EAN13":   {[][2]int{{12, 13}}, regexp.MustCompile(`^[0-9]{12,13}$`)},
	"EAN8":    {[][2]int{{7, 8}}, regexp.MustCompile(`^[0-9]{7,8}$`)},
	"CODE39":  {[][2]int{{1, 255}}, regexp.MustCompile(`^([0-9A-Z \$\%\+\-\.\/]+|\*[0-9A-Z \$\%\+\-\.\/]+\*)$`)},
	"ITF":     {[][2]int{{2, 255}}, regexp.MustCompile(`^([0-9]{2})+$`)},
	"NW7":     {[][2]int{{1, 255}}, regexp.MustCompile(`^[A-Da-d][0-9\$\+\-\.\/\:]+[A-Da-d]$`)},
	"CODABAR": {[][2]int{{1, 255}}, regexp.MustCompile(`^[A-Da-d][0-9\$\+\-\.\/\:]+[A-Da-d]$`)},
	"CODE93":  {[][2]int{{1, 255}}, regexp.MustCompile(`^[\x00-\x7F]+$`)},
	"CODE128": {[][2]int{{2, 255}}, regexp.MustCompile(`^\{[A-C][\x00-\x7F]+$`)},
	"GS1-128": {[][2]int{{2, 255}}, regexp.MustCompile(`^\{[A-C][\x00-\x7F]+$`)},
	"GS1 DATABAR OMNIDIRECTIONAL": {[][2]int{{13, 13}}, regexp.MustCompile(`^[0-9]{13}$`)},
	"GS1 DATABAR TRUNCATED":       {[][2]int{{13, 13}}, regexp.MustCompile(`^[0-9]{13}$`)},
	"GS1 DATABAR LIMITED":         {[][2]int{{13, 13}}, regexp.MustCompile(`^[01][0-9]{12}$`)},
	"GS1 DATABAR EXPANDED":        {[][2]int{{2, 255}}, regexp.MustCompile(`^\([0-9][A-Za-z0-9 \!\"\%\&'\(\)\*\+\,\-\.\/\:\;\<\=\>\?\_\{]+$`)},
}

// hwBarcodeNames maps alias-normalized names ("EAN 13", "ean-13", ...) to
// the canonical native type names.
var hwBarcodeNames = func() map[string]string {
	names := map[string]string{}
	for _, table := range []map[string][]byte{barcodeTypeA, barcodeTypeB} {
		for name := range table {
			names[normalizeBarcodeName(name)] = name
		}
	}
	return names
}()

// normalizeBarcodeName strips everything but alphanumerics and uppercases,
// so spelling variants of a type name compare equal.
func normalizeBarcodeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CheckBarcode reports whether payload fits the declared shape of the
// native barcode type. Unknown types fail.
func CheckBarcode(bcType, payload string) bool {
	format, ok := barcodeFormats[bcType]
	if !ok {
		return false
	}
	n := len(payload)
	inRange := false
	for _, r := range format.lengths {
		if n >= r[0] && n <= r[1] {
			inRange = true
			break
		}
	}
	return inRange && format.pattern.MatchString(payload)
}

// ShapeRenderer turns a barcode payload into an image. Implementations
// live outside the synthesis core (see pkg/swrender); the dispatcher only
// needs the resulting picture.
type ShapeRenderer interface {
	// Names returns the normalized type names the renderer can draw.
	Names() []string
	// Render draws the payload as the given normalized type. The scale
	// parameters are in printer dots per module.
	Render(name, payload string, moduleWidth, height int) (image.Image, error)
}

// BarcodeOptions carries the tunable parts of a barcode request. The zero
// value is completed by DefaultBarcodeOptions.
type BarcodeOptions struct {
	Height       int    // module height in dots, 1-255
	Width        int    // module width in dots, 2-6
	TextPosition string // OFF, ABOVE, BELOW, BOTH
	Font         string // A or B (HRI characters)
	AlignCenter  bool
	FunctionType string // force native family A or B; "" guesses from the tables
	// SkipCheck bypasses payload validation. Malformed payloads can
	// trigger undefined device behavior, so this stays opt-in.
	SkipCheck bool
	// ForceSoftware routes to the software renderer: true picks the best
	// image mode the profile has, or name one of graphics,
	// bitImageColumn, bitImageRaster directly.
	ForceSoftware string
}

// DefaultBarcodeOptions mirrors the device defaults.
func DefaultBarcodeOptions() BarcodeOptions {
	return BarcodeOptions{
		Height:       64,
		Width:        3,
		TextPosition: "BELOW",
		Font:         "A",
		AlignCenter:  true,
	}
}

// Barcode renders a barcode, choosing between the printer's native
// renderer and the software image path based on the profile's feature
// flags and the tables of each tier. Native rendering wins when both can
// serve the type; ForceSoftware overrides.
func (p *Printer) Barcode(bcType, payload string, opts BarcodeOptions) error {
	if opts.Height == 0 && opts.Width == 0 && opts.TextPosition == "" && opts.Font == "" {
		defaults := DefaultBarcodeOptions()
		defaults.FunctionType = opts.FunctionType
		defaults.SkipCheck = opts.SkipCheck
		defaults.ForceSoftware = opts.ForceSoftware
		opts = defaults
	}

	hwTiers := p.hwBarcodeTiers()
	swModes := p.swImageModes()
	forceSW := opts.ForceSoftware != ""
	if len(hwTiers) == 0 && len(swModes) == 0 {
		return fmt.Errorf("profile %q has no barcode render tier: %w", p.profile.Name, ErrBarcodeType)
	}
	if forceSW && len(swModes) == 0 {
		return fmt.Errorf("profile %q cannot render software barcodes: %w", p.profile.Name, ErrBarcodeType)
	}

	alias := normalizeBarcodeName(bcType)
	hwName := hwBarcodeNames[alias]
	swKnown := p.swRendererKnows(alias)
	if hwName == "" && !swKnown {
		return fmt.Errorf("barcode type %q: %w", bcType, ErrBarcodeType)
	}

	if forceSW || len(hwTiers) == 0 || hwName == "" {
		if len(swModes) == 0 || !swKnown {
			return fmt.Errorf("barcode type %q has no usable render tier: %w", bcType, ErrBarcodeType)
		}
		impl := swModes[0]
		if opts.ForceSoftware != "" && opts.ForceSoftware != "true" {
			impl = opts.ForceSoftware
			if !p.profile.Supports(impl) {
				return fmt.Errorf("image mode %q: %w", impl, profile.ErrNotSupported)
			}
		}
		return p.softwareBarcode(alias, payload, impl, opts)
	}

	return p.nativeBarcode(hwName, payload, hwTiers, opts)
}

// hwBarcodeTiers returns the native command families the profile supports,
// family A first.
func (p *Printer) hwBarcodeTiers() []string {
	var tiers []string
	if p.profile.Supports(profile.FeatureBarcodeA) {
		tiers = append(tiers, "A")
	}
	if p.profile.Supports(profile.FeatureBarcodeB) {
		tiers = append(tiers, "B")
	}
	return tiers
}

// swImageModes returns the image transfer modes the profile supports, in
// preference order.
func (p *Printer) swImageModes() []string {
	var modes []string
	for _, mode := range []string{profile.FeatureGraphics, profile.FeatureBitImageColumn, profile.FeatureBitImageRaster} {
		if p.profile.Supports(mode) {
			modes = append(modes, mode)
		}
	}
	return modes
}

func (p *Printer) swRendererKnows(alias string) bool {
	if p.shapes == nil {
		return false
	}
	for _, name := range p.shapes.Names() {
		if name == alias {
			return true
		}
	}
	return false
}

// nativeBarcode emits the full native command sequence: alignment, height,
// width, HRI font and position, then the type selector and the payload in
// the framing of the chosen family (A: payload NUL, B: length byte then
// payload).
func (p *Printer) nativeBarcode(bcType, payload string, tiers []string, opts BarcodeOptions) error {
	family := strings.ToUpper(opts.FunctionType)
	if family == "" {
		for _, tier := range tiers {
			if _, ok := familyTable(tier)[bcType]; ok {
				family = tier
				break
			}
		}
	}
	selector, ok := familyTable(family)[bcType]
	if !ok {
		return fmt.Errorf("barcode %q not valid for function type %q: %w", bcType, family, ErrBarcodeType)
	}

	if !opts.SkipCheck && !CheckBarcode(bcType, payload) {
		return fmt.Errorf("payload %q not valid for type %q: %w", payload, bcType, ErrBarcodeCode)
	}
	if payload == "" {
		return fmt.Errorf("empty payload: %w", ErrBarcodeCode)
	}
	if opts.Height < 1 || opts.Height > 255 {
		return fmt.Errorf("height %d: %w", opts.Height, ErrBarcodeSize)
	}
	if opts.Width < 2 || opts.Width > 6 {
		return fmt.Errorf("width %d: %w", opts.Width, ErrBarcodeSize)
	}

	var seq []byte
	if opts.AlignCenter {
		seq = append(seq, AlignCenter...)
	}
	seq = append(seq, BarcodeHeight...)
	seq = append(seq, byte(opts.Height))
	seq = append(seq, BarcodeWidth...)
	seq = append(seq, byte(opts.Width))
	if strings.EqualFold(opts.Font, "B") {
		seq = append(seq, BarcodeFontB...)
	} else {
		seq = append(seq, BarcodeFontA...)
	}
	switch strings.ToUpper(opts.TextPosition) {
	case "OFF":
		seq = append(seq, BarcodeTxtOff...)
	case "ABOVE":
		seq = append(seq, BarcodeTxtAbv...)
	case "BOTH":
		seq = append(seq, BarcodeTxtBoth...)
	default:
		seq = append(seq, BarcodeTxtBlw...)
	}
	seq = append(seq, selector...)
	if family == "B" {
		seq = append(seq, byte(len(payload)))
		seq = append(seq, payload...)
	} else {
		seq = append(seq, payload...)
		seq = append(seq, NUL)
	}

	p.logger.Debug("native barcode",
		zap.String("type", bcType),
		zap.String("family", family),
		zap.Int("payload_length", len(payload)),
	)
	return p.sink.Raw(seq)
}

func familyTable(family string) map[string][]byte {
	switch family {
	case "A":
		return barcodeTypeA
	case "B":
		return barcodeTypeB
	}
	return nil
}

// softwareBarcode draws the payload on the host and ships it through the
// ordinary image pipeline; there is no barcode-specific packing.
func (p *Printer) softwareBarcode(alias, payload, impl string, opts BarcodeOptions) error {
	if p.shapes == nil {
		return fmt.Errorf("no software shape renderer configured: %w", ErrBarcodeType)
	}
	img, err := p.shapes.Render(alias, payload, opts.Width, opts.Height)
	if err != nil {
		return fmt.Errorf("software render %q: %w", alias, err)
	}
	p.logger.Debug("software barcode",
		zap.String("type", alias),
		zap.String("impl", impl),
	)
	imgOpts := DefaultImageOptions()
	imgOpts.Impl = impl
	imgOpts.Center = opts.AlignCenter
	return p.Image(img, imgOpts)
}

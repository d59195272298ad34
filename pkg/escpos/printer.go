// Package escpos synthesizes ESC/POS command streams. A Printer combines a
// capability profile with an output sink and exposes the printing
// operations; nothing in the package performs device I/O.
package escpos

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"printgen/pkg/bitmap"
	"printgen/pkg/profile"
	"printgen/pkg/textenc"
)

// Image transfer modes, named after the capability flags that gate them.
const (
	ImplBitImageRaster = profile.FeatureBitImageRaster
	ImplBitImageColumn = profile.FeatureBitImageColumn
	ImplGraphics       = profile.FeatureGraphics
)

// rasterFragmentMax is the tallest fragment the obsolete GS v 0 command
// reliably accepts across the installed base. Taller images are split.
const rasterFragmentMax = 255

var (
	// ErrImageSize is returned when an image dimension exceeds what the
	// selected transfer mode can express.
	ErrImageSize = errors.New("image dimension out of range")
	// ErrQRInput is returned for QR payloads or parameters outside the
	// command's range.
	ErrQRInput = errors.New("invalid qr input")
)

// Printer synthesizes commands for one printer model into a Sink. Methods
// are not safe for concurrent use; a Printer mirrors a single device
// stream, which has no notion of interleaving either.
type Printer struct {
	sink    Sink
	profile *profile.Profile
	magic   *textenc.MagicEncoder
	shapes  ShapeRenderer
	logger  *zap.Logger
	jobID   string
}

// Option configures a Printer.
type Option func(*Printer)

// WithLogger attaches a logger. Without it the printer stays silent.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Printer) { p.logger = logger }
}

// WithShapeRenderer attaches a software barcode renderer for profiles (or
// barcode types) without native support.
func WithShapeRenderer(r ShapeRenderer) Option {
	return func(p *Printer) { p.shapes = r }
}

// NewPrinter builds a Printer over prof writing to sink. encOpts configure
// the text encoding machinery (start code page, fixed page, default
// symbol).
func NewPrinter(sink Sink, prof *profile.Profile, encOpts []textenc.Option, opts ...Option) (*Printer, error) {
	p := &Printer{
		sink:    sink,
		profile: prof,
		logger:  zap.NewNop(),
		jobID:   uuid.New().String(),
	}
	for _, opt := range opts {
		opt(p)
	}

	magic, err := textenc.NewMagicEncoder(sink, textenc.NewEncoder(prof.CodePages), encOpts...)
	if err != nil {
		return nil, fmt.Errorf("text encoder: %w", err)
	}
	p.magic = magic
	p.logger = p.logger.With(
		zap.String("job_id", p.jobID),
		zap.String("profile", prof.Name),
	)
	p.logger.Debug("printer created")
	return p, nil
}

// JobID returns the identifier attached to this printer's log entries.
func (p *Printer) JobID() string { return p.jobID }

// Profile returns the capability profile the printer synthesizes for.
func (p *Printer) Profile() *profile.Profile { return p.profile }

// Raw passes bytes through to the sink unmodified.
func (p *Printer) Raw(data []byte) error {
	return p.sink.Raw(data)
}

// Init resets the printer to its power-on command state (ESC @). Encoder
// state is not touched; the device falls back to its default code page, so
// callers that initialized with a start encoding should follow up with
// Charcode.
func (p *Printer) Init() error {
	return p.sink.Raw(Initialize)
}

// Text encodes and appends free-form text, switching code pages as the
// characters require.
func (p *Printer) Text(text string) error {
	return p.magic.Write(text)
}

// TextLn appends text followed by a line feed.
func (p *Printer) TextLn(text string) error {
	if err := p.Text(text); err != nil {
		return err
	}
	return p.Ln(1)
}

// Ln feeds n blank lines.
func (p *Printer) Ln(n int) error {
	if n < 1 {
		return fmt.Errorf("line count %d out of range", n)
	}
	return p.sink.Raw([]byte(strings.Repeat("\n", n)))
}

// Charcode pins the code page. "AUTO" re-enables the automatic search;
// any other name becomes the fixed page for all following text.
func (p *Printer) Charcode(code string) error {
	if strings.EqualFold(code, "AUTO") {
		return p.magic.ForceEncoding("")
	}
	return p.magic.ForceEncoding(code)
}

// Style carries the text formatting state set in one call. Zero values
// mean device defaults; Width and Height are magnification factors 1-8.
type Style struct {
	Align         string // left, center, right
	Font          string // a or b
	Bold          bool
	Underline     int // 0, 1, 2 dots
	Width         int
	Height        int
	Density       int // 0-8, -1 leaves it unchanged
	Invert        bool
	Smooth        bool
	Flip          bool
	CustomSpacing int // character spacing in dots, 0 resets
}

// DefaultStyle mirrors the device defaults after ESC @.
func DefaultStyle() Style {
	return Style{
		Align:   "left",
		Font:    "a",
		Width:   1,
		Height:  1,
		Density: -1,
	}
}

// Set emits the full formatting state in one burst. Calling it with a
// partially filled Style resets the omitted attributes to their defaults,
// the same way the device treats ESC ! on real hardware.
func (p *Printer) Set(s Style) error {
	var seq []byte

	if s.Width == 0 {
		s.Width = 1
	}
	if s.Height == 0 {
		s.Height = 1
	}
	if s.Width < 1 || s.Width > 8 || s.Height < 1 || s.Height > 8 {
		return fmt.Errorf("text size %dx%d out of range 1-8", s.Width, s.Height)
	}
	seq = append(seq, TextNormal...)
	seq = append(seq, TextSize...)
	seq = append(seq, byte((s.Width-1)<<4|(s.Height-1)))

	if s.Flip {
		seq = append(seq, FlipOn...)
	} else {
		seq = append(seq, FlipOff...)
	}
	if s.Smooth {
		seq = append(seq, SmoothOn...)
	} else {
		seq = append(seq, SmoothOff...)
	}
	if s.Bold {
		seq = append(seq, BoldOn...)
	} else {
		seq = append(seq, BoldOff...)
	}
	switch s.Underline {
	case 0:
		seq = append(seq, UnderlineOff...)
	case 1:
		seq = append(seq, Underline1Dot...)
	case 2:
		seq = append(seq, Underline2Dot...)
	default:
		return fmt.Errorf("underline %d out of range 0-2", s.Underline)
	}

	if s.Font != "" {
		idx, err := p.profile.FontIndex(s.Font)
		if err != nil {
			return err
		}
		seq = append(seq, SetFont...)
		seq = append(seq, idx[0])
	}

	switch strings.ToLower(s.Align) {
	case "", "left":
		seq = append(seq, AlignLeft...)
	case "center":
		seq = append(seq, AlignCenter...)
	case "right":
		seq = append(seq, AlignRight...)
	default:
		return fmt.Errorf("unknown alignment %q", s.Align)
	}

	if s.Invert {
		seq = append(seq, InvertOn...)
	} else {
		seq = append(seq, InvertOff...)
	}
	if s.Density >= 0 {
		if s.Density > 8 {
			return fmt.Errorf("density %d out of range 0-8", s.Density)
		}
		seq = append(seq, Density(s.Density)...)
	}
	if s.CustomSpacing > 0 {
		if s.CustomSpacing > 255 {
			return fmt.Errorf("character spacing %d out of range", s.CustomSpacing)
		}
		seq = append(seq, CharSpacing...)
		seq = append(seq, byte(s.CustomSpacing))
	}

	return p.sink.Raw(seq)
}

// ImageOptions selects the transfer mode and layout of an image print.
type ImageOptions struct {
	// Impl names the transfer mode; empty picks the best mode the
	// profile supports (graphics, then raster, then column).
	Impl string
	// HighDensityVertical and HighDensityHorizontal select the dot
	// density per axis. Low density doubles the dot pitch.
	HighDensityVertical   bool
	HighDensityHorizontal bool
	// FragmentHeight caps the rows sent per command. Zero picks the
	// mode's default (255 for the raster command, 960 otherwise).
	FragmentHeight int
	// Center pads the image to the middle of the printable width. Fails
	// when the profile does not state its width in pixels.
	Center bool
}

// DefaultImageOptions returns high-density, uncentered defaults.
func DefaultImageOptions() ImageOptions {
	return ImageOptions{
		HighDensityVertical:   true,
		HighDensityHorizontal: true,
	}
}

// Image converts img to monochrome and transfers it in the selected mode,
// splitting tall images into fragments the command format can carry.
func (p *Printer) Image(img image.Image, opts ImageOptions) error {
	impl := opts.Impl
	if impl == "" {
		modes := p.swImageModes()
		if len(modes) == 0 {
			return fmt.Errorf("profile %q has no image mode: %w", p.profile.Name, profile.ErrNotSupported)
		}
		impl = modes[0]
	} else if !p.profile.Supports(impl) {
		return fmt.Errorf("image mode %q: %w", impl, profile.ErrNotSupported)
	}

	b := bitmap.FromImage(img)
	if b.Width() == 0 || b.Height() == 0 {
		return fmt.Errorf("empty image: %w", ErrImageSize)
	}

	if widthPx, ok := p.profile.MediaWidthPx(); ok && b.Width() > widthPx {
		return fmt.Errorf("image is %dpx wide on %dpx media: %w", b.Width(), widthPx, bitmap.ErrTooWide)
	}
	if opts.Center {
		widthPx, ok := p.profile.MediaWidthPx()
		if !ok {
			return fmt.Errorf("profile %q does not state its width in pixels, cannot center", p.profile.Name)
		}
		centered, err := b.Center(widthPx)
		if err != nil {
			return fmt.Errorf("center %dpx image on %dpx media: %w", b.Width(), widthPx, err)
		}
		b = centered
	}

	fragHeight := opts.FragmentHeight
	if fragHeight == 0 {
		if impl == ImplBitImageRaster {
			fragHeight = rasterFragmentMax
		} else {
			fragHeight = 960
		}
	}
	if impl == ImplBitImageRaster && fragHeight > rasterFragmentMax {
		return fmt.Errorf("raster fragment height %d exceeds %d: %w", fragHeight, rasterFragmentMax, ErrImageSize)
	}

	fragments := b.Split(fragHeight)
	p.logger.Debug("image transfer",
		zap.String("impl", impl),
		zap.Int("width", b.Width()),
		zap.Int("height", b.Height()),
		zap.Int("fragments", len(fragments)),
	)
	for _, frag := range fragments {
		var err error
		switch impl {
		case ImplBitImageRaster:
			err = p.rasterImage(frag, opts)
		case ImplGraphics:
			err = p.graphicsImage(frag, opts)
		case ImplBitImageColumn:
			err = p.columnImage(frag, opts)
		default:
			err = fmt.Errorf("image mode %q: %w", impl, profile.ErrNotSupported)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// rasterImage emits one GS v 0 block: density byte, width in bytes and
// height, both little-endian 16 bit, then the packed rows.
func (p *Printer) rasterImage(b *bitmap.Bitmap, opts ImageOptions) error {
	density := byte(0)
	if !opts.HighDensityHorizontal {
		density += 1
	}
	if !opts.HighDensityVertical {
		density += 2
	}
	seq := append([]byte{}, RasterImage...)
	seq = append(seq, density)
	seq = append(seq, intLowHigh(b.WidthBytes(), 2)...)
	seq = append(seq, intLowHigh(b.Height(), 2)...)
	seq = append(seq, b.ToRaster()...)
	return p.sink.Raw(seq)
}

// graphicsImage stores the fragment with GS ( L function 112 and flushes
// the print buffer with function 50.
func (p *Printer) graphicsImage(b *bitmap.Bitmap, opts ImageOptions) error {
	xm := byte(0x01)
	if !opts.HighDensityHorizontal {
		xm = 0x02
	}
	ym := byte(0x01)
	if !opts.HighDensityVertical {
		ym = 0x02
	}
	data := []byte{'0', xm, ym, '1'}
	data = append(data, intLowHigh(b.Width(), 2)...)
	data = append(data, intLowHigh(b.Height(), 2)...)
	data = append(data, b.ToRaster()...)
	if err := p.graphicsData('0', 'p', data); err != nil {
		return err
	}
	return p.graphicsData('0', '2', nil)
}

// graphicsData frames one GS ( L function: payload length (covering m and
// fn) little-endian, then m, fn and the payload.
func (p *Printer) graphicsData(m, fn byte, data []byte) error {
	seq := append([]byte{}, GraphicsData...)
	seq = append(seq, intLowHigh(len(data)+2, 2)...)
	seq = append(seq, m, fn)
	seq = append(seq, data...)
	return p.sink.Raw(seq)
}

// columnImage emits the fragment band by band with ESC *, wrapped in a
// 16/180-inch line spacing so consecutive bands butt against each other.
func (p *Printer) columnImage(b *bitmap.Bitmap, opts ImageOptions) error {
	density := byte(0)
	if opts.HighDensityHorizontal {
		density = 1
	}
	if opts.HighDensityVertical {
		density += 32
	}
	header := append([]byte{}, ColumnImage...)
	header = append(header, density)
	header = append(header, intLowHigh(b.Width(), 2)...)

	spacing := append([]byte{}, LineSpacing180...)
	spacing = append(spacing, 16)
	if err := p.sink.Raw(spacing); err != nil {
		return err
	}
	for _, blob := range b.ToColumnFormat(opts.HighDensityVertical) {
		seq := append(append([]byte{}, header...), blob...)
		seq = append(seq, LF)
		if err := p.sink.Raw(seq); err != nil {
			return err
		}
	}
	return p.sink.Raw(LineSpacingReset)
}

// QROptions tune QR code output.
type QROptions struct {
	Size   int    // module size in dots, 1-16
	EC     int    // error correction level 0 (L) to 3 (H)
	Model  int    // 1, 2, or 3 for Micro QR
	Center bool
	// Native false renders on the host through the shape renderer and
	// the image pipeline; forced automatically when the profile lacks
	// the qrCode feature.
	Native bool
	Impl   string // image mode for software rendering
}

// DefaultQROptions mirrors the most interoperable settings: model 2,
// 3-dot modules, lowest error correction.
func DefaultQROptions() QROptions {
	return QROptions{Size: 3, Model: 2, Native: true}
}

// QR prints content as a QR code, natively when the profile supports the
// 2D code command and through the image pipeline otherwise.
func (p *Printer) QR(content string, opts QROptions) error {
	if content == "" {
		return nil
	}
	if opts.Size < 1 || opts.Size > 16 {
		return fmt.Errorf("module size %d out of range 1-16: %w", opts.Size, ErrQRInput)
	}
	if opts.EC < 0 || opts.EC > 3 {
		return fmt.Errorf("error correction %d out of range 0-3: %w", opts.EC, ErrQRInput)
	}
	if opts.Model < 1 || opts.Model > 3 {
		return fmt.Errorf("model %d out of range 1-3: %w", opts.Model, ErrQRInput)
	}

	if !opts.Native || !p.profile.Supports(profile.FeatureQRCode) {
		if p.shapes == nil {
			return fmt.Errorf("no software shape renderer configured: %w", profile.ErrNotSupported)
		}
		img, err := p.shapes.Render("QR", content, opts.Size, opts.EC)
		if err != nil {
			return fmt.Errorf("software render qr: %w", err)
		}
		imgOpts := DefaultImageOptions()
		imgOpts.Impl = opts.Impl
		imgOpts.Center = opts.Center
		return p.Image(img, imgOpts)
	}

	if len(content) > 7089 {
		return fmt.Errorf("content length %d exceeds symbol capacity: %w", len(content), ErrQRInput)
	}

	if opts.Center {
		if err := p.sink.Raw(AlignCenter); err != nil {
			return err
		}
	}
	// Function order per the 2D code command set: model, module size,
	// error correction, store, print.
	if err := p.twoDCode(65, []byte{byte(48 + opts.Model), 0}); err != nil {
		return err
	}
	if err := p.twoDCode(67, []byte{byte(opts.Size)}); err != nil {
		return err
	}
	if err := p.twoDCode(69, []byte{byte(48 + opts.EC)}); err != nil {
		return err
	}
	if err := p.twoDCode(80, append([]byte{48}, content...)); err != nil {
		return err
	}
	if err := p.twoDCode(81, []byte{48}); err != nil {
		return err
	}
	if opts.Center {
		return p.sink.Raw(AlignLeft)
	}
	return nil
}

// twoDCode frames one GS ( k function for symbol type QR (cn 49).
func (p *Printer) twoDCode(fn byte, data []byte) error {
	seq := append([]byte{}, TwoDCodeData...)
	seq = append(seq, intLowHigh(len(data)+2, 2)...)
	seq = append(seq, 49, fn)
	seq = append(seq, data...)
	return p.sink.Raw(seq)
}

// Cut feeds past the cutter position and cuts the paper. partial leaves
// the center bridge intact on printers that distinguish the two.
func (p *Printer) Cut(partial bool, feed int) error {
	feature := profile.FeaturePaperFullCut
	cmd := PaperFullCut
	if partial {
		feature = profile.FeaturePaperPartCut
		cmd = PaperPartCut
	}
	if !p.profile.Supports(feature) {
		return fmt.Errorf("paper cut: %w", profile.ErrNotSupported)
	}
	if feed > 0 {
		if err := p.Feed(feed); err != nil {
			return err
		}
	}
	return p.sink.Raw(cmd)
}

// Cashdraw sends a kick pulse on drawer pin 2 or 5.
func (p *Printer) Cashdraw(pin int) error {
	if !p.profile.Supports(profile.FeatureCashDrawer) {
		return fmt.Errorf("cash drawer: %w", profile.ErrNotSupported)
	}
	switch pin {
	case 2:
		return p.sink.Raw(DrawerKickPin2)
	case 5:
		return p.sink.Raw(DrawerKickPin5)
	}
	return fmt.Errorf("cash drawer pin %d, want 2 or 5", pin)
}

// Feed advances the paper n lines (ESC d).
func (p *Printer) Feed(n int) error {
	if n < 1 || n > 255 {
		return fmt.Errorf("feed %d lines out of range 1-255", n)
	}
	seq := append([]byte{}, PrintAndFeed...)
	seq = append(seq, byte(n))
	return p.sink.Raw(seq)
}

// Buzz sounds the buzzer, on the printers that have one.
func (p *Printer) Buzz(times, duration int) error {
	if times < 1 || times > 9 {
		return fmt.Errorf("buzzer repeat %d out of range 1-9", times)
	}
	if duration < 1 || duration > 9 {
		return fmt.Errorf("buzzer duration %d out of range 1-9", duration)
	}
	seq := append([]byte{}, Buzzer...)
	seq = append(seq, byte(times), byte(duration))
	return p.sink.Raw(seq)
}

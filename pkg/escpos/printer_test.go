package escpos

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printgen/pkg/bitmap"
	"printgen/pkg/profile"
)

func testProfile() *profile.Profile {
	return &profile.Profile{
		Name: "test",
		Features: map[string]bool{
			profile.FeatureBarcodeA:       true,
			profile.FeatureBarcodeB:       true,
			profile.FeatureBitImageRaster: true,
			profile.FeatureBitImageColumn: true,
			profile.FeatureGraphics:       true,
			profile.FeatureQRCode:         true,
			profile.FeaturePaperFullCut:   true,
			profile.FeaturePaperPartCut:   true,
			profile.FeatureCashDrawer:     true,
		},
		CodePages: map[string]int{"CP437": 0, "CP858": 2},
		Fonts: map[string]profile.Font{
			"0": {Columns: 42},
			"1": {Columns: 56},
		},
		Media: profile.Media{
			DPI:   180,
			Width: profile.MediaWidth{MM: 80, Pixels: 512},
		},
	}
}

func newTestPrinter(t *testing.T, prof *profile.Profile, opts ...Option) (*Printer, *Buffer) {
	t.Helper()
	sink := &Buffer{}
	p, err := NewPrinter(sink, prof, nil, opts...)
	require.NoError(t, err)
	return p, sink
}

func TestInit(t *testing.T) {
	p, sink := newTestPrinter(t, testProfile())
	require.NoError(t, p.Init())
	assert.Equal(t, []byte{ESC, '@'}, sink.Bytes())
}

func TestTextSwitchesCodePage(t *testing.T) {
	p, sink := newTestPrinter(t, testProfile())
	require.NoError(t, p.Text("€"))
	assert.Equal(t, []byte{ESC, 't', 2, 0xD5}, sink.Bytes())
}

func TestTextLnAppendsFeed(t *testing.T) {
	p, sink := newTestPrinter(t, testProfile())
	require.NoError(t, p.TextLn("hi"))
	assert.True(t, bytes.HasSuffix(sink.Bytes(), []byte{'h', 'i', LF}))
}

func TestCharcodePinsAndReleases(t *testing.T) {
	p, sink := newTestPrinter(t, testProfile())

	require.NoError(t, p.Charcode("CP858"))
	assert.Equal(t, []byte{ESC, 't', 2}, sink.Bytes())

	// π is not in CP858, so the pin forces substitution.
	sink.Reset()
	require.NoError(t, p.Text("π"))
	assert.Equal(t, []byte{'?'}, sink.Bytes())

	sink.Reset()
	require.NoError(t, p.Charcode("auto"))
	require.NoError(t, p.Text("π"))
	assert.Equal(t, []byte{ESC, 't', 0, 0xE3}, sink.Bytes())
}

func TestSetEmitsFullState(t *testing.T) {
	p, sink := newTestPrinter(t, testProfile())

	s := DefaultStyle()
	s.Bold = true
	s.Align = "center"
	s.Width = 2
	s.Height = 3
	require.NoError(t, p.Set(s))

	out := sink.Bytes()
	assert.True(t, bytes.Contains(out, BoldOn))
	assert.True(t, bytes.Contains(out, AlignCenter))
	assert.True(t, bytes.Contains(out, []byte{GS, '!', 0x12}))
}

func TestSetRejectsBadValues(t *testing.T) {
	p, _ := newTestPrinter(t, testProfile())

	s := DefaultStyle()
	s.Width = 9
	assert.Error(t, p.Set(s))

	s = DefaultStyle()
	s.Underline = 3
	assert.Error(t, p.Set(s))

	s = DefaultStyle()
	s.Align = "justified"
	assert.Error(t, p.Set(s))

	s = DefaultStyle()
	s.Font = "z"
	assert.ErrorIs(t, p.Set(s), profile.ErrNotSupported)
}

func blackBar(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
	}
	return img
}

func TestImageRaster(t *testing.T) {
	p, sink := newTestPrinter(t, testProfile())

	opts := DefaultImageOptions()
	opts.Impl = ImplBitImageRaster
	require.NoError(t, p.Image(blackBar(16, 8), opts))

	want := []byte{GS, 'v', '0', 0, 2, 0, 8, 0}
	for i := 0; i < 16; i++ {
		want = append(want, 0xFF)
	}
	assert.Equal(t, want, sink.Bytes())
}

func TestImageRasterSplitsTallImages(t *testing.T) {
	p, sink := newTestPrinter(t, testProfile())

	opts := DefaultImageOptions()
	opts.Impl = ImplBitImageRaster
	require.NoError(t, p.Image(blackBar(8, 300), opts))

	out := sink.Bytes()
	// Fragment 1: 255 rows, fragment 2: 45 rows.
	assert.Equal(t, []byte{GS, 'v', '0', 0, 1, 0, 255, 0}, out[:8])
	second := 8 + 255
	assert.Equal(t, []byte{GS, 'v', '0', 0, 1, 0, 45, 0}, out[second:second+8])
	assert.Len(t, out, 8+255+8+45)
}

func TestImageRasterFragmentCeiling(t *testing.T) {
	p, _ := newTestPrinter(t, testProfile())

	opts := DefaultImageOptions()
	opts.Impl = ImplBitImageRaster
	opts.FragmentHeight = 600
	err := p.Image(blackBar(8, 8), opts)
	assert.ErrorIs(t, err, ErrImageSize)
}

func TestImageColumnWrapsLineSpacing(t *testing.T) {
	p, sink := newTestPrinter(t, testProfile())

	opts := DefaultImageOptions()
	opts.Impl = ImplBitImageColumn
	require.NoError(t, p.Image(blackBar(4, 24), opts))

	out := sink.Bytes()
	assert.Equal(t, []byte{ESC, '3', 16}, out[:3])
	assert.Equal(t, []byte{ESC, '*', 33, 4, 0}, out[3:8])
	// One 24-row band: 3 bytes per column plus the terminating feed.
	assert.Equal(t, byte(LF), out[8+12])
	assert.Equal(t, []byte{ESC, '2'}, out[len(out)-2:])
}

func TestImageGraphics(t *testing.T) {
	p, sink := newTestPrinter(t, testProfile())

	opts := DefaultImageOptions()
	opts.Impl = ImplGraphics
	require.NoError(t, p.Image(blackBar(8, 8), opts))

	out := sink.Bytes()
	// Store: payload is m + fn + tone/scale/color header + 8 data bytes.
	assert.Equal(t, []byte{GS, '(', 'L', 18, 0, '0', 'p', '0', 1, 1, '1', 8, 0, 8, 0}, out[:15])
	// Flush follows immediately.
	assert.Equal(t, []byte{GS, '(', 'L', 2, 0, '0', '2'}, out[len(out)-7:])
}

func TestImageCenterNeedsKnownWidth(t *testing.T) {
	prof := testProfile()
	prof.Media.Width.Pixels = 0
	p, _ := newTestPrinter(t, prof)

	opts := DefaultImageOptions()
	opts.Impl = ImplBitImageRaster
	opts.Center = true
	assert.Error(t, p.Image(blackBar(8, 8), opts))
}

func TestImageCenterTooWide(t *testing.T) {
	p, _ := newTestPrinter(t, testProfile())

	opts := DefaultImageOptions()
	opts.Impl = ImplBitImageRaster
	opts.Center = true
	err := p.Image(blackBar(600, 4), opts)
	assert.ErrorIs(t, err, bitmap.ErrTooWide)
}

func TestImageWiderThanMediaRejected(t *testing.T) {
	p, _ := newTestPrinter(t, testProfile())

	// The guard applies even without centering: a 600px line cannot fit
	// 512px media.
	opts := DefaultImageOptions()
	opts.Impl = ImplBitImageRaster
	err := p.Image(blackBar(600, 4), opts)
	assert.ErrorIs(t, err, bitmap.ErrTooWide)
}

func TestImageWidthUncheckedWhenMediaUnknown(t *testing.T) {
	prof := testProfile()
	prof.Media.Width.Pixels = 0
	p, sink := newTestPrinter(t, prof)

	opts := DefaultImageOptions()
	opts.Impl = ImplBitImageRaster
	require.NoError(t, p.Image(blackBar(600, 4), opts))
	assert.NotZero(t, sink.Len())
}

func TestImageUnsupportedMode(t *testing.T) {
	prof := testProfile()
	prof.Features[profile.FeatureGraphics] = false
	p, _ := newTestPrinter(t, prof)

	opts := DefaultImageOptions()
	opts.Impl = ImplGraphics
	assert.ErrorIs(t, p.Image(blackBar(8, 8), opts), profile.ErrNotSupported)
}

func TestQRNative(t *testing.T) {
	p, sink := newTestPrinter(t, testProfile())

	require.NoError(t, p.QR("test", DefaultQROptions()))
	out := sink.Bytes()

	// Store function: length covers cn, fn and the m byte plus payload.
	assert.True(t, bytes.Contains(out, []byte{GS, '(', 'k', 7, 0, 49, 80, 48, 't', 'e', 's', 't'}))
	// Print function comes last.
	assert.Equal(t, []byte{GS, '(', 'k', 3, 0, 49, 81, 48}, out[len(out)-8:])
}

func TestQRValidatesInput(t *testing.T) {
	p, _ := newTestPrinter(t, testProfile())

	opts := DefaultQROptions()
	opts.Size = 17
	assert.ErrorIs(t, p.QR("x", opts), ErrQRInput)

	opts = DefaultQROptions()
	opts.EC = 4
	assert.ErrorIs(t, p.QR("x", opts), ErrQRInput)

	opts = DefaultQROptions()
	opts.Model = 0
	assert.ErrorIs(t, p.QR("x", opts), ErrQRInput)
}

func TestQREmptyContentIsNoop(t *testing.T) {
	p, sink := newTestPrinter(t, testProfile())
	require.NoError(t, p.QR("", DefaultQROptions()))
	assert.Zero(t, sink.Len())
}

func TestCut(t *testing.T) {
	p, sink := newTestPrinter(t, testProfile())

	require.NoError(t, p.Cut(false, 3))
	assert.Equal(t, []byte{ESC, 'd', 3, GS, 'V', 0}, sink.Bytes())

	sink.Reset()
	require.NoError(t, p.Cut(true, 0))
	assert.Equal(t, []byte{GS, 'V', 1}, sink.Bytes())
}

func TestCutUnsupported(t *testing.T) {
	prof := testProfile()
	prof.Features[profile.FeaturePaperPartCut] = false
	p, _ := newTestPrinter(t, prof)
	assert.ErrorIs(t, p.Cut(true, 0), profile.ErrNotSupported)
}

func TestCashdraw(t *testing.T) {
	p, sink := newTestPrinter(t, testProfile())

	require.NoError(t, p.Cashdraw(2))
	assert.Equal(t, DrawerKickPin2, sink.Bytes())

	assert.Error(t, p.Cashdraw(3))
}

func TestBuzz(t *testing.T) {
	p, sink := newTestPrinter(t, testProfile())

	require.NoError(t, p.Buzz(2, 4))
	assert.Equal(t, []byte{ESC, 'B', 2, 4}, sink.Bytes())

	assert.Error(t, p.Buzz(0, 4))
	assert.Error(t, p.Buzz(1, 10))
}

func TestIntLowHigh(t *testing.T) {
	assert.Equal(t, []byte{0x39, 0x01}, intLowHigh(313, 2))
	assert.Equal(t, []byte{0xFF}, intLowHigh(255, 1))
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x00}, intLowHigh(256, 4))
}

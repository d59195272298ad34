package escpos

// ESC/POS command constants. The byte values follow the Epson ESC/POS
// application programming guide; mnemonics are given in the trailing
// comments.

// Control characters.
const (
	NUL = 0x00
	ESC = 0x1B
	FS  = 0x1C
	GS  = 0x1D
	LF  = 0x0A
)

// Hardware commands.
var (
	Initialize = []byte{ESC, 0x40}       // ESC @
	Select     = []byte{ESC, 0x3D, 0x01} // ESC = 1
	Reset      = []byte{ESC, 0x3F, 0x0A, 0x00}
)

// Feed control.
var (
	LineFeed     = []byte{LF}
	FormFeed     = []byte{0x0C}
	PrintAndFeed = []byte{ESC, 0x64} // ESC d + n
)

// Text style.
var (
	TextNormal = []byte{ESC, 0x21, 0x00} // ESC ! 0
	TextSize   = []byte{GS, 0x21}        // GS ! + n

	BoldOn  = []byte{ESC, 0x45, 0x01} // ESC E 1
	BoldOff = []byte{ESC, 0x45, 0x00} // ESC E 0

	UnderlineOff  = []byte{ESC, 0x2D, 0x00} // ESC - 0
	Underline1Dot = []byte{ESC, 0x2D, 0x01} // ESC - 1
	Underline2Dot = []byte{ESC, 0x2D, 0x02} // ESC - 2

	AlignLeft   = []byte{ESC, 0x61, 0x00} // ESC a 0
	AlignCenter = []byte{ESC, 0x61, 0x01} // ESC a 1
	AlignRight  = []byte{ESC, 0x61, 0x02} // ESC a 2

	InvertOn  = []byte{GS, 0x42, 0x01} // GS B 1
	InvertOff = []byte{GS, 0x42, 0x00} // GS B 0

	FlipOn  = []byte{ESC, 0x7B, 0x01} // ESC { 1
	FlipOff = []byte{ESC, 0x7B, 0x00} // ESC { 0

	SmoothOn  = []byte{GS, 0x62, 0x01} // GS b 1
	SmoothOff = []byte{GS, 0x62, 0x00} // GS b 0

	SetFont = []byte{ESC, 0x4D} // ESC M + n
)

// densityLevels maps the 0-8 density setting to the GS | argument. The
// sequence is not monotonic on the wire; it mirrors the printer's own
// -50%..+50% ordering.
var densityLevels = [9]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x08, 0x07, 0x06, 0x05}

// Density returns the GS | command for a print density level 0-8.
func Density(level int) []byte {
	return []byte{GS, 0x7C, densityLevels[level]}
}

// Line spacing.
var (
	LineSpacingReset = []byte{ESC, 0x32}       // ESC 2
	LineSpacing180   = []byte{ESC, 0x33}       // ESC 3 + n (n/180 inch)
	LineSpacing360   = []byte{ESC, 0x2B}       // ESC + + n (n/360 inch)
	LineSpacing60    = []byte{ESC, 0x41}       // ESC A + n (n/60 inch)
	CodePageChange   = []byte{ESC, 0x74}       // ESC t + n
	KanjiModeEnter   = []byte{FS, 0x26}        // FS &
	KanjiModeExit    = []byte{FS, 0x2E}        // FS .
	CharSpacing      = []byte{ESC, 0x20}       // ESC SP + n
	PanelButtonsOn   = []byte{ESC, 0x63, 0x35, 0x00}
	PanelButtonsOff  = []byte{ESC, 0x63, 0x35, 0x01}
)

// Paper cutter.
var (
	PaperFullCut = []byte{GS, 0x56, 0x00} // GS V 0
	PaperPartCut = []byte{GS, 0x56, 0x01} // GS V 1
)

// Cash drawer kick pulses (ESC p <pin> <on: 2*ms> <off: 2*ms>).
var (
	DrawerKickPin2 = []byte{ESC, 0x70, 0x00, 0x32, 0x32}
	DrawerKickPin5 = []byte{ESC, 0x70, 0x01, 0x32, 0x32}
)

// Buzzer (ESC B <times> <duration>, supported printers only).
var Buzzer = []byte{ESC, 0x42}

// Image transfer.
var (
	RasterImage   = []byte{GS, 0x76, 0x30}       // GS v 0 (obsolete raster bit image)
	GraphicsData  = []byte{GS, 0x28, 0x4C}       // GS ( L
	ColumnImage   = []byte{ESC, 0x2A}            // ESC * + m nL nH
	TwoDCodeData  = []byte{GS, 0x28, 0x6B}       // GS ( k
)

// Barcode setup.
var (
	BarcodeHeight  = []byte{GS, 0x68} // GS h + n [1-255]
	BarcodeWidth   = []byte{GS, 0x77} // GS w + n [2-6]
	BarcodeFontA   = []byte{GS, 0x66, 0x00}
	BarcodeFontB   = []byte{GS, 0x66, 0x01}
	BarcodeTxtOff  = []byte{GS, 0x48, 0x00}
	BarcodeTxtAbv  = []byte{GS, 0x48, 0x01}
	BarcodeTxtBlw  = []byte{GS, 0x48, 0x02}
	BarcodeTxtBoth = []byte{GS, 0x48, 0x03}
)

// setBarcodeType builds the common prefix of the two "print bar code"
// command families:
//
//	type A: GS k <type as integer> <data> NUL
//	type B: GS k <type as letter> <data length> <data>
func setBarcodeType(m byte) []byte {
	return []byte{GS, 0x6B, m}
}

// intLowHigh encodes n little-endian into width bytes (1-4), the way every
// multi-byte ESC/POS argument is laid out.
func intLowHigh(n, width int) []byte {
	out := make([]byte, width)
	for i := 0; i < width; i++ {
		out[i] = byte(n & 0xFF)
		n >>= 8
	}
	return out
}

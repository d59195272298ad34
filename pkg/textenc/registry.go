package textenc

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// The registry maps canonical code page names to one of two encoding
// sources: a native codec handle from x/text, or a literal table of the
// 128 high-range characters (byte values 128-255). Byte values 0-127 are
// ASCII on every code page and never consult the registry.

var codecs = map[string]*charmap.Charmap{
	"CP437":      charmap.CodePage437,
	"CP850":      charmap.CodePage850,
	"CP852":      charmap.CodePage852,
	"CP855":      charmap.CodePage855,
	"CP858":      charmap.CodePage858,
	"CP860":      charmap.CodePage860,
	"CP862":      charmap.CodePage862,
	"CP863":      charmap.CodePage863,
	"CP865":      charmap.CodePage865,
	"CP866":      charmap.CodePage866,
	"CP1250":     charmap.Windows1250,
	"CP1251":     charmap.Windows1251,
	"CP1252":     charmap.Windows1252,
	"CP1253":     charmap.Windows1253,
	"CP1254":     charmap.Windows1254,
	"CP1255":     charmap.Windows1255,
	"CP1256":     charmap.Windows1256,
	"CP1257":     charmap.Windows1257,
	"CP1258":     charmap.Windows1258,
	"ISO8859-2":  charmap.ISO8859_2,
	"ISO8859-5":  charmap.ISO8859_5,
	"ISO8859-7":  charmap.ISO8859_7,
	"ISO8859-9":  charmap.ISO8859_9,
	"ISO8859-15": charmap.ISO8859_15,
	"KOI8-R":     charmap.KOI8R,
	"KOI8-U":     charmap.KOI8U,
}

var (
	tablesMu sync.RWMutex
	tables   = map[string][128]rune{}
)

func init() {
	// JIS X 0201 half-width katakana, bytes 0xA1-0xDF. Kept as a literal
	// table because no x/text codec covers the legacy "Katakana" page.
	var kana [128]rune
	for b := 0xA1; b <= 0xDF; b++ {
		kana[b-128] = rune(0xFF61 + (b - 0xA1))
	}
	tables["KATAKANA"] = kana
}

// CanonicalName normalizes a code page name to its registry form.
func CanonicalName(name string) string {
	return strings.ToUpper(name)
}

// Known reports whether the registry can supply an encoding for name.
// Capability profile loaders use it to reject profiles that reference
// code pages this build cannot encode.
func Known(name string) bool {
	name = CanonicalName(name)
	if _, ok := codecs[name]; ok {
		return true
	}
	tablesMu.RLock()
	defer tablesMu.RUnlock()
	_, ok := tables[name]
	return ok
}

// RegisterTable installs a literal high-range table for a code page that has
// no native codec. The table must hold exactly 128 entries, one per byte
// value 128-255; a zero rune marks an unassigned slot.
func RegisterTable(name string, table [128]rune) {
	tablesMu.Lock()
	defer tablesMu.Unlock()
	tables[CanonicalName(name)] = table
}

// highRangeChars returns the 128 characters a code page assigns to byte
// values 128-255. For codec-backed pages this probes the codec once per
// slot; unassigned slots come back as the zero rune.
func highRangeChars(name string) ([128]rune, error) {
	name = CanonicalName(name)

	tablesMu.RLock()
	table, ok := tables[name]
	tablesMu.RUnlock()
	if ok {
		return table, nil
	}

	cm, ok := codecs[name]
	if !ok {
		return [128]rune{}, fmt.Errorf("code page %q: %w", name, ErrUnknownCodePage)
	}
	var chars [128]rune
	for i := 0; i < 128; i++ {
		r := cm.DecodeByte(byte(128 + i))
		if r == utf8.RuneError {
			continue // unassigned slot
		}
		chars[i] = r
	}
	return chars, nil
}

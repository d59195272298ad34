package textenc

import "fmt"

// Sink receives finished byte sequences. escpos.Sink satisfies it.
type Sink interface {
	Raw(data []byte) error
}

// codePageChange is the ESC t prefix; the code page index byte follows.
var codePageChange = []byte{0x1B, 0x74}

// Half-width katakana block (JIS X 0201). Runs of these characters bypass
// the single-byte code page machinery entirely: no selectable code page
// carries them, the printer renders them from a fixed legacy mapping.
const (
	katakanaFirst = 0xFF61
	katakanaLast  = 0xFF9F
)

func isKatakana(r rune) bool {
	return r >= katakanaFirst && r <= katakanaLast
}

func encodeKatakana(runes []rune) []byte {
	out := make([]byte, len(runes))
	for i, r := range runes {
		out[i] = byte(0xA1 + (r - katakanaFirst))
	}
	return out
}

// MagicEncoder renders Unicode text as code-page bytes, switching the
// printer's active code page as needed. It walks the input in maximal runs
// encodable under the active page, searches the profile for an alternate
// page when a character fails and substitutes the default symbol when no
// page can help.
//
// The two states are "no code page selected" and "code page active"; a
// transition happens only when the next character is not encodable under
// the active page.
type MagicEncoder struct {
	sink Sink
	enc  *Encoder

	encoding      string // active code page, "" when none selected
	emitted       string // code page last physically selected on the sink
	disabled      bool
	defaultSymbol rune
}

// Option configures a MagicEncoder.
type Option func(*MagicEncoder)

// WithEncoding sets the code page assumed active on the device at start.
func WithEncoding(name string) Option {
	return func(m *MagicEncoder) {
		m.encoding = CanonicalName(name)
		m.emitted = m.encoding
	}
}

// Disabled turns automatic code page search off. Requires WithEncoding;
// every character is then encoded under that fixed page.
func Disabled() Option {
	return func(m *MagicEncoder) { m.disabled = true }
}

// WithDefaultSymbol sets the substitute for unencodable characters.
// The default is '?'.
func WithDefaultSymbol(r rune) Option {
	return func(m *MagicEncoder) { m.defaultSymbol = r }
}

// NewMagicEncoder builds a MagicEncoder writing to sink. Disabling the
// automatic search without a fixed encoding is contradictory and reported
// here, not on first write.
func NewMagicEncoder(sink Sink, enc *Encoder, opts ...Option) (*MagicEncoder, error) {
	m := &MagicEncoder{
		sink:          sink,
		enc:           enc,
		defaultSymbol: '?',
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled && m.encoding == "" {
		return nil, ErrDisabledWithoutEncoding
	}
	if m.encoding != "" {
		if _, err := m.enc.Sequence(m.encoding); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Write appends text to the sink, interleaving code-page-switch commands as
// needed. This is the entry point for free-form text.
func (m *MagicEncoder) Write(text string) error {
	if m.disabled {
		return m.WriteWithEncoding(m.encoding, text)
	}

	runes := []rune(text)
	for i := 0; i < len(runes); {
		r := runes[i]

		if isKatakana(r) {
			j := i
			for j < len(runes) && isKatakana(runes[j]) {
				j++
			}
			if err := m.sink.Raw(encodeKatakana(runes[i:j])); err != nil {
				return err
			}
			i = j
			continue
		}

		page := m.encoding
		if page == "" || !m.enc.CanEncode(page, r) {
			found, ok := m.enc.FindSuitable(r)
			if !ok {
				if r == m.defaultSymbol {
					return fmt.Errorf("substituting %q: %w", r, ErrDefaultSymbol)
				}
				runes[i] = m.defaultSymbol
				continue
			}
			page = found
		}

		j := i
		for j < len(runes) && !isKatakana(runes[j]) && m.enc.CanEncode(page, runes[j]) {
			j++
		}
		if err := m.writeRun(page, string(runes[i:j])); err != nil {
			return err
		}
		i = j
	}
	return nil
}

// WriteWithEncoding forces a specific code page immediately and encodes
// text under it, substituting the default symbol for anything the page
// cannot carry. Used by explicit caller overrides.
func (m *MagicEncoder) WriteWithEncoding(name, text string) error {
	return m.writeRun(CanonicalName(name), text)
}

// ForceEncoding pins the encoder to one code page; an empty name re-enables
// the automatic search without emitting anything.
func (m *MagicEncoder) ForceEncoding(name string) error {
	if name == "" {
		m.disabled = false
		return nil
	}
	if err := m.WriteWithEncoding(name, ""); err != nil {
		return err
	}
	m.disabled = true
	return nil
}

// Encoding returns the active code page name, "" when none is selected.
func (m *MagicEncoder) Encoding() string {
	return m.encoding
}

// writeRun emits one run of text under one code page, preceded by a switch
// command when the page differs from what the sink last saw. The command
// and payload are emitted back to back; interleaving writes from elsewhere
// between them corrupts the stream.
func (m *MagicEncoder) writeRun(page, text string) error {
	seq, err := m.enc.Sequence(page)
	if err != nil {
		return err
	}
	if m.emitted != page {
		cmd := append(append([]byte{}, codePageChange...), byte(seq))
		if err := m.sink.Raw(cmd); err != nil {
			return err
		}
		m.emitted = page
	}
	m.encoding = page
	m.enc.Memorize(page)
	if text == "" {
		return nil
	}
	return m.sink.Raw(m.enc.Encode(text, page, m.defaultByte()))
}

func (m *MagicEncoder) defaultByte() byte {
	if m.defaultSymbol < 128 {
		return byte(m.defaultSymbol)
	}
	return '?'
}

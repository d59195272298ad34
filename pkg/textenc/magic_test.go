package textenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	data []byte
}

func (c *captureSink) Raw(data []byte) error {
	c.data = append(c.data, data...)
	return nil
}

func twoPageEncoder() *Encoder {
	return NewEncoder(map[string]int{"CP437": 0, "CP858": 2})
}

func TestWriteSwitchesOnlyWhenNeeded(t *testing.T) {
	sink := &captureSink{}
	m, err := NewMagicEncoder(sink, twoPageEncoder(), WithEncoding("CP437"))
	require.NoError(t, err)

	// The euro sign forces CP858; the ASCII tail stays in the same run,
	// so exactly one switch command appears.
	require.NoError(t, m.Write("€ test"))
	assert.Equal(t, []byte{0x1B, 0x74, 2, 0xD5, ' ', 't', 'e', 's', 't'}, sink.data)
	assert.Equal(t, "CP858", m.Encoding())
}

func TestWriteNoSwitchForStartEncoding(t *testing.T) {
	sink := &captureSink{}
	m, err := NewMagicEncoder(sink, twoPageEncoder(), WithEncoding("CP437"))
	require.NoError(t, err)

	// Text encodable under the assumed start page emits no command.
	require.NoError(t, m.Write("hello"))
	assert.Equal(t, []byte("hello"), sink.data)
}

func TestWriteSelectsPageWhenNoneActive(t *testing.T) {
	sink := &captureSink{}
	m, err := NewMagicEncoder(sink, twoPageEncoder())
	require.NoError(t, err)

	// With no page active even ASCII needs one selected first.
	require.NoError(t, m.Write("hi"))
	assert.Equal(t, []byte{0x1B, 0x74, 0, 'h', 'i'}, sink.data)
}

func TestWriteAlternatingPages(t *testing.T) {
	sink := &captureSink{}
	m, err := NewMagicEncoder(sink, twoPageEncoder(), WithEncoding("CP437"))
	require.NoError(t, err)

	// π is CP437-only (0xE3), € is CP858-only: two switches, no more.
	require.NoError(t, m.Write("€π€"))
	assert.Equal(t, []byte{
		0x1B, 0x74, 2, 0xD5,
		0x1B, 0x74, 0, 0xE3,
		0x1B, 0x74, 2, 0xD5,
	}, sink.data)
}

func TestWriteKatakanaBypassesCodePages(t *testing.T) {
	sink := &captureSink{}
	m, err := NewMagicEncoder(sink, twoPageEncoder(), WithEncoding("CP437"))
	require.NoError(t, err)

	require.NoError(t, m.Write("ｱｲｳ"))
	assert.Equal(t, []byte{0xB1, 0xB2, 0xB3}, sink.data)
	// The active page is untouched by the bypass.
	assert.Equal(t, "CP437", m.Encoding())
}

func TestWriteKatakanaSplitsRuns(t *testing.T) {
	sink := &captureSink{}
	m, err := NewMagicEncoder(sink, twoPageEncoder(), WithEncoding("CP437"))
	require.NoError(t, err)

	require.NoError(t, m.Write("abｱcd"))
	assert.Equal(t, []byte{'a', 'b', 0xB1, 'c', 'd'}, sink.data)
}

func TestWriteSubstitutesDefaultSymbol(t *testing.T) {
	sink := &captureSink{}
	m, err := NewMagicEncoder(sink, twoPageEncoder(), WithEncoding("CP437"))
	require.NoError(t, err)

	require.NoError(t, m.Write("a日b"))
	assert.Equal(t, []byte{'a', '?', 'b'}, sink.data)
}

func TestWriteFailsWhenDefaultSymbolUnencodable(t *testing.T) {
	sink := &captureSink{}
	m, err := NewMagicEncoder(sink, twoPageEncoder(),
		WithEncoding("CP437"), WithDefaultSymbol('日'))
	require.NoError(t, err)

	err = m.Write("日")
	assert.ErrorIs(t, err, ErrDefaultSymbol)
}

func TestDisabledRequiresEncoding(t *testing.T) {
	sink := &captureSink{}
	_, err := NewMagicEncoder(sink, twoPageEncoder(), Disabled())
	assert.ErrorIs(t, err, ErrDisabledWithoutEncoding)
}

func TestDisabledEncodesUnderFixedPage(t *testing.T) {
	sink := &captureSink{}
	m, err := NewMagicEncoder(sink, twoPageEncoder(),
		WithEncoding("CP437"), Disabled())
	require.NoError(t, err)

	// The euro sign would normally force CP858; disabled mode
	// substitutes instead.
	require.NoError(t, m.Write("€a"))
	assert.Equal(t, []byte{'?', 'a'}, sink.data)
}

func TestNewMagicEncoderRejectsUnknownStartPage(t *testing.T) {
	sink := &captureSink{}
	_, err := NewMagicEncoder(sink, twoPageEncoder(), WithEncoding("CP1252"))
	assert.ErrorIs(t, err, ErrUnknownCodePage)
}

func TestForceEncoding(t *testing.T) {
	sink := &captureSink{}
	m, err := NewMagicEncoder(sink, twoPageEncoder(), WithEncoding("CP437"))
	require.NoError(t, err)

	require.NoError(t, m.ForceEncoding("CP858"))
	assert.Equal(t, []byte{0x1B, 0x74, 2}, sink.data)

	// π is not in CP858; the pin forbids switching back.
	sink.data = nil
	require.NoError(t, m.Write("π"))
	assert.Equal(t, []byte{'?'}, sink.data)

	// The empty name lifts the pin without emitting anything.
	sink.data = nil
	require.NoError(t, m.ForceEncoding(""))
	require.NoError(t, m.Write("π"))
	assert.Equal(t, []byte{0x1B, 0x74, 0, 0xE3}, sink.data)
}

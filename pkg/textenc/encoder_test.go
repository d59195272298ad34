package textenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderSequence(t *testing.T) {
	enc := NewEncoder(map[string]int{"CP437": 0, "cp858": 2})

	seq, err := enc.Sequence("CP437")
	require.NoError(t, err)
	assert.Equal(t, 0, seq)

	// Names are canonicalized on both sides.
	seq, err = enc.Sequence("cp858")
	require.NoError(t, err)
	assert.Equal(t, 2, seq)

	_, err = enc.Sequence("CP1252")
	assert.ErrorIs(t, err, ErrUnknownCodePage)
}

func TestEncoderCanEncode(t *testing.T) {
	enc := NewEncoder(map[string]int{"CP437": 0})

	// ASCII encodes under any page the registry backs.
	assert.True(t, enc.CanEncode("CP437", 'A'))

	// CP437 carries é at 0x82 but no euro sign.
	assert.True(t, enc.CanEncode("CP437", 'é'))
	assert.False(t, enc.CanEncode("CP437", '€'))

	// An unknown code page is unusable, not an error.
	assert.False(t, enc.CanEncode("NOPE", 'é'))
}

func TestEncoderUnknownPageRejectsASCII(t *testing.T) {
	// A page absent from the registry cannot carry anything, ASCII
	// included; selecting it would switch the device to an index no
	// encoding backs.
	enc := NewEncoder(map[string]int{"FOOBAR": 1})

	assert.False(t, enc.CanEncode("FOOBAR", 'a'))
	_, ok := enc.FindSuitable('a')
	assert.False(t, ok)
}

func TestFindSuitableSkipsUnknownPage(t *testing.T) {
	enc := NewEncoder(map[string]int{"FOOBAR": 0, "CP437": 1})

	name, ok := enc.FindSuitable('a')
	require.True(t, ok)
	assert.Equal(t, "CP437", name)
}

func TestEncoderEncode(t *testing.T) {
	enc := NewEncoder(map[string]int{"CP858": 2})

	out := enc.Encode("€ test", "CP858", '?')
	assert.Equal(t, []byte{0xD5, ' ', 't', 'e', 's', 't'}, out)

	// Unencodable characters become the substitute, never an error.
	out = enc.Encode("日", "CP858", '?')
	assert.Equal(t, []byte{'?'}, out)
}

func TestFindSuitablePrefersLowestSequence(t *testing.T) {
	enc := NewEncoder(map[string]int{"CP437": 0, "CP850": 2, "CP1252": 16})

	// õ lives in CP850 and CP1252 but not CP437; the lower index wins.
	name, ok := enc.FindSuitable('õ')
	require.True(t, ok)
	assert.Equal(t, "CP850", name)
}

func TestFindSuitablePrefersUsedEncodings(t *testing.T) {
	enc := NewEncoder(map[string]int{"CP437": 0, "CP850": 2, "CP1252": 16})

	enc.Memorize("CP1252")
	name, ok := enc.FindSuitable('õ')
	require.True(t, ok)
	assert.Equal(t, "CP1252", name)
}

func TestFindSuitableNoCandidate(t *testing.T) {
	enc := NewEncoder(map[string]int{"CP437": 0})

	_, ok := enc.FindSuitable('日')
	assert.False(t, ok)
}

func TestRegisteredLiteralTable(t *testing.T) {
	var table [128]rune
	table[0x69] = 'é' // byte 0xE9
	RegisterTable("TEST-LITERAL", table)

	enc := NewEncoder(map[string]int{"TEST-LITERAL": 7})
	assert.True(t, enc.CanEncode("TEST-LITERAL", 'é'))
	assert.Equal(t, []byte{0xE9}, enc.Encode("é", "TEST-LITERAL", '?'))
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("CP437"))
	assert.True(t, Known(CanonicalName("katakana")))
	assert.False(t, Known("CP9999"))
}

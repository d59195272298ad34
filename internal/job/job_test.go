package job

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"printgen/internal/config"
	"printgen/pkg/escpos"
	"printgen/pkg/profile"
)

const receiptDoc = `
profile: default
steps:
  - set:
      align: center
      bold: true
  - text: "STORE 42"
  - set:
      align: left
  - text:
      content: "total: "
      no_feed: true
  - text: "9.50"
  - feed: 2
  - cut:
      partial: true
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(receiptDoc))
	require.NoError(t, err)

	assert.Equal(t, "default", doc.Profile)
	require.Len(t, doc.Steps, 7)
	assert.Equal(t, "STORE 42", doc.Steps[1].Text.Content)
	assert.True(t, doc.Steps[3].Text.NoFeed)
	assert.True(t, doc.Steps[6].Cut.Partial)
}

func TestParseDocumentRejectsEmptyStep(t *testing.T) {
	_, err := ParseDocument([]byte("steps:\n  - {}\n"))
	assert.Error(t, err)
}

func TestParseDocumentRejectsAmbiguousStep(t *testing.T) {
	_, err := ParseDocument([]byte("steps:\n  - text: hi\n    feed: 2\n"))
	assert.Error(t, err)
}

func testPrinter(t *testing.T) (*escpos.Printer, *escpos.Buffer) {
	t.Helper()
	prof, err := profile.Load("default")
	require.NoError(t, err)
	sink := &escpos.Buffer{}
	p, err := escpos.NewPrinter(sink, prof, nil)
	require.NoError(t, err)
	return p, sink
}

func TestRunReceipt(t *testing.T) {
	doc, err := ParseDocument([]byte(receiptDoc))
	require.NoError(t, err)

	p, sink := testPrinter(t)
	runner := NewRunner(&config.RenderConfig{HighDensity: true}, zap.NewNop())
	require.NoError(t, runner.Run(doc, p))

	out := sink.Bytes()
	assert.True(t, bytes.Contains(out, []byte("STORE 42")))
	assert.True(t, bytes.Contains(out, []byte("total: 9.50")))
	// The job ends with feed and partial cut.
	assert.True(t, bytes.HasSuffix(out, []byte{0x1D, 'V', 1}))
}

func TestRunRawStep(t *testing.T) {
	doc, err := ParseDocument([]byte("steps:\n  - raw: \"1b40\"\n"))
	require.NoError(t, err)

	p, sink := testPrinter(t)
	runner := NewRunner(&config.RenderConfig{}, zap.NewNop())
	require.NoError(t, runner.Run(doc, p))
	assert.Equal(t, []byte{0x1B, 0x40}, sink.Bytes())
}

func TestRunRawStepBadHex(t *testing.T) {
	doc, err := ParseDocument([]byte("steps:\n  - raw: \"zz\"\n"))
	require.NoError(t, err)

	p, _ := testPrinter(t)
	runner := NewRunner(&config.RenderConfig{}, zap.NewNop())
	assert.Error(t, runner.Run(doc, p))
}

func TestRunAbortsOnFirstFailure(t *testing.T) {
	doc, err := ParseDocument([]byte(`
steps:
  - barcode:
      type: EAN13
      content: "oops"
  - text: "never printed"
`))
	require.NoError(t, err)

	p, sink := testPrinter(t)
	runner := NewRunner(&config.RenderConfig{HighDensity: true}, zap.NewNop())
	require.Error(t, runner.Run(doc, p))
	assert.False(t, bytes.Contains(sink.Bytes(), []byte("never printed")))
}

// Package job parses and executes render job documents: a YAML list of
// print steps that is replayed against a printer to produce one command
// stream.
package job

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is one render job.
type Document struct {
	// Profile overrides the configured capability profile for this job.
	Profile string `yaml:"profile"`
	Steps   []Step `yaml:"steps"`
}

// Step is one print operation. Exactly one of the operation fields must be
// set; the parser rejects ambiguous steps so a typo cannot silently drop
// half a receipt.
type Step struct {
	Text     *TextStep    `yaml:"text"`
	Set      *SetStep     `yaml:"set"`
	Charcode string       `yaml:"charcode"`
	Image    *ImageStep   `yaml:"image"`
	Barcode  *BarcodeStep `yaml:"barcode"`
	QR       *QRStep      `yaml:"qr"`
	Feed     int          `yaml:"feed"`
	Cut      *CutStep     `yaml:"cut"`
	Cashdraw int          `yaml:"cashdraw"`
	Buzzer   *BuzzerStep  `yaml:"buzzer"`
	Raw      string       `yaml:"raw"` // hex digits
}

// TextStep prints text. A bare string in the YAML is shorthand for a
// line of text.
type TextStep struct {
	Content string `yaml:"content"`
	NoFeed  bool   `yaml:"no_feed"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (t *TextStep) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		t.Content = value.Value
		return nil
	}
	type plain TextStep
	return value.Decode((*plain)(t))
}

// SetStep adjusts the text formatting state.
type SetStep struct {
	Align     string `yaml:"align"`
	Font      string `yaml:"font"`
	Bold      bool   `yaml:"bold"`
	Underline int    `yaml:"underline"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Invert    bool   `yaml:"invert"`
	Smooth    bool   `yaml:"smooth"`
	Flip      bool   `yaml:"flip"`
}

// ImageStep prints an image file.
type ImageStep struct {
	Path           string `yaml:"path"`
	Impl           string `yaml:"impl"`
	Center         bool   `yaml:"center"`
	FragmentHeight int    `yaml:"fragment_height"`
}

// BarcodeStep prints a barcode.
type BarcodeStep struct {
	Type         string `yaml:"type"`
	Content      string `yaml:"content"`
	Height       int    `yaml:"height"`
	Width        int    `yaml:"width"`
	TextPosition string `yaml:"text_position"`
	Font         string `yaml:"font"`
	Software     string `yaml:"software"`
	SkipCheck    bool   `yaml:"skip_check"`
}

// QRStep prints a QR code.
type QRStep struct {
	Content string `yaml:"content"`
	Size    int    `yaml:"size"`
	EC      int    `yaml:"ec"`
	Model   int    `yaml:"model"`
	Center  bool   `yaml:"center"`
	Native  *bool  `yaml:"native"`
}

// CutStep cuts the paper.
type CutStep struct {
	Partial bool `yaml:"partial"`
	Feed    int  `yaml:"feed"`
}

// BuzzerStep sounds the buzzer.
type BuzzerStep struct {
	Times    int `yaml:"times"`
	Duration int `yaml:"duration"`
}

// LoadDocument reads and parses a job document file.
func LoadDocument(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job document: %w", err)
	}
	return ParseDocument(raw)
}

// ParseDocument parses a job document from raw YAML.
func ParseDocument(raw []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse job document: %w", err)
	}
	for i := range doc.Steps {
		if err := doc.Steps[i].validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &doc, nil
}

func (s *Step) validate() error {
	n := 0
	if s.Text != nil {
		n++
	}
	if s.Set != nil {
		n++
	}
	if s.Charcode != "" {
		n++
	}
	if s.Image != nil {
		n++
	}
	if s.Barcode != nil {
		n++
	}
	if s.QR != nil {
		n++
	}
	if s.Feed != 0 {
		n++
	}
	if s.Cut != nil {
		n++
	}
	if s.Cashdraw != 0 {
		n++
	}
	if s.Buzzer != nil {
		n++
	}
	if s.Raw != "" {
		n++
	}
	switch n {
	case 0:
		return fmt.Errorf("empty step")
	case 1:
		return nil
	}
	return fmt.Errorf("step sets %d operations, want exactly one", n)
}

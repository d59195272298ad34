package job

import (
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"go.uber.org/zap"

	"printgen/internal/config"
	"printgen/pkg/escpos"
)

// Runner replays job documents against a printer.
type Runner struct {
	cfg    *config.RenderConfig
	logger *zap.Logger
}

// NewRunner builds a Runner using the configured render defaults.
func NewRunner(cfg *config.RenderConfig, logger *zap.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// Run executes every step of doc in order. The first failing step aborts
// the job; a partial command stream must not reach a device.
func (r *Runner) Run(doc *Document, p *escpos.Printer) error {
	r.logger.Debug("running job document", zap.Int("steps", len(doc.Steps)))
	for i, step := range doc.Steps {
		if err := r.runStep(&step, p); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *Runner) runStep(s *Step, p *escpos.Printer) error {
	switch {
	case s.Text != nil:
		if s.Text.NoFeed {
			return p.Text(s.Text.Content)
		}
		return p.TextLn(s.Text.Content)

	case s.Set != nil:
		style := escpos.DefaultStyle()
		style.Align = s.Set.Align
		if s.Set.Font != "" {
			style.Font = s.Set.Font
		}
		style.Bold = s.Set.Bold
		style.Underline = s.Set.Underline
		if s.Set.Width > 0 {
			style.Width = s.Set.Width
		}
		if s.Set.Height > 0 {
			style.Height = s.Set.Height
		}
		style.Invert = s.Set.Invert
		style.Smooth = s.Set.Smooth
		style.Flip = s.Set.Flip
		return p.Set(style)

	case s.Charcode != "":
		return p.Charcode(s.Charcode)

	case s.Image != nil:
		img, err := loadImage(s.Image.Path)
		if err != nil {
			return err
		}
		opts := escpos.DefaultImageOptions()
		opts.Impl = s.Image.Impl
		if opts.Impl == "" {
			opts.Impl = r.cfg.ImageImpl
		}
		opts.Center = s.Image.Center
		opts.FragmentHeight = s.Image.FragmentHeight
		if opts.FragmentHeight == 0 {
			opts.FragmentHeight = r.cfg.ImageFragmentHeight
		}
		opts.HighDensityVertical = r.cfg.HighDensity
		opts.HighDensityHorizontal = r.cfg.HighDensity
		return p.Image(img, opts)

	case s.Barcode != nil:
		opts := escpos.DefaultBarcodeOptions()
		if s.Barcode.Height > 0 {
			opts.Height = s.Barcode.Height
		}
		if s.Barcode.Width > 0 {
			opts.Width = s.Barcode.Width
		}
		if s.Barcode.TextPosition != "" {
			opts.TextPosition = s.Barcode.TextPosition
		}
		if s.Barcode.Font != "" {
			opts.Font = s.Barcode.Font
		}
		opts.SkipCheck = s.Barcode.SkipCheck
		opts.ForceSoftware = s.Barcode.Software
		if opts.ForceSoftware == "" && r.cfg.BarcodeSoftware {
			opts.ForceSoftware = "true"
		}
		return p.Barcode(s.Barcode.Type, s.Barcode.Content, opts)

	case s.QR != nil:
		opts := escpos.DefaultQROptions()
		if s.QR.Size > 0 {
			opts.Size = s.QR.Size
		}
		opts.EC = s.QR.EC
		if s.QR.Model > 0 {
			opts.Model = s.QR.Model
		}
		opts.Center = s.QR.Center
		if s.QR.Native != nil {
			opts.Native = *s.QR.Native
		}
		return p.QR(s.QR.Content, opts)

	case s.Feed != 0:
		return p.Feed(s.Feed)

	case s.Cut != nil:
		return p.Cut(s.Cut.Partial, s.Cut.Feed)

	case s.Cashdraw != 0:
		return p.Cashdraw(s.Cashdraw)

	case s.Buzzer != nil:
		return p.Buzz(s.Buzzer.Times, s.Buzzer.Duration)

	case s.Raw != "":
		data, err := hex.DecodeString(s.Raw)
		if err != nil {
			return fmt.Errorf("raw step: %w", err)
		}
		return p.Raw(data)
	}
	return fmt.Errorf("empty step")
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

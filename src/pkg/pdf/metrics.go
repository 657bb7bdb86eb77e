// Package pdf serializes canvas documents with gofpdf and supplies the core
// font metrics the layout is computed with.
package pdf

import (
	"sync"

	"github.com/phpdave11/gofpdf"

	"embroidery-reports/src/pkg/canvas"
)

// points returns a gofpdf document using points as the user unit.
func points(cfg canvas.PageConfig) *gofpdf.Fpdf {
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: cfg.Width, Ht: cfg.Height},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	return doc
}

/*
Metrics measures strings with the widths of the PDF core fonts, after the
same cp1252 translation the renderer applies, so what the layout measures is
what ends up on the page.

It keeps one scratch gofpdf document and is safe for concurrent use.
*/
type Metrics struct {
	mu        sync.Mutex
	scratch   *gofpdf.Fpdf
	translate func(string) string
}

func NewMetrics() *Metrics {
	scratch := points(canvas.A4())
	return &Metrics{
		scratch:   scratch,
		translate: scratch.UnicodeTranslatorFromDescriptor(""),
	}
}

// Measure implements canvas.Measurer.
func (m *Metrics) Measure(s string, font canvas.Font, size float64) float64 {
	if s == "" {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.scratch.SetFont(font.Family, font.Style, size)
	return m.scratch.GetStringWidth(m.translate(s))
}

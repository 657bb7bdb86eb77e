package canvas

import (
	"embroidery-reports/src/pkg/textlayout"
)

// LineSpacing is the line height of free text as a multiple of its size.
const LineSpacing = 1.35

/*
Canvas is a cursor over a growing list of pages.

The cursor starts at the top margin of the first page and only moves down.
Callers reserve vertical room with EnsureSpace before drawing content whose
height is not yet known to fit; EnsureSpace starts a new page when needed.
A Canvas belongs to a single report generation and is not safe for
concurrent use.
*/
type Canvas struct {
	cfg      PageConfig
	measurer Measurer
	doc      *Document
	page     *Page
	cursorY  float64

	TableStyle TableStyle
}

// New creates a canvas with one empty page.
func New(cfg PageConfig, measurer Measurer, info Info) *Canvas {
	c := &Canvas{
		cfg:        cfg,
		measurer:   measurer,
		doc:        &Document{Config: cfg, Info: info},
		TableStyle: DefaultTableStyle(),
	}
	c.NewPage()
	return c
}

// Document returns the pages drawn so far.
func (c *Canvas) Document() *Document {
	return c.doc
}

func (c *Canvas) CursorY() float64 {
	return c.cursorY
}

func (c *Canvas) PageNumber() int {
	return c.page.Number
}

// Left is the x of the left margin.
func (c *Canvas) Left() float64 {
	return c.cfg.Margin
}

// ContentWidth is the page width between the margins.
func (c *Canvas) ContentWidth() float64 {
	return c.cfg.Width - 2*c.cfg.Margin
}

// top is the cursor position of a fresh page.
func (c *Canvas) top() float64 {
	return c.cfg.Height - c.cfg.Margin
}

// usableHeight is the vertical room of a fresh page.
func (c *Canvas) usableHeight() float64 {
	return c.cfg.Height - 2*c.cfg.Margin
}

// NewPage appends a page and moves the cursor to its top margin.
func (c *Canvas) NewPage() {
	c.page = &Page{Number: len(c.doc.Pages) + 1}
	c.doc.Pages = append(c.doc.Pages, c.page)
	c.cursorY = c.top()
}

/*
EnsureSpace makes sure height points fit below the cursor, starting a new page
when cursorY-height would cross the bottom margin. It reports whether a page
was added. A page whose cursor is still at the top is never abandoned.
*/
func (c *Canvas) EnsureSpace(height float64) bool {
	if c.cursorY-height >= c.cfg.Margin {
		return false
	}
	if c.cursorY >= c.top() {
		return false
	}
	c.NewPage()
	return true
}

// Advance moves the cursor down, never below the bottom margin.
func (c *Canvas) Advance(dy float64) {
	c.cursorY = max(c.cursorY-dy, c.cfg.Margin)
}

// DrawText places text with its baseline at y on the current page.
func (c *Canvas) DrawText(text string, x, y float64, font Font, size float64, color Color) {
	c.page.Ops = append(c.page.Ops, TextOp{Text: text, X: x, Y: y, Font: font, Size: size, Color: color})
}

// DrawRectangle draws a rectangle with its bottom-left corner at (x, y).
// A nil fill or stroke leaves that part out.
func (c *Canvas) DrawRectangle(x, y, width, height float64, fill *Color, stroke *Color) {
	c.page.Ops = append(c.page.Ops, RectOp{X: x, Y: y, W: width, H: height, Fill: fill, Stroke: stroke})
}

func (c *Canvas) DrawLine(x1, y1, x2, y2 float64, width float64, color Color) {
	c.page.Ops = append(c.page.Ops, LineOp{X1: x1, Y1: y1, X2: x2, Y2: y2, Width: width, Color: color})
}

// DrawImage places PNG data with its bottom-left corner at (x, y).
func (c *Canvas) DrawImage(name string, data []byte, x, y, width, height float64) {
	c.page.Ops = append(c.page.Ops, ImageOp{Name: name, Data: data, X: x, Y: y, W: width, H: height})
}

// MeasureText returns the width of s in the given font.
func (c *Canvas) MeasureText(s string, font Font, size float64) float64 {
	return c.measurer.Measure(s, font, size)
}

// Wrap wraps text to width using this canvas' metrics.
func (c *Canvas) Wrap(text string, font Font, size float64, width float64) ([]string, error) {
	measure := func(s string, size float64) float64 {
		return c.measurer.Measure(s, font, size)
	}
	return textlayout.Lines(text, measure, size, width)
}

// TextLine reserves one line, draws text at x and moves the cursor below it.
func (c *Canvas) TextLine(text string, x float64, font Font, size float64, color Color) {
	lineHeight := size * LineSpacing
	c.EnsureSpace(lineHeight)
	c.DrawText(text, x, c.cursorY-size, font, size, color)
	c.Advance(lineHeight)
}

// Paragraph wraps text into width and draws it line by line starting at x,
// breaking pages between lines as needed.
func (c *Canvas) Paragraph(text string, x float64, width float64, font Font, size float64, color Color) error {
	lines, err := c.Wrap(text, font, size, width)
	if err != nil {
		return err
	}
	for _, line := range lines {
		c.TextLine(line, x, font, size, color)
	}
	return nil
}

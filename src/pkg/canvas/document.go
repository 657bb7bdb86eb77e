// Package canvas lays out report content onto fixed-size pages.
//
// Coordinates are PDF points with the origin at the bottom-left corner of the
// page; y grows upwards. Drawing calls are recorded as ops on the current page
// and serialized later by a renderer.
package canvas

import "fmt"

// PageConfig is the fixed page geometry.
type PageConfig struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin"`
}

// A4 returns the 595x842pt page with 36pt margins.
func A4() PageConfig {
	return PageConfig{Width: 595, Height: 842, Margin: 36}
}

type Font struct {
	Family string
	Style  string
}

var (
	Regular = Font{Family: "Helvetica"}
	Bold    = Font{Family: "Helvetica", Style: "B"}
	Italic  = Font{Family: "Helvetica", Style: "I"}
)

type Color struct {
	R, G, B uint8
}

var (
	Black     = Color{17, 24, 39}
	Muted     = Color{107, 114, 128}
	Border    = Color{229, 231, 235}
	Surface   = Color{243, 244, 246}
	White     = Color{255, 255, 255}
	Accent    = Color{37, 99, 235}
	Positive  = Color{5, 150, 105}
	Negative  = Color{219, 39, 119}
	Highlight = Color{217, 119, 6}
)

// Measurer supplies font metrics.
type Measurer interface {
	Measure(s string, font Font, size float64) float64
}

// Op is one drawing instruction recorded on a page.
type Op interface {
	// Extent returns the lowest and highest y the op paints.
	Extent() (bottom float64, top float64)
}

// TextOp places text with its baseline at Y.
type TextOp struct {
	Text  string
	X, Y  float64
	Font  Font
	Size  float64
	Color Color
}

// Extent approximates ascender and descender as 0.8 and 0.2 of the size.
func (o TextOp) Extent() (float64, float64) {
	return o.Y - 0.2*o.Size, o.Y + 0.8*o.Size
}

// RectOp is a rectangle whose bottom-left corner is (X, Y).
type RectOp struct {
	X, Y, W, H float64
	Fill       *Color
	Stroke     *Color
}

func (o RectOp) Extent() (float64, float64) {
	return o.Y, o.Y + o.H
}

type LineOp struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Color          Color
}

func (o LineOp) Extent() (float64, float64) {
	return min(o.Y1, o.Y2), max(o.Y1, o.Y2)
}

// ImageOp places a PNG whose bottom-left corner is (X, Y).
type ImageOp struct {
	Name       string
	Data       []byte
	X, Y, W, H float64
}

func (o ImageOp) Extent() (float64, float64) {
	return o.Y, o.Y + o.H
}

type Page struct {
	Number int
	Ops    []Op
}

// Info is the document metadata written into the output file.
type Info struct {
	Title   string
	Author  string
	Subject string
	Creator string
}

// Document is the finished page list.
type Document struct {
	Config PageConfig
	Info   Info
	Pages  []*Page
}

// OpCount returns the number of ops over all pages.
func (d *Document) OpCount() int {
	count := 0
	for _, page := range d.Pages {
		count += len(page.Ops)
	}
	return count
}

// Texts returns every text op in drawing order.
func (d *Document) Texts() []TextOp {
	texts := make([]TextOp, 0)
	for _, page := range d.Pages {
		for _, op := range page.Ops {
			if text, ok := op.(TextOp); ok {
				texts = append(texts, text)
			}
		}
	}
	return texts
}

// DocumentAssemblyError wraps any failure while building or serializing a
// document, naming the section that was being drawn.
type DocumentAssemblyError struct {
	Section string
	Err     error
}

func (e *DocumentAssemblyError) Error() string {
	return fmt.Sprintf("assemble document (section %s): %v", e.Section, e.Err)
}

func (e *DocumentAssemblyError) Unwrap() error {
	return e.Err
}

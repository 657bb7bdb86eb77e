package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"embroidery-reports/src/pkg/canvas"
)

// SectionSerialize names serialization failures in canvas.DocumentAssemblyError.
const SectionSerialize = "serialize"

// Renderer writes canvas documents as PDF.
type Renderer struct {
	// CreatedAt is stamped into the file metadata; zero means now.
	CreatedAt time.Time
	// Compress turns stream compression on.
	Compress bool
}

func NewRenderer() *Renderer {
	return &Renderer{Compress: true}
}

/*
Render converts a document to PDF bytes.

Canvas coordinates grow upwards from the bottom-left corner while gofpdf
measures from the top-left, so every y is flipped against the page height.
Images are registered once per name. Any gofpdf failure comes back as a
*canvas.DocumentAssemblyError for the serialize section.
*/
func (r *Renderer) Render(doc *canvas.Document) ([]byte, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, &canvas.DocumentAssemblyError{Section: SectionSerialize, Err: fmt.Errorf("document has no pages")}
	}

	cfg := doc.Config
	out := points(cfg)
	out.SetCompression(r.Compress)
	out.SetTitle(doc.Info.Title, true)
	out.SetAuthor(doc.Info.Author, true)
	out.SetSubject(doc.Info.Subject, true)
	out.SetCreator(doc.Info.Creator, true)
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	out.SetCreationDate(createdAt)

	translate := out.UnicodeTranslatorFromDescriptor("")
	registered := make(map[string]bool)
	flip := func(y float64) float64 {
		return cfg.Height - y
	}

	for _, page := range doc.Pages {
		out.AddPage()
		for _, op := range page.Ops {
			switch op := op.(type) {
			case canvas.TextOp:
				out.SetFont(op.Font.Family, op.Font.Style, op.Size)
				out.SetTextColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
				out.Text(op.X, flip(op.Y), translate(op.Text))
			case canvas.RectOp:
				style := ""
				if op.Fill != nil {
					out.SetFillColor(int(op.Fill.R), int(op.Fill.G), int(op.Fill.B))
					style += "F"
				}
				if op.Stroke != nil {
					out.SetDrawColor(int(op.Stroke.R), int(op.Stroke.G), int(op.Stroke.B))
					out.SetLineWidth(0.75)
					style += "D"
				}
				if style == "" {
					continue
				}
				out.Rect(op.X, flip(op.Y+op.H), op.W, op.H, style)
			case canvas.LineOp:
				out.SetDrawColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
				out.SetLineWidth(op.Width)
				out.Line(op.X1, flip(op.Y1), op.X2, flip(op.Y2))
			case canvas.ImageOp:
				options := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
				if !registered[op.Name] {
					out.RegisterImageOptionsReader(op.Name, options, bytes.NewReader(op.Data))
					registered[op.Name] = true
				}
				out.ImageOptions(op.Name, op.X, flip(op.Y+op.H), op.W, op.H, false, options, 0, "")
			default:
				return nil, &canvas.DocumentAssemblyError{Section: SectionSerialize, Err: fmt.Errorf("unknown op %T on page %d", op, page.Number)}
			}

			if out.Err() {
				return nil, &canvas.DocumentAssemblyError{Section: SectionSerialize, Err: out.Error()}
			}
		}
	}

	var buf bytes.Buffer
	err := out.Output(&buf)
	if err != nil {
		return nil, &canvas.DocumentAssemblyError{Section: SectionSerialize, Err: err}
	}

	tl.Log(tl.Verbose, palette.Cyan, "Rendered '%s' pages, '%s' bytes", len(doc.Pages), buf.Len())
	return buf.Bytes(), nil
}

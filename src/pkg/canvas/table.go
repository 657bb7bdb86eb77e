package canvas

import (
	"embroidery-reports/src/pkg/textlayout"
)

type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// TableStyle holds table metrics in points.
type TableStyle struct {
	FontSize     float64
	LineHeight   float64
	Padding      float64 // vertical, split evenly above and below the text
	InnerPadding float64 // horizontal, split evenly left and right
	HeaderFill   Color
	HeaderText   Color
	Text         Color
	RuleColor    Color
}

func DefaultTableStyle() TableStyle {
	return TableStyle{
		FontSize:     9,
		LineHeight:   12,
		Padding:      6,
		InnerPadding: 8,
		HeaderFill:   Surface,
		HeaderText:   Black,
		Text:         Black,
		RuleColor:    Border,
	}
}

type RowOptions struct {
	Bold  bool
	Fill  *Color
	Align []Align
}

type preparedRow struct {
	cells  [][]string
	height float64
}

/*
prepareRow wraps every cell against its column width minus the inner padding
and computes the shared row height: the tallest cell's line count times the
line height, plus padding. Rows taller than a page less reserved are cut to
fit with a trailing ellipsis line.
*/
func (c *Canvas) prepareRow(values []string, widths []float64, font Font, reserved float64) (preparedRow, error) {
	style := c.TableStyle
	if len(values) > len(widths) {
		return preparedRow{}, &textlayout.LayoutError{MaxWidth: 0, Reason: "row has more cells than columns"}
	}

	row := preparedRow{cells: make([][]string, len(widths))}
	maxLines := 1
	for index, width := range widths {
		value := ""
		if index < len(values) {
			value = values[index]
		}
		lines, err := c.Wrap(value, font, style.FontSize, width-style.InnerPadding)
		if err != nil {
			return preparedRow{}, err
		}
		row.cells[index] = lines
		maxLines = max(maxLines, len(lines))
	}

	fitLines := int((c.usableHeight() - reserved - style.Padding) / style.LineHeight)
	if fitLines < 1 {
		fitLines = 1
	}
	if maxLines > fitLines {
		for index, lines := range row.cells {
			if len(lines) > fitLines {
				cut := append([]string{}, lines[:fitLines]...)
				cut[fitLines-1] = "…"
				row.cells[index] = cut
			}
		}
		maxLines = fitLines
	}

	row.height = float64(maxLines)*style.LineHeight + style.Padding
	return row, nil
}

// RowHeight returns the height DrawTableRow would use for values.
func (c *Canvas) RowHeight(values []string, widths []float64, bold bool) (float64, error) {
	font := Regular
	if bold {
		font = Bold
	}
	row, err := c.prepareRow(values, widths, font, 0)
	if err != nil {
		return 0, err
	}
	return row.height, nil
}

// TableStartHeight returns the height of a table header plus its first row,
// the least a page must hold for the table to start on it.
func (c *Canvas) TableStartHeight(headers []string, widths []float64, first []string) (float64, error) {
	header, err := c.prepareRow(headers, widths, Bold, 0)
	if err != nil {
		return 0, err
	}
	row, err := c.prepareRow(first, widths, Regular, header.height)
	if err != nil {
		return 0, err
	}
	return header.height + row.height, nil
}

// drawPrepared draws row at the cursor and moves the cursor below it.
func (c *Canvas) drawPrepared(row preparedRow, widths []float64, font Font, textColor Color, opts RowOptions) {
	style := c.TableStyle
	left := c.Left()
	rowTop := c.cursorY

	totalWidth := 0.0
	for _, width := range widths {
		totalWidth += width
	}
	if opts.Fill != nil {
		c.DrawRectangle(left, rowTop-row.height, totalWidth, row.height, opts.Fill, nil)
	}

	x := left
	firstBaseline := rowTop - style.Padding/2 - style.FontSize
	for index, lines := range row.cells {
		align := AlignLeft
		if index < len(opts.Align) {
			align = opts.Align[index]
		}
		for lineIndex, line := range lines {
			lineX := x + style.InnerPadding/2
			if align == AlignRight {
				lineX = x + widths[index] - style.InnerPadding/2 - c.MeasureText(line, font, style.FontSize)
			}
			c.DrawText(line, lineX, firstBaseline-float64(lineIndex)*style.LineHeight, font, style.FontSize, textColor)
		}
		x += widths[index]
	}

	c.DrawLine(left, rowTop-row.height, left+totalWidth, rowTop-row.height, 0.5, style.RuleColor)
	c.Advance(row.height)
}

// DrawTableHeader draws a bold, filled header row.
func (c *Canvas) DrawTableHeader(headers []string, widths []float64) error {
	return c.drawHeader(headers, widths, nil)
}

func (c *Canvas) drawHeader(headers []string, widths []float64, align []Align) error {
	row, err := c.prepareRow(headers, widths, Bold, 0)
	if err != nil {
		return err
	}
	c.EnsureSpace(row.height)
	fill := c.TableStyle.HeaderFill
	c.drawPrepared(row, widths, Bold, c.TableStyle.HeaderText, RowOptions{Fill: &fill, Align: align})
	return nil
}

/*
DrawTableRow draws one row, reserving its full height first. All cells start
at the same baseline and the cursor advances by the shared row height. It
reports whether the row had to start a new page.
*/
func (c *Canvas) DrawTableRow(values []string, widths []float64, opts RowOptions) (bool, error) {
	font := Regular
	if opts.Bold {
		font = Bold
	}
	row, err := c.prepareRow(values, widths, font, 0)
	if err != nil {
		return false, err
	}
	broke := c.EnsureSpace(row.height)
	c.drawPrepared(row, widths, font, c.TableStyle.Text, opts)
	return broke, nil
}

// Table draws a header once and then rows, optionally repeating the header
// at the top of every page the table continues on.
type Table struct {
	canvas       *Canvas
	headers      []string
	widths       []float64
	align        []Align
	repeatHeader bool
	rows         int
}

// BeginTable draws the header and returns the table for its rows.
func (c *Canvas) BeginTable(headers []string, widths []float64, align []Align, repeatHeader bool) (*Table, error) {
	t := &Table{canvas: c, headers: headers, widths: widths, align: align, repeatHeader: repeatHeader}
	err := c.drawHeader(headers, widths, align)
	if err != nil {
		return nil, err
	}
	return t, nil
}

/*
Row draws one body row. Alternate rows get a light fill unless opts sets one.
With a repeated header, rows are clipped to the page height left under the
header so a continued row always fits below it.
*/
func (t *Table) Row(values []string, opts RowOptions) error {
	c := t.canvas
	if opts.Align == nil {
		opts.Align = t.align
	}
	if opts.Fill == nil && t.rows%2 == 1 {
		fill := Color{249, 250, 251}
		opts.Fill = &fill
	}
	font := Regular
	if opts.Bold {
		font = Bold
	}

	reserved := 0.0
	if t.repeatHeader {
		header, err := c.prepareRow(t.headers, t.widths, Bold, 0)
		if err != nil {
			return err
		}
		reserved = header.height
	}
	row, err := c.prepareRow(values, t.widths, font, reserved)
	if err != nil {
		return err
	}

	if c.EnsureSpace(row.height) && t.repeatHeader {
		err = c.drawHeader(t.headers, t.widths, t.align)
		if err != nil {
			return err
		}
	}
	c.drawPrepared(row, t.widths, font, c.TableStyle.Text, opts)
	t.rows++
	return nil
}

// Rows returns how many body rows were drawn.
func (t *Table) Rows() int {
	return t.rows
}

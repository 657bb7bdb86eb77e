package compose

import (
	"strings"

	"embroidery-reports/src/pkg/canvas"
	"embroidery-reports/src/pkg/money"
	"embroidery-reports/src/pkg/record"
)

const (
	recordTitleSize  = 9.0
	recordDetailSize = 8.0
)

// records draws section F: one block per record with its wrapped notes.
func (r *reportWriter) records() error {
	r.sectionTitle("Records", (recordTitleSize+recordDetailSize)*canvas.LineSpacing)
	if r.result.Empty() {
		r.placeholder(EmptyPlaceholder)
		return nil
	}

	for _, rec := range r.result.Records {
		err := r.recordBlock(rec)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *reportWriter) recordBlock(rec record.Record) error {
	cv := r.cv
	left := cv.Left()
	width := cv.ContentWidth()

	// title and first detail line stay on the same page
	cv.EnsureSpace((recordTitleSize + recordDetailSize) * canvas.LineSpacing)

	amount := r.money(rec.Amount)
	color := canvas.Black
	switch {
	case rec.Expense().IsPositive():
		amount = "-" + amount
		color = canvas.Negative
	case rec.Income().IsPositive():
		color = canvas.Positive
	}

	amountWidth := cv.MeasureText(amount, canvas.Bold, recordTitleSize)
	title := rec.Date.Format("2006-01-02") + "  " + rec.Kind.Label() + "  " + rec.ID
	titleLines, err := cv.Wrap(title, canvas.Bold, recordTitleSize, width-amountWidth-12)
	if err != nil {
		return err
	}
	cv.DrawText(amount, left+width-amountWidth, cv.CursorY()-recordTitleSize, canvas.Bold, recordTitleSize, color)
	for _, line := range titleLines {
		cv.TextLine(line, left, canvas.Bold, recordTitleSize, canvas.Black)
	}

	err = cv.Paragraph(recordDetails(rec, r.money), left, width, canvas.Regular, recordDetailSize, canvas.Muted)
	if err != nil {
		return err
	}

	notes := strings.TrimSpace(rec.Notes)
	if notes != "" {
		err = cv.Paragraph("Notes: "+notes, left+12, width-12, canvas.Italic, recordDetailSize, canvas.Black)
		if err != nil {
			return err
		}
	}

	cv.Advance(3)
	cv.DrawLine(left, cv.CursorY(), left+width, cv.CursorY(), 0.5, canvas.Border)
	cv.Advance(4)
	return nil
}

// recordDetails is the one-line description under a record title.
func recordDetails(rec record.Record, format func(money.Money) string) string {
	parts := []string{"Category: " + record.NormalizeCategory(rec.Category)}
	if _, name, ok := rec.Counterparty(); ok {
		parts = append(parts, "Client: "+name)
	}

	switch {
	case rec.Order != nil:
		parts = append(parts, "Status: "+rec.Order.Status.Label())
		if !rec.Order.DueDate.IsZero() {
			parts = append(parts, "Due: "+rec.Order.DueDate.Format("2006-01-02"))
		}
		parts = append(parts, "Advance: "+format(rec.Order.Advance), "Outstanding: "+format(rec.Order.Outstanding))
	case rec.Payment != nil:
		parts = append(parts, "Method: "+rec.Payment.Method.Label())
	case rec.Cash != nil:
		parts = append(parts, "Direction: "+string(rec.Cash.Direction))
	}
	if ref := rec.Reference(); ref != "" {
		parts = append(parts, "Order: "+ref)
	}

	return strings.Join(parts, " · ")
}

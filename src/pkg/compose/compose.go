// Package compose lays an aggregate.Result out as a multi-section report on a
// canvas and formats the plain-text digest sent alongside it.
package compose

import (
	"errors"
	"fmt"
	"time"

	"embroidery-reports/src/pkg/aggregate"
	"embroidery-reports/src/pkg/canvas"
	"embroidery-reports/src/pkg/money"
)

// Section names carried by canvas.DocumentAssemblyError.
const (
	SectionHeader         = "header"
	SectionKPI            = "kpi"
	SectionCategories     = "categories"
	SectionSeries         = "series"
	SectionCounterparties = "counterparties"
	SectionAging          = "aging"
	SectionRecords        = "records"
)

// EmptyPlaceholder replaces a section that has nothing to show.
const EmptyPlaceholder = "No records in range."

type Options struct {
	RepeatTableHeaders bool   `json:"repeat_table_headers"`
	TopCounterparties  int    `json:"top_counterparties"`
	Currency           string `json:"currency"`
	ShopName           string `json:"shop_name"`
}

func DefaultOptions() Options {
	return Options{RepeatTableHeaders: true, TopCounterparties: 5, Currency: "COP"}
}

// Logo is a PNG drawn in the top-right corner of the first page.
type Logo struct {
	Name   string
	Data   []byte
	Width  float64
	Height float64
}

// Metadata describes one report run.
type Metadata struct {
	Title       string
	GeneratedAt time.Time
	Author      string
	RangeLabel  string
	// Entity is the client or shop the report is about; it names the file.
	Entity   string
	ReportID string
	// Recipient is greeted by name in the share summary.
	Recipient string
	// Currency prefixes amounts in the share summary.
	Currency string
	// HighlightBalance adds an outstanding balance card to the KPIs.
	HighlightBalance bool
	Logo             *Logo
}

// Composer turns results into documents. It holds no per-report state and
// can be shared.
type Composer struct {
	measurer canvas.Measurer
	page     canvas.PageConfig
	options  Options
}

func New(measurer canvas.Measurer, options Options) *Composer {
	if options.TopCounterparties <= 0 {
		options.TopCounterparties = DefaultOptions().TopCounterparties
	}
	return &Composer{measurer: measurer, page: canvas.A4(), options: options}
}

// Options returns the effective options.
func (c *Composer) Options() Options {
	return c.options
}

/*
Compose draws the title block and then sections A to F in fixed order: KPI
cards, categories, time series, top clients, aging, itemized records.

Sections are drawn one after another on a single canvas; each degrades to a
one-line placeholder when it has no data. Any failure is returned as a
*canvas.DocumentAssemblyError naming the section, and no document is returned
with it.
*/
func (c *Composer) Compose(result *aggregate.Result, meta Metadata) (*canvas.Document, error) {
	if result == nil {
		return nil, &canvas.DocumentAssemblyError{Section: SectionHeader, Err: errors.New("no aggregate result")}
	}

	cv := canvas.New(c.page, c.measurer, canvas.Info{
		Title:   meta.Title,
		Author:  meta.Author,
		Subject: meta.RangeLabel,
		Creator: c.options.ShopName,
	})
	r := &reportWriter{cv: cv, result: result, meta: meta, options: c.options}

	sections := []struct {
		name string
		draw func() error
	}{
		{SectionHeader, r.header},
		{SectionKPI, r.kpis},
		{SectionCategories, r.categories},
		{SectionSeries, r.series},
		{SectionCounterparties, r.counterparties},
		{SectionAging, r.aging},
		{SectionRecords, r.records},
	}
	for _, section := range sections {
		err := section.draw()
		if err != nil {
			return nil, &canvas.DocumentAssemblyError{Section: section.name, Err: err}
		}
	}

	return cv.Document(), nil
}

// reportWriter carries the state of one Compose call.
type reportWriter struct {
	cv      *canvas.Canvas
	result  *aggregate.Result
	meta    Metadata
	options Options
}

func (r *reportWriter) money(amount money.Money) string {
	return money.Format(amount, r.options.Currency)
}

// columns splits the content width by fractions.
func (r *reportWriter) columns(fractions ...float64) []float64 {
	widths := make([]float64, len(fractions))
	for index, fraction := range fractions {
		widths[index] = r.cv.ContentWidth() * fraction
	}
	return widths
}

// sectionTitle draws title once keep points of content fit below it.
func (r *reportWriter) sectionTitle(title string, keep float64) {
	r.cv.EnsureSpace(8 + 13*canvas.LineSpacing + 2 + keep)
	r.cv.Advance(8)
	r.cv.TextLine(title, r.cv.Left(), canvas.Bold, 13, canvas.Accent)
	r.cv.Advance(2)
}

// lineKeep is the room a placeholder line needs.
func (r *reportWriter) lineKeep() float64 {
	return 10 * canvas.LineSpacing
}

// tableKeep is the room for a table header and its first row, or for a
// placeholder when first is nil.
func (r *reportWriter) tableKeep(headers []string, widths []float64, first []string) float64 {
	if first == nil {
		return r.lineKeep()
	}
	height, err := r.cv.TableStartHeight(headers, widths, first)
	if err != nil {
		// BeginTable reports the same error
		return r.lineKeep()
	}
	return height
}

func (r *reportWriter) placeholder(text string) {
	r.cv.TextLine(text, r.cv.Left(), canvas.Italic, 10, canvas.Muted)
}

func (r *reportWriter) header() error {
	cv := r.cv
	top := cv.CursorY()

	logoWidth := 0.0
	logoBottom := top
	if logo := r.meta.Logo; logo != nil && len(logo.Data) > 0 {
		logoWidth = logo.Width + 12
		logoBottom = top - logo.Height
		cv.DrawImage(logo.Name, logo.Data, cv.Left()+cv.ContentWidth()-logo.Width, logoBottom, logo.Width, logo.Height)
	}

	title := r.meta.Title
	if title == "" {
		title = "Financial report"
	}
	err := cv.Paragraph(title, cv.Left(), cv.ContentWidth()-logoWidth, canvas.Bold, 18, canvas.Black)
	if err != nil {
		return err
	}

	if r.options.ShopName != "" {
		cv.TextLine(r.options.ShopName, cv.Left(), canvas.Bold, 10, canvas.Muted)
	}
	rangeLabel := r.meta.RangeLabel
	if rangeLabel == "" {
		rangeLabel = r.result.Range.Label()
	}
	cv.TextLine("Period: "+rangeLabel, cv.Left(), canvas.Regular, 10, canvas.Black)

	generated := "Generated " + r.meta.GeneratedAt.Format("2006-01-02 15:04")
	if r.meta.Author != "" {
		generated += " by " + r.meta.Author
	}
	cv.TextLine(generated, cv.Left(), canvas.Regular, 8, canvas.Muted)
	if r.meta.ReportID != "" {
		cv.TextLine("Report "+r.meta.ReportID, cv.Left(), canvas.Regular, 8, canvas.Muted)
	}

	if cv.CursorY() > logoBottom {
		cv.Advance(cv.CursorY() - logoBottom)
	}
	cv.Advance(6)
	cv.DrawLine(cv.Left(), cv.CursorY(), cv.Left()+cv.ContentWidth(), cv.CursorY(), 1, canvas.Border)
	cv.Advance(4)
	return nil
}

type kpiCard struct {
	label string
	value string
	color canvas.Color
}

// kpis draws section A as a row of cards plus the payment method mix.
func (r *reportWriter) kpis() error {
	r.sectionTitle("Summary", cardHeight)
	if r.result.Empty() && !r.meta.HighlightBalance {
		r.placeholder(EmptyPlaceholder)
		return nil
	}

	totals := r.result.Totals
	netColor := canvas.Positive
	if totals.Net.IsNegative() {
		netColor = canvas.Negative
	}
	cards := []kpiCard{
		{"Income", r.money(totals.Income), canvas.Positive},
		{"Expense", r.money(totals.Expense), canvas.Negative},
		{"Net", r.money(totals.Net), netColor},
	}
	if r.meta.HighlightBalance {
		cards = append(cards, kpiCard{"Outstanding balance", r.money(r.result.Outstanding), canvas.Highlight})
	}

	err := r.drawCards(cards)
	if err != nil {
		return err
	}

	if r.result.Empty() {
		r.placeholder(EmptyPlaceholder)
		return nil
	}

	mix := fmt.Sprintf("%d records.", totals.Count)
	for _, method := range r.result.Methods {
		if method.Count == 0 {
			continue
		}
		mix += fmt.Sprintf(" %s: %s (%d).", method.Method.Label(), r.money(method.Amount), method.Count)
	}
	return r.cv.Paragraph(mix, r.cv.Left(), r.cv.ContentWidth(), canvas.Regular, 9, canvas.Muted)
}

const (
	cardHeight = 52.0
	cardGap    = 8.0
)

func (r *reportWriter) drawCards(cards []kpiCard) error {
	cv := r.cv
	width := (cv.ContentWidth() - cardGap*float64(len(cards)-1)) / float64(len(cards))
	if width <= 16 {
		return fmt.Errorf("no room for %d cards", len(cards))
	}

	cv.EnsureSpace(cardHeight)
	bottom := cv.CursorY() - cardHeight
	for index, card := range cards {
		x := cv.Left() + float64(index)*(width+cardGap)
		fill := canvas.Surface
		var stroke *canvas.Color
		if card.label == "Outstanding balance" {
			stroke = &card.color
		}
		cv.DrawRectangle(x, bottom, width, cardHeight, &fill, stroke)
		cv.DrawText(card.label, x+8, bottom+cardHeight-16, canvas.Regular, 8, canvas.Muted)

		size := 13.0
		for size > 6 && cv.MeasureText(card.value, canvas.Bold, size) > width-16 {
			size -= 0.5
		}
		cv.DrawText(card.value, x+8, bottom+14, canvas.Bold, size, card.color)
	}
	cv.Advance(cardHeight + 6)
	return nil
}

// categories draws section B.
func (r *reportWriter) categories() error {
	headers := []string{"Category", "Income", "Expense", "Net", "Count"}
	widths := r.columns(0.34, 0.19, 0.19, 0.19, 0.09)
	row := func(rollup aggregate.CategoryRollup) []string {
		return []string{
			rollup.Category,
			r.money(rollup.Income),
			r.money(rollup.Expense),
			r.money(rollup.Net),
			money.FormatCount(rollup.Count),
		}
	}

	var first []string
	if len(r.result.Categories) > 0 {
		first = row(r.result.Categories[0])
	}
	r.sectionTitle("Categories", r.tableKeep(headers, widths, first))
	if first == nil {
		r.placeholder(EmptyPlaceholder)
		return nil
	}

	align := []canvas.Align{canvas.AlignLeft, canvas.AlignRight, canvas.AlignRight, canvas.AlignRight, canvas.AlignRight}
	table, err := r.cv.BeginTable(headers, widths, align, r.options.RepeatTableHeaders)
	if err != nil {
		return err
	}

	for _, rollup := range r.result.Categories {
		err = table.Row(row(rollup), canvas.RowOptions{})
		if err != nil {
			return err
		}
	}

	totals := r.result.Totals
	return table.Row([]string{"Total", r.money(totals.Income), r.money(totals.Expense), r.money(totals.Net), money.FormatCount(totals.Count)}, canvas.RowOptions{Bold: true})
}

// series draws section C, labelled with its granularity.
func (r *reportWriter) series() error {
	title := "Daily series"
	if r.result.Series.Granularity == aggregate.Weekly {
		title = "Weekly series"
	}
	headers := []string{"Period", "Income", "Expense", "Net"}
	widths := r.columns(0.31, 0.23, 0.23, 0.23)
	row := func(point aggregate.SeriesPoint) []string {
		return []string{point.Label, r.money(point.Income), r.money(point.Expense), r.money(point.Net)}
	}

	var first []string
	if !r.result.Empty() && len(r.result.Series.Points) > 0 {
		first = row(r.result.Series.Points[0])
	}
	r.sectionTitle(title, r.tableKeep(headers, widths, first))
	if first == nil {
		r.placeholder(EmptyPlaceholder)
		return nil
	}

	align := []canvas.Align{canvas.AlignLeft, canvas.AlignRight, canvas.AlignRight, canvas.AlignRight}
	table, err := r.cv.BeginTable(headers, widths, align, r.options.RepeatTableHeaders)
	if err != nil {
		return err
	}

	for _, point := range r.result.Series.Points {
		err = table.Row(row(point), canvas.RowOptions{})
		if err != nil {
			return err
		}
	}
	return nil
}

// counterparties draws section D with the top clients by income.
func (r *reportWriter) counterparties() error {
	headers := []string{"Client", "Income", "Share", "Payments"}
	widths := r.columns(0.46, 0.24, 0.15, 0.15)
	row := func(entry aggregate.CounterpartyEntry) []string {
		return []string{entry.Name, r.money(entry.Amount), money.FormatPercent(entry.Percentage), money.FormatCount(entry.Count)}
	}

	entries := r.result.TopCounterparties(r.options.TopCounterparties)
	var first []string
	if len(entries) > 0 {
		first = row(entries[0])
	}
	r.sectionTitle("Top clients", r.tableKeep(headers, widths, first))
	if first == nil {
		r.placeholder(EmptyPlaceholder)
		return nil
	}

	align := []canvas.Align{canvas.AlignLeft, canvas.AlignRight, canvas.AlignRight, canvas.AlignRight}
	table, err := r.cv.BeginTable(headers, widths, align, r.options.RepeatTableHeaders)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		err = table.Row(row(entry), canvas.RowOptions{})
		if err != nil {
			return err
		}
	}
	return nil
}

// aging draws section E: a total outstanding headline and the bucket table.
func (r *reportWriter) aging() error {
	if r.result.OpenOrders == 0 {
		r.sectionTitle("Accounts receivable aging", r.lineKeep())
		r.placeholder("No outstanding balances.")
		return nil
	}

	headers := []string{"Days past due", "Orders", "Amount"}
	widths := r.columns(0.4, 0.2, 0.4)
	row := func(bucket aggregate.AgingBucket) []string {
		return []string{bucket.Label, money.FormatCount(bucket.OrderCount), r.money(bucket.AmountSum)}
	}

	headline := fmt.Sprintf("Total outstanding: %s across %s open orders as of %s",
		r.money(r.result.Outstanding), money.FormatCount(r.result.OpenOrders), r.result.Cutoff.Format("2006-01-02"))
	headlineLines, err := r.cv.Wrap(headline, canvas.Bold, 10, r.cv.ContentWidth())
	if err != nil {
		return err
	}
	keep := float64(len(headlineLines))*10*canvas.LineSpacing + 4
	if len(r.result.Aging) > 0 {
		keep += r.tableKeep(headers, widths, row(r.result.Aging[0]))
	}
	r.sectionTitle("Accounts receivable aging", keep)

	err = r.cv.Paragraph(headline, r.cv.Left(), r.cv.ContentWidth(), canvas.Bold, 10, canvas.Highlight)
	if err != nil {
		return err
	}
	r.cv.Advance(4)

	align := []canvas.Align{canvas.AlignLeft, canvas.AlignRight, canvas.AlignRight}
	table, err := r.cv.BeginTable(headers, widths, align, r.options.RepeatTableHeaders)
	if err != nil {
		return err
	}

	for _, bucket := range r.result.Aging {
		err = table.Row(row(bucket), canvas.RowOptions{})
		if err != nil {
			return err
		}
	}
	return nil
}

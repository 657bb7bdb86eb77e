package compose

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"embroidery-reports/src/pkg/aggregate"
	"embroidery-reports/src/pkg/money"
)

// SummaryReferenceLimit is how many record IDs the share summary lists.
const SummaryReferenceLimit = 10

/*
BuildShareSummary formats the short plain-text digest sent next to a report
over chat or email: a greeting, the title and range, the headline numbers and
the IDs of the records involved. It does no I/O.
*/
func BuildShareSummary(result *aggregate.Result, meta Metadata) string {
	var b strings.Builder

	if name := strings.TrimSpace(meta.Recipient); name != "" {
		fmt.Fprintf(&b, "Hi %s,\n\n", name)
	} else {
		b.WriteString("Hello,\n\n")
	}

	title := meta.Title
	if title == "" {
		title = "Financial report"
	}
	b.WriteString(title + "\n")
	if result == nil {
		return b.String()
	}

	rangeLabel := meta.RangeLabel
	if rangeLabel == "" {
		rangeLabel = result.Range.Label()
	}
	b.WriteString("Period: " + rangeLabel + "\n\n")

	format := func(amount money.Money) string {
		return money.Format(amount, meta.Currency)
	}
	fmt.Fprintf(&b, "Income: %s\n", format(result.Totals.Income))
	fmt.Fprintf(&b, "Expense: %s\n", format(result.Totals.Expense))
	fmt.Fprintf(&b, "Net: %s\n", format(result.Totals.Net))
	if result.OpenOrders > 0 {
		fmt.Fprintf(&b, "Outstanding: %s (%s open orders)\n", format(result.Outstanding), money.FormatCount(result.OpenOrders))
	}

	b.WriteString("\n")
	if result.Empty() {
		b.WriteString(EmptyPlaceholder + "\n")
		return b.String()
	}

	ids := make([]string, 0, SummaryReferenceLimit)
	for _, rec := range result.Records {
		if len(ids) == SummaryReferenceLimit {
			break
		}
		ids = append(ids, rec.ID)
	}
	b.WriteString("References: " + strings.Join(ids, ", "))
	if extra := len(result.Records) - len(ids); extra > 0 {
		fmt.Fprintf(&b, " +%d more", extra)
	}
	b.WriteString("\n")

	return b.String()
}

// WhatsAppLink returns a click-to-chat link that opens a conversation with
// phone prefilled with text. Non-digit characters of phone are dropped.
func WhatsAppLink(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	link := "https://wa.me/" + digits
	if text == "" {
		return link
	}
	return link + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

/*
Filename names a report file report-<entity>-<YYYYMMDD>-<HHmm>.<ext>.

Whitespace runs and path separators in entity become a single dash. An empty
entity gives report-<YYYYMMDD>-<HHmm>.<ext>.
*/
func Filename(entity string, generatedAt time.Time, ext string) string {
	entity = strings.NewReplacer("/", " ", "\\", " ").Replace(entity)
	parts := []string{"report"}
	if words := strings.Fields(entity); len(words) > 0 {
		parts = append(parts, strings.Join(words, "-"))
	}
	parts = append(parts, generatedAt.Format("20060102"), generatedAt.Format("1504"))

	name := strings.Join(parts, "-")
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return name
	}
	return name + "." + ext
}

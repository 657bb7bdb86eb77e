package aggregate

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"embroidery-reports/src/pkg/money"
	"embroidery-reports/src/pkg/record"
)

// Options tunes the rollups.
type Options struct {
	// TopCategories is how many categories survive before the rest fold into Other.
	TopCategories int `json:"top_categories,omitempty"`
	// CounterpartyCategories are the income categories that count towards
	// client rankings, compared case-insensitively.
	CounterpartyCategories []string `json:"counterparty_categories,omitempty"`
}

func DefaultOptions() Options {
	return Options{
		TopCategories:          5,
		CounterpartyCategories: []string{"Venta", "Abono", "Cobro", "Sale", "Payment", "Collection"},
	}
}

/*
Compute aggregates records for rng as of cutoff. It is a pure function of
its inputs.

Totals, categories, series, payment methods and counterparties only see
records dated inside rng. Aging looks at every order with a positive
outstanding balance, whatever its date. A zero cutoff means rng.To.

Calendar days are read in rng.From's location, so a record stored in another
zone lands on the day the range's zone sees it.
*/
func Compute(records []record.Record, rng Range, cutoff time.Time, opts Options) (*Result, error) {
	err := rng.Validate()
	if err != nil {
		return nil, err
	}
	location := rng.From.Location()
	rng.To = rng.To.In(location)
	if cutoff.IsZero() {
		cutoff = rng.To
	}
	cutoff = cutoff.In(location)
	if opts.TopCategories <= 0 {
		opts.TopCategories = DefaultOptions().TopCategories
	}
	if opts.CounterpartyCategories == nil {
		opts.CounterpartyCategories = DefaultOptions().CounterpartyCategories
	}

	inRange := make([]record.Record, 0, len(records))
	for _, r := range records {
		if rng.Contains(r.Date) {
			r.Date = r.Date.In(location)
			inRange = append(inRange, r)
		}
	}
	slices.SortStableFunc(inRange, func(a, b record.Record) int {
		return a.Date.Compare(b.Date)
	})

	result := &Result{
		Range:          rng,
		Cutoff:         cutoff,
		Totals:         periodTotals(inRange),
		Series:         timeSeries(inRange, rng),
		Counterparties: counterparties(inRange, opts.CounterpartyCategories),
		Methods:        methodTotals(inRange),
		Records:        inRange,
	}
	result.AllCategories = categoryRollups(inRange)
	result.Categories = collapseCategories(result.AllCategories, opts.TopCategories)
	result.Aging, result.Outstanding, result.OpenOrders = agingSnapshot(records, cutoff)

	return result, nil
}

func periodTotals(records []record.Record) PeriodTotals {
	totals := PeriodTotals{Income: money.Zero(), Expense: money.Zero()}
	for _, r := range records {
		totals.Income = totals.Income.Add(r.Income())
		totals.Expense = totals.Expense.Add(r.Expense())
		totals.Count++
	}
	totals.Net = totals.Income.Sub(totals.Expense)
	return totals
}

/*
categoryRollups groups records by normalized category in first-seen order and
sorts the groups by magnitude, keeping first-seen order between equal
magnitudes. Records contributing neither income nor expense are left out.
*/
func categoryRollups(records []record.Record) []CategoryRollup {
	indexByCategory := make(map[string]int)
	rollups := make([]CategoryRollup, 0)

	for _, r := range records {
		income := r.Income()
		expense := r.Expense()
		if income.IsZero() && expense.IsZero() {
			continue
		}

		category := record.NormalizeCategory(r.Category)
		index, exists := indexByCategory[category]
		if !exists {
			index = len(rollups)
			indexByCategory[category] = index
			rollups = append(rollups, CategoryRollup{Category: category, Income: money.Zero(), Expense: money.Zero()})
		}

		rollup := &rollups[index]
		rollup.Income = rollup.Income.Add(income)
		rollup.Expense = rollup.Expense.Add(expense)
		rollup.Count++
	}

	for index := range rollups {
		rollups[index].Net = rollups[index].Income.Sub(rollups[index].Expense)
	}

	slices.SortStableFunc(rollups, func(a, b CategoryRollup) int {
		return b.Magnitude().Cmp(a.Magnitude())
	})
	return rollups
}

// collapseCategories keeps the first keep rollups and sums the rest into Other.
func collapseCategories(rollups []CategoryRollup, keep int) []CategoryRollup {
	if len(rollups) <= keep {
		return slices.Clone(rollups)
	}

	collapsed := slices.Clone(rollups[:keep])
	other := CategoryRollup{Category: OtherCategory, Income: money.Zero(), Expense: money.Zero()}
	for _, rollup := range rollups[keep:] {
		other.Income = other.Income.Add(rollup.Income)
		other.Expense = other.Expense.Add(rollup.Expense)
		other.Count += rollup.Count
	}
	other.Net = other.Income.Sub(other.Expense)

	return append(collapsed, other)
}

/*
timeSeries buckets records by day when the range covers at most DailyLimit
days, otherwise by 7-day windows anchored at rng.From with the last window
clipped to rng.To.
*/
func timeSeries(records []record.Record, rng Range) TimeSeries {
	step := 1
	series := TimeSeries{Granularity: Daily}
	if rng.Days() > DailyLimit {
		step = 7
		series.Granularity = Weekly
	}

	days := rng.Days()
	for offset := 0; offset < days; offset += step {
		start := rng.From.AddDate(0, 0, offset)
		end := rng.From.AddDate(0, 0, offset+step)
		lastDay := start.AddDate(0, 0, step-1)
		if offset+step >= days {
			end = rng.To
			lastDay = rng.To
		}

		label := start.Format("Jan 02")
		if step > 1 && DaysBetween(start, lastDay) > 0 {
			label = start.Format("Jan 02") + " – " + lastDay.Format("Jan 02")
		}

		series.Points = append(series.Points, SeriesPoint{
			Label:   label,
			Start:   start,
			End:     end,
			Income:  money.Zero(),
			Expense: money.Zero(),
			Net:     money.Zero(),
		})
	}

	for _, r := range records {
		index := DaysBetween(rng.From, r.Date) / step
		if index < 0 || index >= len(series.Points) {
			continue
		}
		point := &series.Points[index]
		point.Income = point.Income.Add(r.Income())
		point.Expense = point.Expense.Add(r.Expense())
	}
	for index := range series.Points {
		series.Points[index].Net = series.Points[index].Income.Sub(series.Points[index].Expense)
	}

	return series
}

/*
counterparties ranks clients by income from allow-listed categories. Each
entry's percentage is taken against the total of that same filtered set, so
the percentages add up to 100.
*/
func counterparties(records []record.Record, allowed []string) []CounterpartyEntry {
	allow := make(map[string]bool, len(allowed))
	for _, category := range allowed {
		allow[strings.ToLower(record.NormalizeCategory(category))] = true
	}

	indexByKey := make(map[string]int)
	entries := make([]CounterpartyEntry, 0)
	total := money.Zero()

	for _, r := range records {
		income := r.Income()
		if !income.IsPositive() {
			continue
		}
		if !allow[strings.ToLower(record.NormalizeCategory(r.Category))] {
			continue
		}
		key, name, ok := r.Counterparty()
		if !ok {
			continue
		}

		index, exists := indexByKey[key]
		if !exists {
			index = len(entries)
			indexByKey[key] = index
			entries = append(entries, CounterpartyEntry{Key: key, Name: name, Amount: money.Zero()})
		}
		entries[index].Amount = entries[index].Amount.Add(income)
		entries[index].Count++
		total = total.Add(income)
	}

	hundred := decimal.NewFromInt(100)
	for index := range entries {
		entries[index].Percentage = entries[index].Amount.Mul(hundred).Div(total)
	}

	slices.SortStableFunc(entries, func(a, b CounterpartyEntry) int {
		return b.Amount.Cmp(a.Amount)
	})
	return entries
}

func methodTotals(records []record.Record) []MethodTotal {
	totals := make([]MethodTotal, len(record.Methods))
	for index, method := range record.Methods {
		totals[index] = MethodTotal{Method: method, Amount: money.Zero()}
	}
	for _, r := range records {
		if r.Payment == nil {
			continue
		}
		index := slices.Index(record.Methods, r.Payment.Method)
		if index < 0 {
			continue
		}
		totals[index].Amount = totals[index].Amount.Add(r.Income())
		totals[index].Count++
	}
	return totals
}

/*
agingSnapshot places every order with a positive outstanding balance into
exactly one bucket by whole days past due at cutoff (never negative). Orders
without a due date age from their order date. Due dates are read in
cutoff's location.
*/
func agingSnapshot(records []record.Record, cutoff time.Time) ([]AgingBucket, money.Money, int) {
	buckets := AgingBuckets()
	outstanding := money.Zero()
	openOrders := 0

	for _, r := range records {
		if !r.IsOpenOrder() {
			continue
		}
		due := r.Order.DueDate
		if due.IsZero() {
			due = r.Date
		}
		days := max(0, DaysBetween(due.In(cutoff.Location()), cutoff))

		for index := range buckets {
			if buckets[index].contains(days) {
				buckets[index].AmountSum = buckets[index].AmountSum.Add(r.Order.Outstanding)
				buckets[index].OrderCount++
				break
			}
		}
		outstanding = outstanding.Add(r.Order.Outstanding)
		openOrders++
	}

	return buckets, outstanding, openOrders
}

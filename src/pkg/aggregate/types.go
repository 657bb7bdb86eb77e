// Package aggregate turns raw financial records into report metrics: period
// totals, category rollups, time series, top clients and receivable aging.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"embroidery-reports/src/pkg/money"
	"embroidery-reports/src/pkg/record"
)

// OtherCategory is the synthetic rollup holding the long tail of categories.
const OtherCategory = "Other"

type PeriodTotals struct {
	Income  money.Money `json:"income"`
	Expense money.Money `json:"expense"`
	Net     money.Money `json:"net"`
	Count   int         `json:"count"`
}

type CategoryRollup struct {
	Category string      `json:"category"`
	Income   money.Money `json:"income"`
	Expense  money.Money `json:"expense"`
	Net      money.Money `json:"net"`
	Count    int         `json:"count"`
}

// Magnitude is the ranking key: income plus expense.
func (c CategoryRollup) Magnitude() money.Money {
	return c.Income.Abs().Add(c.Expense.Abs())
}

type Granularity string

const (
	Daily  Granularity = "daily"
	Weekly Granularity = "weekly"
)

// DailyLimit is the longest range, in days, still reported day by day.
const DailyLimit = 31

/*
SeriesPoint is one bucket of a time series. Start is inclusive. End is
exclusive, except for the last bucket where End is the inclusive range end.
*/
type SeriesPoint struct {
	Label   string      `json:"label"`
	Start   time.Time   `json:"start"`
	End     time.Time   `json:"end"`
	Income  money.Money `json:"income"`
	Expense money.Money `json:"expense"`
	Net     money.Money `json:"net"`
}

type TimeSeries struct {
	Granularity Granularity   `json:"granularity"`
	Points      []SeriesPoint `json:"points"`
}

type CounterpartyEntry struct {
	Key        string          `json:"key"`
	Name       string          `json:"name"`
	Amount     money.Money     `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Count      int             `json:"count"`
}

// AgingBucket holds outstanding orders whose days past due fall in
// [MinDays, MaxDays]. MaxDays < 0 marks the open-ended last bucket.
type AgingBucket struct {
	Label      string      `json:"label"`
	MinDays    int         `json:"min_days"`
	MaxDays    int         `json:"max_days"`
	AmountSum  money.Money `json:"amount_sum"`
	OrderCount int         `json:"order_count"`
}

func (b AgingBucket) contains(days int) bool {
	return days >= b.MinDays && (b.MaxDays < 0 || days <= b.MaxDays)
}

// AgingBuckets returns the fixed, empty bucket partition.
func AgingBuckets() []AgingBucket {
	return []AgingBucket{
		{Label: "0-30", MinDays: 0, MaxDays: 30, AmountSum: money.Zero()},
		{Label: "31-60", MinDays: 31, MaxDays: 60, AmountSum: money.Zero()},
		{Label: "61-90", MinDays: 61, MaxDays: 90, AmountSum: money.Zero()},
		{Label: "90+", MinDays: 91, MaxDays: -1, AmountSum: money.Zero()},
	}
}

type MethodTotal struct {
	Method record.PaymentMethod `json:"method"`
	Amount money.Money          `json:"amount"`
	Count  int                  `json:"count"`
}

// Result is everything a report needs, computed fresh per request.
type Result struct {
	Range  Range     `json:"range"`
	Cutoff time.Time `json:"cutoff"`

	Totals         PeriodTotals        `json:"totals"`
	Categories     []CategoryRollup    `json:"categories"`
	AllCategories  []CategoryRollup    `json:"all_categories"`
	Series         TimeSeries          `json:"series"`
	Counterparties []CounterpartyEntry `json:"counterparties"`
	Aging          []AgingBucket       `json:"aging"`
	Outstanding    money.Money         `json:"outstanding"`
	OpenOrders     int                 `json:"open_orders"`
	Methods        []MethodTotal       `json:"methods"`

	// Records are the in-range records sorted by date.
	Records []record.Record `json:"records"`
}

// Empty reports that no record fell inside the range. It is a warning,
// not an error: every section degrades to a placeholder.
func (r *Result) Empty() bool {
	return len(r.Records) == 0
}

// TopCounterparties returns at most n entries of the ranking.
func (r *Result) TopCounterparties(n int) []CounterpartyEntry {
	if n <= 0 || n >= len(r.Counterparties) {
		return r.Counterparties
	}
	return r.Counterparties[:n]
}

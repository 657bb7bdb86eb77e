package aggregate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embroidery-reports/src/pkg/money"
	"embroidery-reports/src/pkg/record"
)

var day0 = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return day0.AddDate(0, 0, n).Add(10 * time.Hour)
}

func order(id string, date time.Time, total, outstanding string, due time.Time) record.Record {
	return record.Record{
		ID: id, Kind: record.KindOrder, Date: date, Amount: money.MustParse(total), Category: "Bordado",
		Order: &record.Order{DueDate: due, Outstanding: money.MustParse(outstanding), Advance: money.Zero(), Status: record.StatusInProgress},
	}
}

func payment(id string, date time.Time, amount, category, client string) record.Record {
	return record.Record{
		ID: id, Kind: record.KindPayment, Date: date, Amount: money.MustParse(amount), Category: category, ClientID: client,
		Payment: &record.Payment{Method: record.MethodCash},
	}
}

func cash(id string, date time.Time, amount, category string, direction record.Direction) record.Record {
	return record.Record{
		ID: id, Kind: record.KindCashMovement, Date: date, Amount: money.MustParse(amount), Category: category,
		Cash: &record.CashMovement{Direction: direction},
	}
}

func mustRange(t *testing.T, from, to time.Time) Range {
	t.Helper()
	rng, err := NewRange(from, to)
	require.NoError(t, err)
	return rng
}

func TestNewRangeRejectsInvertedDates(t *testing.T) {
	_, err := NewRange(day(5), day(1))

	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, day(5), rangeErr.From)
}

func TestNewRangeSameDayIsValid(t *testing.T) {
	rng := mustRange(t, day(3), day(3))

	assert.Equal(t, 1, rng.Days())
	assert.True(t, rng.Contains(day0.AddDate(0, 0, 3)))
	assert.True(t, rng.Contains(day0.AddDate(0, 0, 4).Add(-time.Nanosecond)))
	assert.False(t, rng.Contains(day0.AddDate(0, 0, 4)))
}

func TestEndToEndScenario(t *testing.T) {
	cutoff := day(30)
	records := []record.Record{
		order("o1", day(0), "1000", "1000", cutoff.AddDate(0, 0, -10)),
		order("o2", day(0), "500", "0", cutoff.AddDate(0, 0, -50)),
		order("o3", day(0), "200", "200", cutoff.AddDate(0, 0, -95)),
		payment("p1", day(5), "300", "Abono", "c1"),
		payment("p2", day(20), "200", "Abono", "c2"),
	}

	result, err := Compute(records, mustRange(t, day(0), day(30)), cutoff, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, result.Totals.Income.Equal(money.MustParse("500")))
	assert.True(t, result.Totals.Expense.IsZero())

	want := map[string]string{"0-30": "1000", "31-60": "0", "61-90": "0", "90+": "200"}
	require.Len(t, result.Aging, 4)
	for _, bucket := range result.Aging {
		assert.True(t, bucket.AmountSum.Equal(money.MustParse(want[bucket.Label])), "bucket %s = %s", bucket.Label, bucket.AmountSum)
	}
	assert.Equal(t, 2, result.OpenOrders)
	assert.True(t, result.Outstanding.Equal(money.MustParse("1200")))
}

func TestAgingPartitionIsComplete(t *testing.T) {
	cutoff := day(200)
	records := []record.Record{}
	expected := money.Zero()
	open := 0
	for i := 0; i < 150; i++ {
		outstanding := fmt.Sprintf("%d", (i%7)*10)
		r := order(fmt.Sprintf("o%d", i), day(i), "100", outstanding, cutoff.AddDate(0, 0, -i))
		if i%11 == 0 {
			r.Order.DueDate = time.Time{}
		}
		if i%13 == 0 {
			// due after the cutoff
			r.Order.DueDate = cutoff.AddDate(0, 0, 5)
		}
		records = append(records, r)
		if r.IsOpenOrder() {
			expected = expected.Add(r.Order.Outstanding)
			open++
		}
	}

	result, err := Compute(records, mustRange(t, day(0), day(200)), cutoff, DefaultOptions())
	require.NoError(t, err)

	sum := money.Zero()
	count := 0
	for _, bucket := range result.Aging {
		sum = sum.Add(bucket.AmountSum)
		count += bucket.OrderCount
	}
	assert.True(t, sum.Equal(expected))
	assert.Equal(t, open, count)
}

func TestAgingBoundaries(t *testing.T) {
	cutoff := day(100)
	tests := []struct {
		daysPastDue int
		label       string
	}{
		{-3, "0-30"},
		{0, "0-30"},
		{30, "0-30"},
		{31, "31-60"},
		{60, "31-60"},
		{61, "61-90"},
		{90, "61-90"},
		{91, "90+"},
		{400, "90+"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d days", tt.daysPastDue), func(t *testing.T) {
			records := []record.Record{order("o", day(0), "10", "10", cutoff.AddDate(0, 0, -tt.daysPastDue))}
			result, err := Compute(records, mustRange(t, day(0), cutoff), cutoff, DefaultOptions())
			require.NoError(t, err)

			for _, bucket := range result.Aging {
				if bucket.Label == tt.label {
					assert.Equal(t, 1, bucket.OrderCount)
				} else {
					assert.Equal(t, 0, bucket.OrderCount, bucket.Label)
				}
			}
		})
	}
}

func TestCategoryReconciliation(t *testing.T) {
	records := []record.Record{}
	for i := 0; i < 9; i++ {
		category := fmt.Sprintf("cat-%d", i)
		records = append(records,
			cash(fmt.Sprintf("i%d", i), day(i), fmt.Sprintf("%d.10", 100*(i+1)), category, record.DirectionIncome),
			cash(fmt.Sprintf("e%d", i), day(i), fmt.Sprintf("%d.05", 10*(i+1)), category, record.DirectionExpense),
		)
	}
	records = append(records, cash("blank", day(2), "5", "   ", record.DirectionExpense))

	result, err := Compute(records, mustRange(t, day(0), day(20)), time.Time{}, DefaultOptions())
	require.NoError(t, err)

	for name, rollups := range map[string][]CategoryRollup{"all": result.AllCategories, "collapsed": result.Categories} {
		income, expense := money.Zero(), money.Zero()
		for _, rollup := range rollups {
			income = income.Add(rollup.Income)
			expense = expense.Add(rollup.Expense)
		}
		assert.True(t, income.Equal(result.Totals.Income), name)
		assert.True(t, expense.Equal(result.Totals.Expense), name)
	}

	require.Len(t, result.AllCategories, 10)
	require.Len(t, result.Categories, 6)
	assert.Equal(t, "cat-8", result.Categories[0].Category)
	assert.Equal(t, OtherCategory, result.Categories[5].Category)
	assert.Contains(t, categoryNames(result.AllCategories), record.Uncategorized)
}

func TestCategoryTiesKeepFirstSeenOrder(t *testing.T) {
	records := []record.Record{
		cash("1", day(1), "50", "Hilos", record.DirectionExpense),
		cash("2", day(1), "50", "Agujas", record.DirectionExpense),
		cash("3", day(2), "80", "Venta", record.DirectionIncome),
	}

	result, err := Compute(records, mustRange(t, day(0), day(5)), time.Time{}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"Venta", "Hilos", "Agujas"}, categoryNames(result.Categories))
}

func TestCategoryAtMostTopKeepsEverything(t *testing.T) {
	records := []record.Record{
		cash("1", day(1), "10", "A", record.DirectionIncome),
		cash("2", day(1), "20", "B", record.DirectionIncome),
	}

	result, err := Compute(records, mustRange(t, day(0), day(5)), time.Time{}, Options{TopCategories: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, categoryNames(result.Categories))
}

func categoryNames(rollups []CategoryRollup) []string {
	names := make([]string, 0, len(rollups))
	for _, rollup := range rollups {
		names = append(names, rollup.Category)
	}
	return names
}

func TestSeriesGranularityBoundary(t *testing.T) {
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	daily, err := Compute(nil, mustRange(t, from, from.AddDate(0, 0, 30)), time.Time{}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Daily, daily.Series.Granularity)
	assert.Len(t, daily.Series.Points, 31)

	rng := mustRange(t, from, from.AddDate(0, 0, 31))
	weekly, err := Compute(nil, rng, time.Time{}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Weekly, weekly.Series.Granularity)
	require.Len(t, weekly.Series.Points, 5)

	last := weekly.Series.Points[len(weekly.Series.Points)-1]
	assert.Equal(t, rng.To, last.End)
	for _, point := range weekly.Series.Points {
		assert.False(t, point.End.After(rng.To))
	}
}

func TestSeriesBucketsRecordsByWindow(t *testing.T) {
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rng := mustRange(t, from, from.AddDate(0, 0, 59))
	records := []record.Record{
		cash("1", from.Add(time.Hour), "10", "Venta", record.DirectionIncome),
		cash("2", from.AddDate(0, 0, 6).Add(23*time.Hour), "5", "Venta", record.DirectionIncome),
		cash("3", from.AddDate(0, 0, 7), "7", "Hilos", record.DirectionExpense),
		cash("4", rng.To, "1", "Venta", record.DirectionIncome),
	}

	result, err := Compute(records, rng, time.Time{}, DefaultOptions())
	require.NoError(t, err)

	points := result.Series.Points
	assert.True(t, points[0].Income.Equal(money.MustParse("15")))
	assert.True(t, points[1].Expense.Equal(money.MustParse("7")))
	assert.True(t, points[1].Net.Equal(money.MustParse("-7")))
	assert.True(t, points[len(points)-1].Income.Equal(money.MustParse("1")))
}

func TestComputeReadsDaysInRangeLocation(t *testing.T) {
	bogota := time.FixedZone("COT", -5*60*60)
	rng := mustRange(t,
		time.Date(2024, time.March, 1, 0, 0, 0, 0, bogota),
		time.Date(2024, time.March, 31, 0, 0, 0, 0, bogota),
	)
	// 23:30 on March 31 in Bogota, already April 1 in UTC.
	lateUTC := time.Date(2024, time.April, 1, 4, 30, 0, 0, time.UTC)
	// 21:00 on January 30 in Bogota, 61 days before the range end there.
	dueUTC := time.Date(2024, time.January, 31, 2, 0, 0, 0, time.UTC)
	records := []record.Record{
		payment("p1", lateUTC, "100", "Abono", "c1"),
		order("o1", dueUTC, "50", "50", dueUTC),
	}

	result, err := Compute(records, rng, time.Time{}, DefaultOptions())
	require.NoError(t, err)

	seriesIncome := money.Zero()
	for _, point := range result.Series.Points {
		seriesIncome = seriesIncome.Add(point.Income)
	}
	require.Len(t, result.Series.Points, 31)
	assert.True(t, result.Totals.Income.Equal(money.MustParse("100")))
	assert.True(t, seriesIncome.Equal(result.Totals.Income), "series %s, totals %s", seriesIncome, result.Totals.Income)
	assert.True(t, result.Series.Points[30].Income.Equal(money.MustParse("100")))
	assert.Equal(t, bogota, result.Records[0].Date.Location())

	for _, bucket := range result.Aging {
		if bucket.Label == "61-90" {
			assert.Equal(t, 1, bucket.OrderCount)
		} else {
			assert.Equal(t, 0, bucket.OrderCount, bucket.Label)
		}
	}
}

func TestCounterpartyPercentagesSumToHundred(t *testing.T) {
	records := []record.Record{
		payment("1", day(1), "100", "Abono", "c1"),
		payment("2", day(2), "100", "abono", "c2"),
		payment("3", day(3), "100", "Venta", "c3"),
		payment("4", day(4), "50", "Abono", "c1"),
		payment("5", day(4), "999", "Propina", "c4"),
		payment("6", day(4), "999", "Abono", ""),
	}

	result, err := Compute(records, mustRange(t, day(0), day(10)), time.Time{}, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.Counterparties, 3)
	assert.Equal(t, "c1", result.Counterparties[0].Key)
	assert.Equal(t, 2, result.Counterparties[0].Count)

	total := decimal.Zero
	for _, entry := range result.Counterparties {
		total = total.Add(entry.Percentage)
	}
	assert.True(t, total.Sub(decimal.NewFromInt(100)).Abs().LessThan(decimal.RequireFromString("0.0001")), total.String())

	assert.Len(t, result.TopCounterparties(2), 2)
}

func TestCounterpartiesEmptyWithoutIncome(t *testing.T) {
	records := []record.Record{cash("1", day(1), "40", "Hilos", record.DirectionExpense)}

	result, err := Compute(records, mustRange(t, day(0), day(3)), time.Time{}, DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, result.Counterparties)
	assert.False(t, result.Empty())
}

func TestComputeEmptyRange(t *testing.T) {
	result, err := Compute(nil, mustRange(t, day(0), day(3)), time.Time{}, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, result.Empty())
	assert.True(t, result.Totals.Net.IsZero())
	assert.Len(t, result.Aging, 4)
	assert.Equal(t, result.Range.To, result.Cutoff)
}

func TestPaymentMethodTotals(t *testing.T) {
	transfer := payment("2", day(1), "70", "Abono", "c1")
	transfer.Payment.Method = record.MethodTransfer
	records := []record.Record{payment("1", day(1), "30", "Abono", "c1"), transfer}

	result, err := Compute(records, mustRange(t, day(0), day(3)), time.Time{}, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.Methods, len(record.Methods))
	assert.True(t, result.Methods[0].Amount.Equal(money.MustParse("30")))
	assert.True(t, result.Methods[1].Amount.Equal(money.MustParse("70")))
	assert.Equal(t, 0, result.Methods[2].Count)
}

type fakeSource struct {
	records []record.Record
	err     error
	calls   int
}

func (s *fakeSource) FetchRecords(_ context.Context, filter record.Filter) ([]record.Record, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return filter.Apply(s.records), nil
}

func TestRunRejectsRangeBeforeFetching(t *testing.T) {
	source := &fakeSource{}
	aggregator := New(source, DefaultOptions())

	_, err := aggregator.Run(context.Background(), Query{Range: Range{From: day(9), To: day(1)}})

	var rangeErr *RangeError
	assert.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 0, source.calls)
}

func TestRunAbortsOnFetchFailure(t *testing.T) {
	broken := errors.New("connection reset")
	aggregator := New(&fakeSource{err: broken}, DefaultOptions())

	result, err := aggregator.Run(context.Background(), Query{Range: mustRange(t, day(0), day(3))})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, broken)
	var sourceErr *SourceError
	assert.ErrorAs(t, err, &sourceErr)
}

func TestRunAddsOpenOrdersOutsideRangeForAging(t *testing.T) {
	source := &fakeSource{records: []record.Record{
		order("old", day(-120), "400", "400", day(-100)),
		order("new", day(2), "100", "100", day(20)),
		payment("p", day(3), "50", "Abono", "c1"),
	}}
	aggregator := New(source, DefaultOptions())
	query := Query{
		Range:     mustRange(t, day(0), day(30)),
		Kinds:     []record.Kind{record.KindOrder, record.KindPayment},
		WithAging: true,
	}

	result, err := aggregator.Run(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, 2, result.OpenOrders)
	assert.True(t, result.Outstanding.Equal(money.MustParse("500")))
	assert.Len(t, result.Records, 2)
	assert.Equal(t, 2, source.calls)
}

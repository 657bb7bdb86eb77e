package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embroidery-reports/src/pkg/money"
)

var day = time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

func TestValidate(t *testing.T) {
	valid := []Record{
		{ID: "o1", Kind: KindOrder, Date: day, Amount: money.MustParse("100"), Order: &Order{Outstanding: money.MustParse("40")}},
		{ID: "p1", Kind: KindPayment, Date: day, Amount: money.MustParse("60"), Payment: &Payment{Method: MethodTransfer}},
		{ID: "c1", Kind: KindCashMovement, Date: day, Amount: money.MustParse("10"), Cash: &CashMovement{Direction: DirectionExpense}},
	}
	for _, r := range valid {
		assert.NoError(t, r.Validate(), r.ID)
	}

	invalid := []Record{
		{Kind: KindOrder, Date: day, Order: &Order{}},
		{ID: "x", Kind: KindOrder, Order: &Order{}},
		{ID: "x", Kind: KindPayment, Date: day, Amount: money.MustParse("-1"), Payment: &Payment{Method: MethodCash}},
		{ID: "x", Kind: KindPayment, Date: day, Payment: &Payment{Method: "cheque"}},
		{ID: "x", Kind: KindOrder, Date: day, Payment: &Payment{Method: MethodCash}},
		{ID: "x", Kind: KindCashMovement, Date: day, Cash: &CashMovement{Direction: "sideways"}},
		{ID: "x", Kind: "invoice", Date: day},
	}
	for i, r := range invalid {
		assert.Error(t, r.Validate(), "case %d", i)
	}
}

func TestIncomeExpenseClassification(t *testing.T) {
	order := Record{Kind: KindOrder, Amount: money.MustParse("1000"), Order: &Order{Advance: money.MustParse("300")}}
	payment := Record{Kind: KindPayment, Amount: money.MustParse("200"), Payment: &Payment{Method: MethodCash}}
	cashIn := Record{Kind: KindCashMovement, Amount: money.MustParse("50"), Cash: &CashMovement{Direction: DirectionIncome}}
	cashOut := Record{Kind: KindCashMovement, Amount: money.MustParse("70"), Cash: &CashMovement{Direction: DirectionExpense}}

	assert.True(t, order.Income().Equal(money.MustParse("300")))
	assert.True(t, order.Expense().IsZero())
	assert.True(t, payment.Income().Equal(money.MustParse("200")))
	assert.True(t, cashIn.Income().Equal(money.MustParse("50")))
	assert.True(t, cashIn.Expense().IsZero())
	assert.True(t, cashOut.Income().IsZero())
	assert.True(t, cashOut.Expense().Equal(money.MustParse("70")))
}

func TestCounterpartyAndCategory(t *testing.T) {
	key, name, ok := Record{ClientID: "c-1", ClientName: "Ana"}.Counterparty()
	require.True(t, ok)
	assert.Equal(t, "c-1", key)
	assert.Equal(t, "Ana", name)

	key, name, ok = Record{ClientName: " Luis "}.Counterparty()
	require.True(t, ok)
	assert.Equal(t, "Luis", key)
	assert.Equal(t, "Luis", name)

	_, _, ok = Record{}.Counterparty()
	assert.False(t, ok)

	assert.Equal(t, Uncategorized, NormalizeCategory("   "))
	assert.Equal(t, "Bordado", NormalizeCategory(" Bordado "))
}

func TestFilterMatch(t *testing.T) {
	from := day.Add(-time.Hour)
	to := day.Add(time.Hour)
	open := Record{ID: "o", Kind: KindOrder, Date: day, Category: " venta ", ClientID: "c1", Order: &Order{Outstanding: money.MustParse("5")}}
	closed := Record{ID: "o2", Kind: KindOrder, Date: day, ClientID: "c1", Order: &Order{}}

	assert.True(t, Filter{From: &from, To: &to}.Match(open))
	assert.False(t, Filter{From: &to}.Match(open))
	assert.True(t, Filter{Category: "VENTA"}.Match(open))
	assert.False(t, Filter{Category: "Gasto"}.Match(open))
	assert.False(t, Filter{Kinds: []Kind{KindPayment}}.Match(open))
	assert.False(t, Filter{ClientID: "c2"}.Match(open))
	assert.True(t, Filter{OpenOrdersOnly: true}.Match(open))
	assert.False(t, Filter{OpenOrdersOnly: true}.Match(closed))

	assert.Len(t, Filter{OpenOrdersOnly: true}.Apply([]Record{open, closed}), 1)
}

// Package record defines the financial records the reports are built from:
// orders, payments (abonos) and cash movements, plus the clients they reference.
package record

import (
	"fmt"
	"strings"
	"time"

	"embroidery-reports/src/pkg/money"
)

// Kind tags which variant a Record carries.
type Kind string

const (
	KindOrder        Kind = "order"
	KindPayment      Kind = "payment"
	KindCashMovement Kind = "cash_movement"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusInProgress OrderStatus = "in_progress"
	StatusReady      OrderStatus = "ready"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
	MethodCard     PaymentMethod = "card"
)

// Methods lists payment methods in display order.
var Methods = []PaymentMethod{MethodCash, MethodTransfer, MethodCard}

type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// Uncategorized replaces empty categories.
const Uncategorized = "Uncategorized"

/*
Record is a point-in-time snapshot of one financial document.

Exactly one of Order, Payment or Cash is set, matching Kind. For orders Amount
is the order total; for payments and cash movements it is the moved amount.
ClientName is filled by the store join and may be empty.
*/
type Record struct {
	ID         string      `json:"id"`
	Kind       Kind        `json:"kind"`
	Date       time.Time   `json:"date"`
	Amount     money.Money `json:"amount"`
	Category   string      `json:"category"`
	ClientID   string      `json:"client_id,omitempty"`
	ClientName string      `json:"client_name,omitempty"`
	Notes      string      `json:"notes,omitempty"`

	Order   *Order        `json:"order,omitempty"`
	Payment *Payment      `json:"payment,omitempty"`
	Cash    *CashMovement `json:"cash,omitempty"`
}

// Order is a customer job with a due date and an outstanding balance.
type Order struct {
	DueDate     time.Time   `json:"due_date"`
	Outstanding money.Money `json:"outstanding"`
	Advance     money.Money `json:"advance"`
	Status      OrderStatus `json:"status"`
}

// Payment settles part of an order balance.
type Payment struct {
	Method   PaymentMethod `json:"method"`
	OrderRef string        `json:"order_ref,omitempty"`
}

// CashMovement is a generic ledger entry.
type CashMovement struct {
	Direction Direction `json:"direction"`
	OrderRef  string    `json:"order_ref,omitempty"`
}

// Client is a counterparty of income records.
type Client struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Validate checks the variant shape and that every amount is non-negative.
func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("record has no id")
	}
	if r.Date.IsZero() {
		return fmt.Errorf("record '%s' has no date", r.ID)
	}
	if r.Amount.IsNegative() {
		return fmt.Errorf("record '%s' has negative amount %s", r.ID, r.Amount)
	}

	switch r.Kind {
	case KindOrder:
		if r.Order == nil || r.Payment != nil || r.Cash != nil {
			return fmt.Errorf("order '%s' must carry only order details", r.ID)
		}
		if r.Order.Outstanding.IsNegative() || r.Order.Advance.IsNegative() {
			return fmt.Errorf("order '%s' has negative balance or advance", r.ID)
		}
	case KindPayment:
		if r.Payment == nil || r.Order != nil || r.Cash != nil {
			return fmt.Errorf("payment '%s' must carry only payment details", r.ID)
		}
		switch r.Payment.Method {
		case MethodCash, MethodTransfer, MethodCard:
		default:
			return fmt.Errorf("payment '%s' has unknown method '%s'", r.ID, r.Payment.Method)
		}
	case KindCashMovement:
		if r.Cash == nil || r.Order != nil || r.Payment != nil {
			return fmt.Errorf("cash movement '%s' must carry only cash details", r.ID)
		}
		switch r.Cash.Direction {
		case DirectionIncome, DirectionExpense:
		default:
			return fmt.Errorf("cash movement '%s' has unknown direction '%s'", r.ID, r.Cash.Direction)
		}
	default:
		return fmt.Errorf("record '%s' has unknown kind '%s'", r.ID, r.Kind)
	}

	return nil
}

/*
Income returns the amount this record contributes to income.

Orders contribute their advance payment, payments their full amount, and
cash movements their amount when the direction is income.
*/
func (r Record) Income() money.Money {
	switch r.Kind {
	case KindOrder:
		if r.Order != nil {
			return r.Order.Advance
		}
	case KindPayment:
		return r.Amount
	case KindCashMovement:
		if r.Cash != nil && r.Cash.Direction == DirectionIncome {
			return r.Amount
		}
	}
	return money.Zero()
}

// Expense returns the amount this record contributes to expenses.
func (r Record) Expense() money.Money {
	if r.Kind == KindCashMovement && r.Cash != nil && r.Cash.Direction == DirectionExpense {
		return r.Amount
	}
	return money.Zero()
}

// IsOpenOrder reports whether r is an order with a positive outstanding balance.
func (r Record) IsOpenOrder() bool {
	return r.Kind == KindOrder && r.Order != nil && r.Order.Outstanding.IsPositive()
}

// Reference returns the order reference of a payment or cash movement, if any.
func (r Record) Reference() string {
	switch {
	case r.Payment != nil:
		return r.Payment.OrderRef
	case r.Cash != nil:
		return r.Cash.OrderRef
	}
	return ""
}

// Counterparty returns the grouping key and display name of the record's client.
// ok is false when the record references no client at all.
func (r Record) Counterparty() (key string, name string, ok bool) {
	id := strings.TrimSpace(r.ClientID)
	name = strings.TrimSpace(r.ClientName)
	switch {
	case id != "" && name != "":
		return id, name, true
	case id != "":
		return id, id, true
	case name != "":
		return name, name, true
	}
	return "", "", false
}

// NormalizeCategory trims the label and maps empty labels to Uncategorized.
func NormalizeCategory(category string) string {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return Uncategorized
	}
	return trimmed
}

// Label returns a short human name for a kind.
func (k Kind) Label() string {
	switch k {
	case KindOrder:
		return "Order"
	case KindPayment:
		return "Payment"
	case KindCashMovement:
		return "Cash"
	}
	return string(k)
}

func (m PaymentMethod) Label() string {
	switch m {
	case MethodCash:
		return "Cash"
	case MethodTransfer:
		return "Transfer"
	case MethodCard:
		return "Card"
	}
	return string(m)
}

func (s OrderStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

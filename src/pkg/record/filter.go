package record

import (
	"slices"
	"strings"
	"time"
)

/*
Filter selects records from a record store.

Nil From/To leave that side open. Kinds empty means every kind. Category is
compared after NormalizeCategory, case-insensitively. OpenOrdersOnly keeps
only orders with a positive outstanding balance.
*/
type Filter struct {
	From           *time.Time `json:"from,omitempty"`
	To             *time.Time `json:"to,omitempty"`
	Category       string     `json:"category,omitempty"`
	Kinds          []Kind     `json:"kinds,omitempty"`
	ClientID       string     `json:"client_id,omitempty"`
	OpenOrdersOnly bool       `json:"open_orders_only,omitempty"`
}

// Match reports whether r passes every criterion of f.
func (f Filter) Match(r Record) bool {
	if f.From != nil && r.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && r.Date.After(*f.To) {
		return false
	}
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, r.Kind) {
		return false
	}
	if f.ClientID != "" && r.ClientID != f.ClientID {
		return false
	}
	if strings.TrimSpace(f.Category) != "" && !strings.EqualFold(NormalizeCategory(f.Category), NormalizeCategory(r.Category)) {
		return false
	}
	if f.OpenOrdersOnly && !r.IsOpenOrder() {
		return false
	}
	return true
}

// Apply returns the records matching f, preserving order.
func (f Filter) Apply(records []Record) []Record {
	matched := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			matched = append(matched, r)
		}
	}
	return matched
}

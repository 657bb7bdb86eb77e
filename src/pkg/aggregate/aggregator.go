package aggregate

import (
	"context"
	"fmt"
	"time"

	"embroidery-reports/src/pkg/record"
)

// Source fetches records matching a filter. The record store implements it.
type Source interface {
	FetchRecords(ctx context.Context, filter record.Filter) ([]record.Record, error)
}

// SourceError wraps a failed fetch. The run is aborted with no partial result.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Query selects the records of one report run.
type Query struct {
	Range    Range
	Cutoff   time.Time
	Kinds    []record.Kind
	Category string
	ClientID string
	// WithAging adds every open order to the input, even those dated outside
	// Range. Without it the aging only sees open orders dated inside Range.
	WithAging bool
}

// Aggregator runs Compute over records fetched from an injected Source.
type Aggregator struct {
	source  Source
	options Options
}

func New(source Source, options Options) *Aggregator {
	return &Aggregator{source: source, options: options}
}

/*
Run validates the range, fetches the records and computes the result.

The range is checked before any fetch so an inverted range never reaches the
store. A failed fetch aborts the run; no partial result is returned.
*/
func (a *Aggregator) Run(ctx context.Context, query Query) (*Result, error) {
	err := query.Range.Validate()
	if err != nil {
		return nil, err
	}

	from, to := query.Range.From, query.Range.To
	records, err := a.source.FetchRecords(ctx, record.Filter{
		From:     &from,
		To:       &to,
		Category: query.Category,
		Kinds:    query.Kinds,
		ClientID: query.ClientID,
	})
	if err != nil {
		return nil, &SourceError{Op: "fetch records in range", Err: err}
	}

	if query.WithAging {
		open, err := a.source.FetchRecords(ctx, record.Filter{
			Kinds:          []record.Kind{record.KindOrder},
			ClientID:       query.ClientID,
			OpenOrdersOnly: true,
		})
		if err != nil {
			return nil, &SourceError{Op: "fetch open orders", Err: err}
		}
		records = mergeByID(records, open)
	}

	return Compute(records, query.Range, query.Cutoff, a.options)
}

// mergeByID appends the extra records whose IDs are not already present.
func mergeByID(records, extra []record.Record) []record.Record {
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		seen[r.ID] = true
	}
	for _, r := range extra {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		records = append(records, r)
	}
	return records
}

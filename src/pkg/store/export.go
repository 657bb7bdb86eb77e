package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"embroidery-reports/src/pkg/money"
	"embroidery-reports/src/pkg/record"
)

// Collection file names inside an export directory, without extension.
const (
	CollectionOrders        = "orders"
	CollectionPayments      = "payments"
	CollectionCashMovements = "cash_movements"
	CollectionClients       = "clients"
)

// LoadStats counts the documents of the last load.
type LoadStats struct {
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
}

/*
ExportDir reads records from a document database export: one JSON array per
collection, stored as <collection>.json or brotli-compressed as
<collection>.json.br. The export is re-read on every fetch so each report is
computed from the files as they are at that moment.

Documents are validated at this boundary. Invalid ones are skipped with a
warning and counted in Stats.
*/
type ExportDir struct {
	dir      string
	location *time.Location

	mu    sync.Mutex
	stats LoadStats
}

func NewExportDir(dir string, location *time.Location) *ExportDir {
	if location == nil {
		location = time.UTC
	}
	return &ExportDir{dir: dir, location: location}
}

// Stats returns the counts of the last FetchRecords call.
func (s *ExportDir) Stats() LoadStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// FetchRecords loads every collection, joins clients and applies filter.
func (s *ExportDir) FetchRecords(ctx context.Context, filter record.Filter) ([]record.Record, error) {
	clients, err := s.Clients(ctx)
	if err != nil {
		return nil, err
	}

	stats := LoadStats{}
	records := make([]record.Record, 0)
	for _, collection := range []string{CollectionOrders, CollectionPayments, CollectionCashMovements} {
		err = ctx.Err()
		if err != nil {
			return nil, err
		}

		var documents []exportDocument
		err = s.readCollection(collection, &documents)
		if err != nil {
			return nil, err
		}

		for index, document := range documents {
			r, err := document.toRecord(collection, s.location)
			if err == nil {
				err = r.Validate()
			}
			if err != nil {
				tl.Log(tl.Warning, palette.PurpleBright, "Skipping document '%s' of '%s': %s", index, collection, err)
				stats.Skipped++
				continue
			}
			records = append(records, r)
			stats.Loaded++
		}
	}

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()

	records = joinClients(records, clients)
	matched := filter.Apply(records)
	tl.Log(tl.Verbose, palette.Cyan, "Loaded '%s' records from '%s' ('%s' skipped), '%s' match", stats.Loaded, s.dir, stats.Skipped, len(matched))
	return matched, nil
}

// Clients loads the client collection keyed by ID.
func (s *ExportDir) Clients(ctx context.Context) (map[string]record.Client, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	var documents []record.Client
	err = s.readCollection(CollectionClients, &documents)
	if err != nil {
		return nil, err
	}

	clients := make(map[string]record.Client, len(documents))
	for _, client := range documents {
		if strings.TrimSpace(client.ID) == "" {
			continue
		}
		clients[client.ID] = client
	}
	return clients, nil
}

// LookupClient finds a client by ID in the client collection.
func (s *ExportDir) LookupClient(ctx context.Context, id string) (record.Client, bool, error) {
	clients, err := s.Clients(ctx)
	if err != nil {
		return record.Client{}, false, err
	}
	client, ok := clients[id]
	return client, ok, nil
}

/*
readCollection decodes <collection>.json.br when present, else
<collection>.json. A collection with neither file decodes to nothing.
*/
func (s *ExportDir) readCollection(collection string, into any) error {
	compressedPath := filepath.Join(s.dir, collection+".json.br")
	plainPath := filepath.Join(s.dir, collection+".json")

	file, err := os.Open(compressedPath)
	path := compressedPath
	if errors.Is(err, fs.ErrNotExist) {
		file, err = os.Open(plainPath)
		path = plainPath
	}
	if errors.Is(err, fs.ErrNotExist) {
		tl.Log(tl.Verbose, palette.PurpleBright, "Collection '%s' is %s in '%s'", collection, "missing", s.dir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	var reader io.Reader = file
	if path == compressedPath {
		reader = brotli.NewReader(file)
	}

	err = json.NewDecoder(reader).Decode(into)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// exportDocument is the union of the fields of the three record collections.
type exportDocument struct {
	ID          string       `json:"id"`
	Date        exportTime   `json:"date"`
	Category    string       `json:"category"`
	ClientID    string       `json:"client_id"`
	Notes       string       `json:"notes"`
	Amount      *money.Money `json:"amount"`
	Total       *money.Money `json:"total"`
	Advance     *money.Money `json:"advance"`
	Outstanding *money.Money `json:"outstanding"`
	DueDate     exportTime   `json:"due_date"`
	Status      string       `json:"status"`
	Method      string       `json:"method"`
	Direction   string       `json:"direction"`
	OrderID     string       `json:"order_id"`
}

func valueOrZero(amount *money.Money) money.Money {
	if amount == nil {
		return money.Zero()
	}
	return *amount
}

func (d exportDocument) toRecord(collection string, location *time.Location) (record.Record, error) {
	r := record.Record{
		ID:       strings.TrimSpace(d.ID),
		Category: d.Category,
		ClientID: strings.TrimSpace(d.ClientID),
		Notes:    d.Notes,
	}
	date, err := d.Date.in(location)
	if err != nil {
		return r, fmt.Errorf("date: %w", err)
	}
	r.Date = date

	switch collection {
	case CollectionOrders:
		due, err := d.DueDate.in(location)
		if err != nil {
			return r, fmt.Errorf("due_date: %w", err)
		}
		r.Kind = record.KindOrder
		r.Amount = valueOrZero(d.Total)
		if d.Total == nil {
			r.Amount = valueOrZero(d.Amount)
		}
		outstanding := valueOrZero(d.Outstanding)
		if d.Outstanding == nil {
			outstanding = r.Amount.Sub(valueOrZero(d.Advance))
		}
		r.Order = &record.Order{
			DueDate:     due,
			Outstanding: outstanding,
			Advance:     valueOrZero(d.Advance),
			Status:      record.OrderStatus(d.Status),
		}
	case CollectionPayments:
		r.Kind = record.KindPayment
		r.Amount = valueOrZero(d.Amount)
		r.Payment = &record.Payment{Method: record.PaymentMethod(strings.ToLower(d.Method)), OrderRef: d.OrderID}
	case CollectionCashMovements:
		r.Kind = record.KindCashMovement
		r.Amount = valueOrZero(d.Amount)
		r.Cash = &record.CashMovement{Direction: record.Direction(strings.ToLower(d.Direction)), OrderRef: d.OrderID}
	default:
		return r, fmt.Errorf("unknown collection %s", collection)
	}
	return r, nil
}

// exportTime accepts RFC 3339 timestamps and bare YYYY-MM-DD dates.
type exportTime struct {
	raw string
}

func (t *exportTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.raw = ""
		return nil
	}
	return json.Unmarshal(data, &t.raw)
}

// in parses the value, reading bare dates in location. Empty gives zero time.
func (t exportTime) in(location *time.Location) (time.Time, error) {
	raw := strings.TrimSpace(t.raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.In(location), nil
	}
	return time.ParseInLocation("2006-01-02", raw, location)
}

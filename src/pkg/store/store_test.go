package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embroidery-reports/src/pkg/money"
	"embroidery-reports/src/pkg/record"
)

var bogota = time.FixedZone("COT", -5*60*60)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeBrotli(t *testing.T, dir, name, content string) {
	t.Helper()
	var buf bytes.Buffer
	writer := brotli.NewWriter(&buf)
	_, err := writer.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
}

func sampleExport(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "clients.json", `[
		{"id": "c1", "name": "Colegio San José", "phone": "+57 300 000 0001"},
		{"id": "c2", "name": "Club Deportivo"}
	]`)
	writeFile(t, dir, "orders.json", `[
		{"id": "o1", "date": "2024-03-02", "total": 1000, "advance": "400", "due_date": "2024-03-20", "status": "in_progress", "category": "Bordado", "client_id": "c1"},
		{"id": "o2", "date": "2024-03-04T15:00:00Z", "total": 500, "advance": 500, "outstanding": 0, "status": "delivered", "client_id": "c2"},
		{"id": "bad-negative", "date": "2024-03-04", "total": -5}
	]`)
	writeBrotli(t, dir, "payments.json.br", `[
		{"id": "p1", "date": "2024-03-10", "amount": 300, "method": "Transfer", "order_id": "o1", "category": "Abono"},
		{"id": "bad-method", "date": "2024-03-10", "amount": 1, "method": "barter"}
	]`)
	// the compressed file wins over this stale copy
	writeFile(t, dir, "payments.json", `[{"id": "stale", "date": "2024-03-10", "amount": 9, "method": "cash"}]`)
	writeFile(t, dir, "cash_movements.json", `[
		{"id": "m1", "date": "2024-03-11", "amount": 80, "direction": "expense", "category": "Hilos"},
		{"id": "", "date": "2024-03-11", "amount": 80, "direction": "expense"},
		{"id": "m2", "date": "not a date", "amount": 80, "direction": "expense"}
	]`)
	return dir
}

func byID(records []record.Record) map[string]record.Record {
	index := make(map[string]record.Record, len(records))
	for _, r := range records {
		index[r.ID] = r
	}
	return index
}

func TestExportDirLoadsValidatesAndJoins(t *testing.T) {
	source := NewExportDir(sampleExport(t), bogota)

	records, err := source.FetchRecords(context.Background(), record.Filter{})
	require.NoError(t, err)

	assert.Equal(t, LoadStats{Loaded: 4, Skipped: 4}, source.Stats())
	found := byID(records)
	require.Len(t, found, 4)
	assert.NotContains(t, found, "stale")

	o1 := found["o1"]
	assert.Equal(t, record.KindOrder, o1.Kind)
	assert.Equal(t, "Colegio San José", o1.ClientName)
	assert.True(t, o1.Order.Outstanding.Equal(money.MustParse("600")))
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, bogota).Unix(), o1.Date.Unix())

	p1 := found["p1"]
	assert.Equal(t, record.MethodTransfer, p1.Payment.Method)
	assert.Equal(t, "c1", p1.ClientID)
	assert.Equal(t, "Colegio San José", p1.ClientName)

	assert.True(t, found["o2"].Order.Outstanding.IsZero())
	assert.Equal(t, record.DirectionExpense, found["m1"].Cash.Direction)

	client, ok, err := source.LookupClient(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "+57 300 000 0001", client.Phone)
}

func TestExportDirAppliesFilter(t *testing.T) {
	source := NewExportDir(sampleExport(t), bogota)

	records, err := source.FetchRecords(context.Background(), record.Filter{ClientID: "c1", Kinds: []record.Kind{record.KindPayment}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "p1", records[0].ID)

	open, err := source.FetchRecords(context.Background(), record.Filter{OpenOrdersOnly: true})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "o1", open[0].ID)
}

func TestExportDirMissingCollectionsAreEmpty(t *testing.T) {
	source := NewExportDir(t.TempDir(), nil)

	records, err := source.FetchRecords(context.Background(), record.Filter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExportDirMalformedCollectionFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orders.json", `{"id": "not an array"}`)

	_, err := NewExportDir(dir, nil).FetchRecords(context.Background(), record.Filter{})
	assert.ErrorContains(t, err, "orders.json")
}

func TestExportDirHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExportDir(sampleExport(t), nil).FetchRecords(ctx, record.Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryJoinsAndFilters(t *testing.T) {
	date := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	memory := NewMemory([]record.Record{
		{ID: "o1", Kind: record.KindOrder, Date: date, Amount: money.MustParse("100"), ClientID: "c1",
			Order: &record.Order{Outstanding: money.MustParse("100"), Advance: money.Zero()}},
		{ID: "p1", Kind: record.KindPayment, Date: date, Amount: money.MustParse("10"),
			Payment: &record.Payment{Method: record.MethodCash, OrderRef: "o1"}},
	}, []record.Client{{ID: "c1", Name: "Ana"}})

	records, err := memory.FetchRecords(context.Background(), record.Filter{Kinds: []record.Kind{record.KindPayment}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ana", records[0].ClientName)

	client, ok, err := memory.LookupClient(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Ana", client.Name)
}

// Package store provides the record sources reports are computed from.
package store

import (
	"context"
	"slices"
	"sync"

	"embroidery-reports/src/pkg/record"
)

// Memory keeps records and clients in memory. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records []record.Record
	clients map[string]record.Client
}

func NewMemory(records []record.Record, clients []record.Client) *Memory {
	m := &Memory{clients: make(map[string]record.Client)}
	m.Add(records...)
	m.AddClients(clients...)
	return m
}

func (m *Memory) Add(records ...record.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
}

func (m *Memory) AddClients(clients ...record.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, client := range clients {
		m.clients[client.ID] = client
	}
}

// LookupClient finds a client by ID.
func (m *Memory) LookupClient(ctx context.Context, id string) (record.Client, bool, error) {
	err := ctx.Err()
	if err != nil {
		return record.Client{}, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.clients[id]
	return client, ok, nil
}

// FetchRecords returns copies of the matching records with client names joined.
func (m *Memory) FetchRecords(ctx context.Context, filter record.Filter) ([]record.Record, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	records := slices.Clone(m.records)
	clients := m.clients
	joined := joinClients(records, clients)
	m.mu.RUnlock()

	return filter.Apply(joined), nil
}

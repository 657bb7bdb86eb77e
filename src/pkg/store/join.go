package store

import (
	"embroidery-reports/src/pkg/record"
)

/*
joinClients fills client fields in one pass over the records.

Payments and cash movements without a client inherit the client of the order
they reference. ClientName is then filled from the client list wherever it is
empty. The input slice is modified and returned.
*/
func joinClients(records []record.Record, clients map[string]record.Client) []record.Record {
	orderClients := make(map[string]string)
	for _, r := range records {
		if r.Kind == record.KindOrder && r.ClientID != "" {
			orderClients[r.ID] = r.ClientID
		}
	}

	for index := range records {
		r := &records[index]
		if r.ClientID == "" {
			if ref := r.Reference(); ref != "" {
				r.ClientID = orderClients[ref]
			}
		}
		if r.ClientName == "" && r.ClientID != "" {
			if client, ok := clients[r.ClientID]; ok {
				r.ClientName = client.Name
			}
		}
	}
	return records
}

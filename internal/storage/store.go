// Package storage provides the durable key-value store behind the ledger.
//
// The ledger uses four logical keys: the two entry collections (stored as
// JSON arrays, rewritten whole on every mutation) and the session currency
// and location. Crash safety is whatever the backing store guarantees per
// write; no partial-write recovery is layered on top.
package storage

import "context"

const (
	KeyIncomeLedger  = "ledger:income"
	KeyExpenseLedger = "ledger:expense"
	KeyCurrency      = "session:currency"
	KeyLocation      = "session:location"
)

// Store is a durable key-value store. Get reports presence explicitly so a
// missing key is distinguishable from an empty value.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Close() error
}

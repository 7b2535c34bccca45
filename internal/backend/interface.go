package backend

import (
	"tally/internal/ledger"
	"tally/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the wired entry service and optional cleanup function
type Result struct {
	Service *services.EntryService
	Ledger  *ledger.Ledger
	Cleanup CleanupFunc
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// AMQP (optional; empty URL disables event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Currency assumed when the store holds no session locale
	DefaultCurrency string
}

// Type represents the storage backend type
type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLite, Memory:
		return true
	default:
		return false
	}
}

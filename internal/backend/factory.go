package backend

import (
	"context"
	"fmt"

	"tally/internal/amqp"
	"tally/internal/ledger"
	"tally/internal/log"
	"tally/internal/services"
	"tally/internal/storage"
)

// Factory wires a store, ledger and entry service from configuration.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Create builds the backend. The ledger is loaded before returning, so
// the service is immediately usable.
func (f *Factory) Create(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	var store storage.Store
	switch config.Type {
	case SQLite:
		s, err := storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		store = s
		f.logger.InfoContext(ctx, "Initialized sqlite backend", "db_path", config.SQLiteDBPath)
	case Memory:
		store = storage.NewMemoryStore()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	}

	// AMQP is optional; a broker failure degrades to local-only operation.
	var publisher services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err.Error())
		} else {
			publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	var opts []ledger.Option
	if config.DefaultCurrency != "" {
		opts = append(opts, ledger.WithDefaultCurrency(config.DefaultCurrency))
	}
	l := ledger.New(store, f.logger, opts...)
	if err := l.Load(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	svc := services.NewEntryService(l, store, publisher, f.logger)

	return &Result{
		Service: svc,
		Ledger:  l,
		Cleanup: svc.Close,
	}, nil
}

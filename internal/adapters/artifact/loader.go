package artifact

import (
	"context"
	"fmt"

	"github.com/okian/encore/internal/adapters/objstore"
	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/pkg/logger"
)

// Store is the destination of loaded tables.
type Store interface {
	Replace(ctx context.Context, name model.TableName, rows []model.Row) error
}

// Loader fetches, decodes, and publishes one table at a time. A failed
// load leaves the previously published table in place.
type Loader struct {
	fetcher objstore.Fetcher
	store   Store
	keys    Keys
	logger  logger.Logger
}

// LoaderOption applies a configuration option to the Loader.
type LoaderOption func(*Loader)

// WithKeys sets the object key layout.
func WithKeys(keys Keys) LoaderOption {
	return func(l *Loader) {
		l.keys = keys
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(logger logger.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader writing into store.
func NewLoader(fetcher objstore.Fetcher, store Store, opts ...LoaderOption) *Loader {
	l := &Loader{
		fetcher: fetcher,
		store:   store,
		keys:    NewKeys(""),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("artifact")
	}
	return l
}

// Load replaces one table from its published artifact and returns the
// number of rows loaded.
func (l *Loader) Load(ctx context.Context, table model.TableName) (int, error) {
	key := l.keys.Object(table)
	l.logger.Info(ctx, "loading table",
		logger.String("table", string(table)),
		logger.String("key", key),
	)

	data, err := l.fetcher.Fetch(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", table, err)
	}

	rows, err := Decode(table, data)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", table, err)
	}

	if err := l.store.Replace(ctx, table, rows); err != nil {
		return 0, fmt.Errorf("load %s: %w", table, err)
	}

	l.logger.Info(ctx, "loaded table",
		logger.String("table", string(table)),
		logger.Int("rows", len(rows)),
	)
	return len(rows), nil
}

package storage

import (
	"context"
	"fmt"
	"time"

	"checkered/cartgate/pkg/cart"
	"checkered/cartgate/pkg/checkout"
	"checkered/cartgate/pkg/remediation"
)

// Store is the full catalog and cart store.
type Store interface {
	remediation.Catalog
	checkout.CartStore

	UpsertProduct(ctx context.Context, p *ProductRecord) error
	SaveCart(ctx context.Context, snap *cart.Snapshot) error
	DeleteCart(ctx context.Context, cartID string) error
	Ping(ctx context.Context) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	// Backend is "sqlite" or "memory".
	Backend string

	// SQLite settings, used when Backend is "sqlite".
	Path               string
	Driver             string
	BusyTimeout        time.Duration
	CheckpointInterval time.Duration
}

// Open creates the configured store.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite, "":
		return NewSQLiteStoreWithConfig(SQLiteConfig{
			Path:               opts.Path,
			Driver:             opts.Driver,
			BusyTimeout:        opts.BusyTimeout,
			CheckpointInterval: opts.CheckpointInterval,
		})
	default:
		return nil, fmt.Errorf("unsupported catalog backend %q", opts.Backend)
	}
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

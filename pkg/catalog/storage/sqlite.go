package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // cgo SQLite driver ("sqlite3")
	_ "modernc.org/sqlite"          // pure Go SQLite driver ("sqlite")

	"checkered/cartgate/pkg/cart"
	"checkered/cartgate/pkg/checkout"
	"checkered/cartgate/pkg/remediation"
)

// SQLite driver names.
const (
	DriverModernc = "sqlite"
	DriverCGO     = "sqlite3"
)

// SQLiteConfig configures the SQLite store.
type SQLiteConfig struct {
	// Path is the path to the SQLite database file.
	Path string

	// Driver selects the database/sql driver.
	// Options: "sqlite" (modernc), "sqlite3" (mattn)
	// Default: "sqlite"
	Driver string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration
}

// SQLiteStore implements the catalog and cart store on SQLite.
type SQLiteStore struct {
	db                 *sql.DB
	driver             string
	checkpointInterval time.Duration
	done               chan struct{}
	mu                 sync.RWMutex
	closeOnce          sync.Once
	closed             bool

	listStmt           *sql.Stmt
	loadCartStmt       *sql.Stmt
	loadLinesStmt      *sql.Stmt
	loadCategoriesStmt *sql.Stmt
}

// NewSQLiteStore opens the database at path with the default driver.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteConfig{Path: path})
}

// NewSQLiteStoreWithConfig opens a SQLite store with custom configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, errors.New("db path cannot be empty")
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverModernc
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:                 db,
		driver:             cfg.Driver,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go s.checkpointLoop()

	return s, nil
}

// buildDSN returns the driver-specific connection string. Both drivers run in
// WAL mode with foreign keys enabled.
func buildDSN(cfg SQLiteConfig) (string, error) {
	busy := cfg.BusyTimeout.Milliseconds()

	switch cfg.Driver {
	case DriverModernc:
		return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)",
			cfg.Path, busy), nil
	case DriverCGO:
		return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL&_foreign_keys=on",
			cfg.Path, busy), nil
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q", cfg.Driver)
	}
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.listStmt, err = s.db.Prepare(listByCategorySQL)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	s.loadCartStmt, err = s.db.Prepare(loadCartSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare cart statement: %w", err)
	}

	s.loadLinesStmt, err = s.db.Prepare(loadCartLinesSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare cart lines statement: %w", err)
	}

	s.loadCategoriesStmt, err = s.db.Prepare(loadCartCategoriesSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare cart categories statement: %w", err)
	}

	return nil
}

// Driver returns the database/sql driver name in use.
func (s *SQLiteStore) Driver() string {
	return s.driver
}

// UpsertProduct inserts or replaces a product with its categories, variants
// and prices. The creation time of an existing product is preserved.
func (s *SQLiteStore) UpsertProduct(ctx context.Context, p *ProductRecord) error {
	if p == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	now := time.Now()
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return opError("upsert product", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, upsertProductSQL,
		p.ID, p.Title, p.Handle, p.Thumbnail, createdAt.UnixNano(), now.UnixNano(),
	); err != nil {
		return opError("upsert product", err)
	}

	// Categories and variants are replaced wholesale.
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_categories WHERE product_id = ?`, p.ID); err != nil {
		return opError("upsert product", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM prices WHERE variant_id IN (SELECT id FROM variants WHERE product_id = ?)`, p.ID); err != nil {
		return opError("upsert product", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM variants WHERE product_id = ?`, p.ID); err != nil {
		return opError("upsert product", err)
	}

	for _, categoryID := range p.CategoryIDs {
		if categoryID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, insertCategorySQL, p.ID, categoryID); err != nil {
			return opError("insert category", err)
		}
	}

	for i, v := range p.Variants {
		var inventory sql.NullInt64
		if v.InventoryQuantity != nil {
			inventory = sql.NullInt64{Int64: int64(*v.InventoryQuantity), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, insertVariantSQL,
			v.ID, p.ID, v.Title, v.ManageInventory, v.AllowBackorder, inventory, i,
		); err != nil {
			return opError("insert variant", err)
		}
		for _, pr := range v.Prices {
			if _, err := tx.ExecContext(ctx, insertPriceSQL, v.ID, pr.RegionID, pr.CurrencyCode, pr.Amount); err != nil {
				return opError("insert price", err)
			}
		}
	}

	return opError("upsert product", tx.Commit())
}

// ListByCategory implements remediation.Catalog.
func (s *SQLiteStore) ListByCategory(ctx context.Context, q remediation.Query) ([]remediation.Product, error) {
	if q.CategoryID == "" {
		return nil, errors.New("category id cannot be empty")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.listStmt.QueryContext(ctx, q.CategoryID, limit)
	if err != nil {
		return nil, opError("list products", err)
	}

	var (
		products []remediation.Product
		index    = make(map[string]int)
	)
	for rows.Next() {
		var p remediation.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Handle, &p.Thumbnail); err != nil {
			rows.Close()
			return nil, opError("scan product", err)
		}
		p.Variants = []remediation.Variant{}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, opError("list products", err)
	}
	rows.Close()

	if len(products) == 0 {
		return []remediation.Product{}, nil
	}

	if err := s.loadProductCategories(ctx, products, index); err != nil {
		return nil, err
	}
	if err := s.loadProductVariants(ctx, products, index, q.RegionID, q.CurrencyCode); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *SQLiteStore) loadProductCategories(ctx context.Context, products []remediation.Product, index map[string]int) error {
	placeholders, args := inClause(products)
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, category_id FROM product_categories WHERE product_id IN (`+placeholders+`) ORDER BY product_id, category_id`,
		args...)
	if err != nil {
		return opError("load categories", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID, categoryID string
		if err := rows.Scan(&productID, &categoryID); err != nil {
			return opError("scan category", err)
		}
		i := index[productID]
		products[i].CategoryIDs = append(products[i].CategoryIDs, categoryID)
	}
	return opError("load categories", rows.Err())
}

func (s *SQLiteStore) loadProductVariants(ctx context.Context, products []remediation.Product, index map[string]int, regionID, currencyCode string) error {
	placeholders, args := inClause(products)

	// Region-specific prices sort before the currency default.
	query := `
		SELECT v.id, v.product_id, v.title, v.manage_inventory, v.allow_backorder, v.inventory_quantity,
			pr.amount, pr.currency_code
		FROM variants v
		LEFT JOIN prices pr ON pr.variant_id = v.id AND pr.currency_code = ? AND pr.region_id IN (?, '')
		WHERE v.product_id IN (` + placeholders + `)
		ORDER BY v.product_id, v.position, pr.region_id DESC`
	args = append([]any{currencyCode, regionID}, args...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return opError("load variants", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var (
			v         remediation.Variant
			productID string
			inventory sql.NullInt64
			amount    sql.NullInt64
			currency  sql.NullString
		)
		if err := rows.Scan(&v.ID, &productID, &v.Title,
			&v.Inventory.ManageInventory, &v.Inventory.AllowBackorder, &inventory,
			&amount, &currency,
		); err != nil {
			return opError("scan variant", err)
		}
		if _, dup := seen[v.ID]; dup {
			continue
		}
		seen[v.ID] = struct{}{}

		if inventory.Valid {
			v.Inventory.InventoryQuantity = cart.Int(int(inventory.Int64))
		}
		if amount.Valid {
			v.Price = &remediation.Price{Amount: amount.Int64, CurrencyCode: currency.String}
		}

		i := index[productID]
		products[i].Variants = append(products[i].Variants, v)
	}
	return opError("load variants", rows.Err())
}

func inClause(products []remediation.Product) (string, []any) {
	args := make([]any, len(products))
	for i, p := range products {
		args[i] = p.ID
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(products)), ","), args
}

// SaveCart stores the cart and replaces its lines. Only line identity,
// title and quantity are stored; categories and inventory are resolved from
// the catalog when the snapshot is read.
func (s *SQLiteStore) SaveCart(ctx context.Context, snap *cart.Snapshot) error {
	if snap == nil || snap.ID == "" {
		return errors.New("cart id cannot be empty")
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return opError("save cart", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, upsertCartSQL, snap.ID, snap.RegionID, snap.CurrencyCode, time.Now().UnixNano()); err != nil {
		return opError("save cart", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = ?`, snap.ID); err != nil {
		return opError("save cart", err)
	}
	for i, line := range snap.Lines {
		if _, err := tx.ExecContext(ctx, insertCartLineSQL,
			snap.ID, line.ID, i, line.ProductID, line.VariantID, line.Title, line.Quantity,
		); err != nil {
			return opError("insert cart line", err)
		}
	}

	return opError("save cart", tx.Commit())
}

// DeleteCart removes a cart and its lines.
func (s *SQLiteStore) DeleteCart(ctx context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE id = ?`, cartID)
	if err != nil {
		return opError("delete cart", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", checkout.ErrCartNotFound, cartID)
	}
	return nil
}

// Snapshot implements checkout.CartStore.
func (s *SQLiteStore) Snapshot(ctx context.Context, cartID string) (*cart.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	snap := &cart.Snapshot{ID: cartID, Lines: []cart.Line{}}
	err := s.loadCartStmt.QueryRowContext(ctx, cartID).Scan(&snap.RegionID, &snap.CurrencyCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", checkout.ErrCartNotFound, cartID)
	}
	if err != nil {
		return nil, opError("load cart", err)
	}

	categories, err := s.cartCategories(ctx, cartID)
	if err != nil {
		return nil, err
	}

	rows, err := s.loadLinesStmt.QueryContext(ctx, cartID)
	if err != nil {
		return nil, opError("load cart lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line       cart.Line
			hasVariant bool
			manage     bool
			backorder  bool
			inventory  sql.NullInt64
		)
		if err := rows.Scan(&line.ID, &line.ProductID, &line.VariantID, &line.Title, &line.Quantity,
			&hasVariant, &manage, &backorder, &inventory,
		); err != nil {
			return nil, opError("scan cart line", err)
		}

		line.CategoryIDs = categories[line.ProductID]
		if hasVariant {
			line.Variant = &cart.Variant{ManageInventory: manage, AllowBackorder: backorder}
			if inventory.Valid {
				line.Variant.InventoryQuantity = cart.Int(int(inventory.Int64))
			}
		}
		snap.Lines = append(snap.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, opError("load cart lines", err)
	}

	return snap, nil
}

func (s *SQLiteStore) cartCategories(ctx context.Context, cartID string) (map[string][]string, error) {
	rows, err := s.loadCategoriesStmt.QueryContext(ctx, cartID)
	if err != nil {
		return nil, opError("load cart categories", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var productID, categoryID string
		if err := rows.Scan(&productID, &categoryID); err != nil {
			return nil, opError("scan cart category", err)
		}
		out[productID] = append(out[productID], categoryID)
	}
	return out, opError("load cart categories", rows.Err())
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return s.db.PingContext(ctx)
}

// Close releases the database. It is safe to call more than once.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true

		for _, stmt := range []*sql.Stmt{s.listStmt, s.loadCartStmt, s.loadLinesStmt, s.loadCategoriesStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}

		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		closeErr = s.db.Close()
	})

	return closeErr
}

// checkpointLoop runs periodic WAL checkpoints.
func (s *SQLiteStore) checkpointLoop() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.RLock()
			if !s.closed {
				_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
			}
			s.mu.RUnlock()
		case <-s.done:
			return
		}
	}
}

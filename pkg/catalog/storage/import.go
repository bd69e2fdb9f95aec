package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"checkered/cartgate/pkg/cart"
)

// Record kinds reported to an ImportObserver.
const (
	KindProduct = "product"
	KindCart    = "cart"
)

// CatalogFile is the import file format. JSON files are accepted as well,
// since JSON is valid YAML. Carts are optional fixtures, written after the
// products they reference.
type CatalogFile struct {
	Products []ProductRecord `yaml:"products"`
	Carts    []cart.Snapshot `yaml:"carts,omitempty"`
}

// ImportObserver follows an import record by record. Begin is called once
// per kind before its records.
type ImportObserver interface {
	Begin(kind string, total int)
	Imported(kind, id string)
	Skipped(kind, id, reason string)
}

// ImportResult counts the records an import wrote and skipped.
type ImportResult struct {
	Products int
	Carts    int
	Skipped  int
}

type nopObserver struct{}

func (nopObserver) Begin(string, int)              {}
func (nopObserver) Imported(string, string)        {}
func (nopObserver) Skipped(string, string, string) {}

// ParseCatalog decodes and validates a catalog file.
func ParseCatalog(r io.Reader) (*CatalogFile, error) {
	var f CatalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for i := range f.Products {
		if err := f.Products[i].Validate(); err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
	}
	for i := range f.Carts {
		if f.Carts[i].ID == "" {
			return nil, fmt.Errorf("cart %d: %w: cart id is required", i, ErrInvalidRecord)
		}
		if err := f.Carts[i].Validate(); err != nil {
			return nil, fmt.Errorf("cart %s: %w", f.Carts[i].ID, err)
		}
	}
	return &f, nil
}

// Import writes the products and then the carts of f into store. A record
// whose id repeats an earlier one in the same file is skipped. On error the
// result counts what was written before the failure.
func Import(ctx context.Context, store Store, f *CatalogFile, obs ImportObserver) (ImportResult, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	var res ImportResult

	obs.Begin(KindProduct, len(f.Products))
	seen := make(map[string]struct{}, len(f.Products))
	for i := range f.Products {
		p := &f.Products[i]
		if _, dup := seen[p.ID]; dup {
			res.Skipped++
			obs.Skipped(KindProduct, p.ID, "duplicate id")
			continue
		}
		seen[p.ID] = struct{}{}

		if err := store.UpsertProduct(ctx, p); err != nil {
			return res, fmt.Errorf("product %s: %w", p.ID, err)
		}
		res.Products++
		obs.Imported(KindProduct, p.ID)
	}

	if len(f.Carts) == 0 {
		return res, nil
	}

	obs.Begin(KindCart, len(f.Carts))
	seen = make(map[string]struct{}, len(f.Carts))
	for i := range f.Carts {
		c := &f.Carts[i]
		if _, dup := seen[c.ID]; dup {
			res.Skipped++
			obs.Skipped(KindCart, c.ID, "duplicate id")
			continue
		}
		seen[c.ID] = struct{}{}

		if err := store.SaveCart(ctx, c); err != nil {
			return res, fmt.Errorf("cart %s: %w", c.ID, err)
		}
		res.Carts++
		obs.Imported(KindCart, c.ID)
	}

	return res, nil
}

// ImportFile parses the catalog file at path and imports it. obs may be nil.
func ImportFile(ctx context.Context, store Store, path string, obs ImportObserver) (ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	catalog, err := ParseCatalog(file)
	if err != nil {
		return ImportResult{}, err
	}
	return Import(ctx, store, catalog, obs)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"checkered/cartgate/pkg/cart"
	"checkered/cartgate/pkg/checkout"
	"checkered/cartgate/pkg/remediation"
)

// MemoryStore implements the catalog and cart store in memory.
// It is intended for tests and one-shot CLI checks.
type MemoryStore struct {
	products map[string]*ProductRecord
	carts    map[string]*cart.Snapshot
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]*ProductRecord),
		carts:    make(map[string]*cart.Snapshot),
	}
}

// UpsertProduct inserts or replaces a product, keeping its creation time.
func (s *MemoryStore) UpsertProduct(ctx context.Context, p *ProductRecord) error {
	if p == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := cloneProduct(p)
	if existing, ok := s.products[p.ID]; ok {
		record.CreatedAt = existing.CreatedAt
	} else if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	s.products[p.ID] = record

	return nil
}

// ListByCategory implements remediation.Catalog.
func (s *MemoryStore) ListByCategory(ctx context.Context, q remediation.Query) ([]remediation.Product, error) {
	if q.CategoryID == "" {
		return nil, errors.New("category id cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*ProductRecord
	for _, p := range s.products {
		if slices.Contains(p.CategoryIDs, q.CategoryID) {
			matches = append(matches, p)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})

	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}

	out := make([]remediation.Product, 0, len(matches))
	for _, p := range matches {
		out = append(out, p.product(q.RegionID, q.CurrencyCode))
	}
	return out, nil
}

// SaveCart stores the cart lines.
func (s *MemoryStore) SaveCart(ctx context.Context, snap *cart.Snapshot) error {
	if snap == nil || snap.ID == "" {
		return errors.New("cart id cannot be empty")
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	stored := &cart.Snapshot{
		ID:           snap.ID,
		RegionID:     snap.RegionID,
		CurrencyCode: snap.CurrencyCode,
		Lines:        make([]cart.Line, len(snap.Lines)),
	}
	for i, line := range snap.Lines {
		stored.Lines[i] = cart.Line{
			ID:        line.ID,
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Title:     line.Title,
			Quantity:  line.Quantity,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[snap.ID] = stored

	return nil
}

// DeleteCart removes a cart.
func (s *MemoryStore) DeleteCart(ctx context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[cartID]; !ok {
		return fmt.Errorf("%w: %s", checkout.ErrCartNotFound, cartID)
	}
	delete(s.carts, cartID)
	return nil
}

// Snapshot implements checkout.CartStore.
func (s *MemoryStore) Snapshot(ctx context.Context, cartID string) (*cart.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.carts[cartID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", checkout.ErrCartNotFound, cartID)
	}

	snap := &cart.Snapshot{
		ID:           stored.ID,
		RegionID:     stored.RegionID,
		CurrencyCode: stored.CurrencyCode,
		Lines:        make([]cart.Line, 0, len(stored.Lines)),
	}
	for _, line := range stored.Lines {
		if p, ok := s.products[line.ProductID]; ok {
			if len(p.CategoryIDs) > 0 {
				line.CategoryIDs = slices.Clone(p.CategoryIDs)
			}
			for _, v := range p.Variants {
				if v.ID == line.VariantID {
					inv := v.inventory()
					line.Variant = &inv
					break
				}
			}
		}
		snap.Lines = append(snap.Lines, line)
	}

	return snap, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func cloneProduct(p *ProductRecord) *ProductRecord {
	c := *p
	c.CategoryIDs = slices.DeleteFunc(slices.Clone(p.CategoryIDs), func(id string) bool { return id == "" })
	slices.Sort(c.CategoryIDs)
	c.CategoryIDs = slices.Compact(c.CategoryIDs)
	c.Variants = make([]VariantRecord, len(p.Variants))
	for i, v := range p.Variants {
		c.Variants[i] = v
		if v.InventoryQuantity != nil {
			c.Variants[i].InventoryQuantity = cart.Int(*v.InventoryQuantity)
		}
		c.Variants[i].Prices = slices.Clone(v.Prices)
	}
	return &c
}

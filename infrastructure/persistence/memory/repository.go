package memory

import (
	"context"
	"sync"
	"time"

	"github.com/restaurant-hub/product-bulk/domain/product"
)

// Product is the row shape kept by the in-memory store. Flags are addressed
// by column name so the store honours the same SetFlag contract as SQL
// backends.
type Product struct {
	ID        string
	Name      string
	Flags     map[string]bool
	UpdatedAt time.Time
}

// ProductRepository is a process-local product store used for development
// and tests. Every call locks the whole table, which keeps single-row
// mutations atomic.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*Product
}

func NewProductRepository(seed ...Product) *ProductRepository {
	r := &ProductRepository{products: make(map[string]*Product, len(seed))}
	for _, p := range seed {
		r.Put(p)
	}
	return r
}

func (r *ProductRepository) Put(p Product) {
	r.mu.Lock()
	defer r.mu.Unlock()

	flags := make(map[string]bool, len(p.Flags))
	for k, v := range p.Flags {
		flags[k] = v
	}
	p.Flags = flags
	r.products[p.ID] = &p
}

func (r *ProductRepository) Get(id string) (Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return Product{}, false
	}
	return *p, true
}

func (r *ProductRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return 0, nil
	}
	delete(r.products, id)
	return 1, nil
}

// SetFlag reports 0 affected rows when the flag already holds value.
func (r *ProductRepository) SetFlag(ctx context.Context, id, flag string, value bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := product.ValidateFlagName(flag); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return 0, nil
	}
	if current, set := p.Flags[flag]; set && current == value {
		return 0, nil
	}

	p.Flags[flag] = value
	p.UpdatedAt = time.Now().UTC()
	return 1, nil
}

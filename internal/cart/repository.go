package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/wichananm65/catalog-cart-backend/internal/product"
)

// Repository stores carts. Mutate is the only write path for items: it runs
// fn on a freshly loaded cart while holding that cart exclusively and
// persists the result only when fn returns nil.
type Repository interface {
	Create(ctx context.Context) (*Cart, error)
	FindByID(ctx context.Context, id int) (*Cart, error)
	Mutate(ctx context.Context, id int, fn func(*Cart) error) (*Cart, error)
}

type line struct {
	id        int
	productID int
	quantity  int
}

type cartRecord struct {
	mu    sync.Mutex
	lines []line
}

// InMemoryRepository keeps carts in process. Products are resolved on every
// load, so lines whose product was deleted disappear from the cart.
type InMemoryRepository struct {
	mu         sync.RWMutex
	carts      map[int]*cartRecord
	nextCartID int
	nextItemID int
	products   ProductFinder
}

func NewInMemoryRepository(products ProductFinder) *InMemoryRepository {
	return &InMemoryRepository{
		carts:      make(map[int]*cartRecord),
		nextCartID: 1,
		nextItemID: 1,
		products:   products,
	}
}

func (r *InMemoryRepository) Create(_ context.Context) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextCartID
	r.nextCartID++
	r.carts[id] = &cartRecord{}
	return Restore(id, nil), nil
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id int) (*Cart, error) {
	rec, err := r.record(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	lines := append([]line(nil), rec.lines...)
	rec.mu.Unlock()
	return r.build(ctx, id, lines)
}

func (r *InMemoryRepository) Mutate(ctx context.Context, id int, fn func(*Cart) error) (*Cart, error) {
	rec, err := r.record(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	c, err := r.build(ctx, id, rec.lines)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}

	items := c.Items()
	lines := make([]line, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			return nil, ErrMissingProduct
		}
		if item.ID == 0 {
			item.ID = r.allocateItemID()
		}
		lines = append(lines, line{id: item.ID, productID: item.Product.ID, quantity: item.Quantity})
	}
	rec.lines = lines
	return c, nil
}

func (r *InMemoryRepository) record(id int) (*cartRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.carts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (r *InMemoryRepository) allocateItemID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextItemID
	r.nextItemID++
	return id
}

func (r *InMemoryRepository) build(ctx context.Context, id int, lines []line) (*Cart, error) {
	items := make([]*CartItem, 0, len(lines))
	for _, l := range lines {
		p, err := r.products.FindByID(ctx, l.productID)
		if errors.Is(err, product.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, &CartItem{ID: l.id, Product: &p, Quantity: l.quantity})
	}
	return Restore(id, items), nil
}

package product

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound   = errors.New("product not found")
	ErrTitleTaken = errors.New("product with this title already exists")
)

// Repository is the storage contract of the catalog. Create, Update and Delete
// are the commit operations; they make the change durable before returning.
type Repository interface {
	FindByID(ctx context.Context, id int) (Product, error)
	FindOneByTitle(ctx context.Context, title string) (Product, error)
	Count(ctx context.Context) (int, error)
	// List returns at most limit products ordered by id, skipping offset rows.
	List(ctx context.Context, limit, offset int) ([]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id int) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// running without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
	nextID  int
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Product, 0, len(seed)),
		nextID:  1,
	}

	maxID := 0
	for _, p := range seed {
		r.storage = append(r.storage, p)
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	sort.Slice(r.storage, func(i, j int) bool { return r.storage[i].ID < r.storage[j].ID })
	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) FindByID(_ context.Context, id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) FindOneByTitle(_ context.Context, title string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.Title == title {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.storage), nil
}

// List relies on storage being kept in ascending id order; ids only grow.
func (r *InMemoryRepository) List(_ context.Context, limit, offset int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	out := make([]Product, 0, limit)
	for i := offset; i < len(r.storage) && len(out) < limit; i++ {
		out = append(out, r.storage[i])
	}
	return out, nil
}

func (r *InMemoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.titleTakenLocked(p.Title, 0) {
		return Product{}, ErrTitleTaken
	}
	p.ID = r.nextID
	r.nextID++
	r.storage = append(r.storage, p)
	return p, nil
}

func (r *InMemoryRepository) Update(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.titleTakenLocked(p.Title, p.ID) {
		return Product{}, ErrTitleTaken
	}
	for i := range r.storage {
		if r.storage[i].ID == p.ID {
			r.storage[i] = p
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// mirrors the UNIQUE constraint on products.title
func (r *InMemoryRepository) titleTakenLocked(title string, exceptID int) bool {
	for _, p := range r.storage {
		if p.Title == title && p.ID != exceptID {
			return true
		}
	}
	return false
}

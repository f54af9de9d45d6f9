package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/wichananm65/catalog-cart-backend/internal/product"
	"golang.org/x/sync/errgroup"
)

func newTestService(t *testing.T, seed []product.Product) (*Service, *product.InMemoryRepository) {
	t.Helper()
	log, _ := test.NewNullLogger()
	products := product.NewInMemoryRepository(seed)
	carts := NewInMemoryRepository(products)
	return NewService(carts, NewItemFactory(carts, products), log), products
}

func TestService_AddProductScenario(t *testing.T) {
	s, _ := newTestService(t, []product.Product{{ID: 1, Title: "Fallout", Price: 199}})
	ctx := context.Background()

	c, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	c, err = s.AddProduct(ctx, c.ID, 1, 1)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if len(c.Items()) != 1 || cartTotal(t, c) != 199 {
		t.Fatalf("expected one line totalling 199, got %d lines, total %d", len(c.Items()), cartTotal(t, c))
	}

	c, err = s.AddProduct(ctx, c.ID, 1, 1)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(c.Items()) != 1 || c.Items()[0].Quantity != 2 || cartTotal(t, c) != 398 {
		t.Fatalf("expected one line of 2 totalling 398, got %+v total %d", c.Items(), cartTotal(t, c))
	}

	if _, err := s.AddProduct(ctx, c.ID, 1, 9); !errors.Is(err, ErrQuantityLimitExceeded) {
		t.Fatalf("expected ErrQuantityLimitExceeded, got %v", err)
	}
	stored, err := s.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Items()[0].Quantity != 2 || cartTotal(t, stored) != 398 {
		t.Fatalf("rejected add must not change the stored cart, got %+v", stored.Items()[0])
	}
}

func TestService_AddProductRejectsOverflowingTotal(t *testing.T) {
	s, _ := newTestService(t, []product.Product{
		{ID: 1, Title: "Gold", Price: product.MaxPrice},
		{ID: 2, Title: "Platinum", Price: product.MaxPrice},
	})
	ctx := context.Background()
	c, _ := s.Create(ctx)

	if _, err := s.AddProduct(ctx, c.ID, 1, MaxQuantity); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := s.AddProduct(ctx, c.ID, 2, MaxQuantity); !errors.Is(err, ErrTotalOverflow) {
		t.Fatalf("expected ErrTotalOverflow, got %v", err)
	}
	stored, err := s.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Items()) != 1 || cartTotal(t, stored) != product.MaxPrice*MaxQuantity {
		t.Fatalf("rejected add must not be stored, got %+v", stored.Items())
	}
}

func TestService_AddProductUnknownIDs(t *testing.T) {
	s, _ := newTestService(t, []product.Product{{ID: 1, Title: "Fallout", Price: 199}})
	ctx := context.Background()
	c, _ := s.Create(ctx)

	if _, err := s.AddProduct(ctx, 404, 1, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cart ErrNotFound, got %v", err)
	}
	if _, err := s.AddProduct(ctx, c.ID, 404, 1); !errors.Is(err, product.ErrNotFound) {
		t.Fatalf("expected product ErrNotFound, got %v", err)
	}
	stored, _ := s.Get(ctx, c.ID)
	if len(stored.Items()) != 0 {
		t.Fatalf("failed adds must leave the cart empty")
	}
}

func TestService_DeletedProductDropsLine(t *testing.T) {
	s, products := newTestService(t, []product.Product{
		{ID: 1, Title: "Fallout", Price: 199},
		{ID: 2, Title: "Bruce Lee", Price: 599},
	})
	ctx := context.Background()
	c, _ := s.Create(ctx)
	if _, err := s.AddProduct(ctx, c.ID, 1, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.AddProduct(ctx, c.ID, 2, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := products.Delete(ctx, 1); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	stored, _ := s.Get(ctx, c.ID)
	if len(stored.Items()) != 1 || cartTotal(t, stored) != 599 {
		t.Fatalf("expected only Bruce Lee left, got %+v", stored.Items())
	}
}

func TestService_ConcurrentAddsAreNotLost(t *testing.T) {
	seed := make([]product.Product, 0, 5)
	for i := 1; i <= 5; i++ {
		seed = append(seed, product.Product{ID: i, Title: string(rune('a'+i)) + "-title", Price: i * 100})
	}
	s, _ := newTestService(t, seed)
	ctx := context.Background()
	c, _ := s.Create(ctx)

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		productID := i%5 + 1
		g.Go(func() error {
			_, err := s.AddProduct(ctx, c.ID, productID, 1)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent add: %v", err)
	}

	stored, err := s.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	items := stored.Items()
	if len(items) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(items))
	}
	for _, item := range items {
		if item.Quantity != MaxQuantity {
			t.Fatalf("product %d: expected quantity %d, got %d", item.Product.ID, MaxQuantity, item.Quantity)
		}
	}
	if cartTotal(t, stored) != 10*(100+200+300+400+500) {
		t.Fatalf("unexpected total %d", cartTotal(t, stored))
	}
}

func TestService_ConcurrentAddsRespectLimit(t *testing.T) {
	s, _ := newTestService(t, []product.Product{{ID: 1, Title: "Fallout", Price: 199}})
	ctx := context.Background()
	c, _ := s.Create(ctx)

	var g errgroup.Group
	results := make([]error, 15)
	for i := range results {
		i := i
		g.Go(func() error {
			_, results[i] = s.AddProduct(ctx, c.ID, 1, 1)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range results {
		if err != nil {
			if !errors.Is(err, ErrQuantityLimitExceeded) {
				t.Fatalf("unexpected error %v", err)
			}
			failed++
		}
	}
	if failed != 5 {
		t.Fatalf("expected 5 rejected adds, got %d", failed)
	}
	stored, _ := s.Get(ctx, c.ID)
	if stored.Items()[0].Quantity != MaxQuantity {
		t.Fatalf("expected line capped at %d, got %d", MaxQuantity, stored.Items()[0].Quantity)
	}
}

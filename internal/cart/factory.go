package cart

import (
	"context"

	"github.com/wichananm65/catalog-cart-backend/internal/product"
)

type CartFinder interface {
	FindByID(ctx context.Context, id int) (*Cart, error)
}

type ProductFinder interface {
	FindByID(ctx context.Context, id int) (product.Product, error)
}

// ItemFactory builds cart items from ids. Lookup failures are returned
// unchanged: ErrNotFound for the cart, product.ErrNotFound for the product.
type ItemFactory struct {
	carts    CartFinder
	products ProductFinder
}

func NewItemFactory(carts CartFinder, products ProductFinder) *ItemFactory {
	return &ItemFactory{carts: carts, products: products}
}

func (f *ItemFactory) CreateItem(ctx context.Context, cartID, productID, quantity int) (*CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	c, err := f.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	p, err := f.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return NewItem(c.ID, &p, quantity), nil
}

func (f *ItemFactory) CreateDetachedItem(ctx context.Context, productID, quantity int) (*CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	p, err := f.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return NewDetachedItem(&p, quantity), nil
}

func validateQuantity(quantity int) error {
	if quantity < 1 || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

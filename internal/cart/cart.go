package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/wichananm65/catalog-cart-backend/internal/product"
)

// MaxQuantity is the upper bound of a single cart line.
const MaxQuantity = 10

var (
	ErrNotFound              = errors.New("cart not found")
	ErrMissingProduct        = errors.New("cart item has no product")
	ErrQuantityLimitExceeded = errors.New("cart item quantity limit exceeded")
	ErrInvalidQuantity       = errors.New("cart item quantity must be between 1 and 10")
	ErrTotalOverflow         = errors.New("cart total overflows")
)

// QuantityLimitError reports a rejected increase of a line.
type QuantityLimitError struct {
	Current int
	Delta   int
}

func (e *QuantityLimitError) Error() string {
	return fmt.Sprintf("quantity %d + %d exceeds the limit of %d", e.Current, e.Delta, MaxQuantity)
}

func (e *QuantityLimitError) Unwrap() error { return ErrQuantityLimitExceeded }

// CartItem is one line of a cart. CartID points back at the owning cart and
// is nil while the item is detached.
type CartItem struct {
	ID       int
	CartID   *int
	Product  *product.Product
	Quantity int
}

// NewItem returns an item already attached to cartID.
func NewItem(cartID int, p *product.Product, quantity int) *CartItem {
	item := NewDetachedItem(p, quantity)
	item.attach(cartID)
	return item
}

func NewDetachedItem(p *product.Product, quantity int) *CartItem {
	return &CartItem{Product: p, Quantity: quantity}
}

func (i *CartItem) attach(cartID int) {
	id := cartID
	i.CartID = &id
}

func (i *CartItem) detach() { i.CartID = nil }

// IncreaseQuantity adds delta to the line or leaves it untouched on error.
func (i *CartItem) IncreaseQuantity(delta int) error {
	if delta < 1 {
		return ErrInvalidQuantity
	}
	if delta > MaxQuantity-i.Quantity {
		return &QuantityLimitError{Current: i.Quantity, Delta: delta}
	}
	i.Quantity += delta
	return nil
}

func (i *CartItem) Total() (int, error) {
	if i.Product == nil {
		return 0, ErrMissingProduct
	}
	return mulTotal(i.Product.Price, i.Quantity)
}

func mulTotal(price, quantity int) (int, error) {
	if quantity > 0 && price > math.MaxInt/quantity {
		return 0, fmt.Errorf("%w: %d x %d", ErrTotalOverflow, price, quantity)
	}
	return price * quantity, nil
}

// sameProduct compares by identity, falling back to the stored id.
func (i *CartItem) sameProduct(p *product.Product) bool {
	if i.Product == nil || p == nil {
		return false
	}
	if i.Product == p {
		return true
	}
	return p.ID != 0 && i.Product.ID == p.ID
}

type itemJSON struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Total    int    `json:"total"`
}

func (i *CartItem) MarshalJSON() ([]byte, error) {
	total, err := i.Total()
	if err != nil {
		return nil, err
	}
	return json.Marshal(itemJSON{
		ID:       i.ID,
		Title:    i.Product.Title,
		Price:    i.Product.Price,
		Quantity: i.Quantity,
		Total:    total,
	})
}

// Cart is not safe for concurrent use; repositories serialize access to it.
type Cart struct {
	ID    int
	items []*CartItem
}

func New() *Cart {
	return &Cart{items: []*CartItem{}}
}

// Restore rebuilds a stored cart. Items keep their order and get attached.
func Restore(id int, items []*CartItem) *Cart {
	c := &Cart{ID: id, items: make([]*CartItem, 0, len(items))}
	for _, item := range items {
		item.attach(id)
		c.items = append(c.items, item)
	}
	return c
}

// Items returns the lines in insertion order.
func (c *Cart) Items() []*CartItem {
	out := make([]*CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// AddOrMerge puts item into the cart. An item whose product already has a
// line is folded into that line and left detached.
func (c *Cart) AddOrMerge(item *CartItem) error {
	if item == nil || item.Product == nil {
		return ErrMissingProduct
	}
	if c.contains(item) {
		item.attach(c.ID)
		return nil
	}

	for _, line := range c.items {
		if line.sameProduct(item.Product) {
			if err := line.IncreaseQuantity(item.Quantity); err != nil {
				return err
			}
			item.detach()
			return nil
		}
	}

	c.items = append(c.items, item)
	item.attach(c.ID)
	return nil
}

func (c *Cart) contains(item *CartItem) bool {
	for _, line := range c.items {
		if line == item || (item.ID != 0 && line.ID == item.ID && line.sameProduct(item.Product)) {
			return true
		}
	}
	return false
}

// Total sums the line totals. A line without a product or a sum past
// math.MaxInt fails the whole total.
func (c *Cart) Total() (int, error) {
	total := 0
	for _, line := range c.items {
		t, err := line.Total()
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line.ID, err)
		}
		if t > math.MaxInt-total {
			return 0, ErrTotalOverflow
		}
		total += t
	}
	return total, nil
}

type cartJSON struct {
	ID    int         `json:"id"`
	Items []*CartItem `json:"items"`
	Total int         `json:"total"`
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	total, err := c.Total()
	if err != nil {
		return nil, err
	}
	return json.Marshal(cartJSON{ID: c.ID, Items: c.Items(), Total: total})
}

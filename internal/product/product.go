package product

import "github.com/wichananm65/catalog-cart-backend/internal/pagination"

// MaxPrice is math.MaxInt64 / 10, so a full cart line of one product still
// fits in an int64. Keep in sync with the price rule in productRequest and
// the products table CHECK.
const MaxPrice = 922337203685477580

// Product is a catalog entry and maps to the `products` table.
// ID stays 0 until a repository assigns it.
type Product struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Price int    `json:"price"`
}

// New creates an unsaved product.
func New(title string, price int) Product {
	p := Product{}
	p.SetTitle(title)
	p.SetPrice(price)
	return p
}

// SetTitle and SetPrice are only used by the update flow.
func (p *Product) SetTitle(title string) { p.Title = title }

func (p *Product) SetPrice(price int) { p.Price = price }

// Page is the listing envelope returned by `GET /api/products`.
type Page struct {
	Data []Product `json:"data"`
	Meta Meta      `json:"meta"`
}

type Meta struct {
	Pagination pagination.Pagination `json:"pagination"`
}

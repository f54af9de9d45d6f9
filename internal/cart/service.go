package cart

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Service orchestrates cart operations.
type Service struct {
	repo  Repository
	items *ItemFactory
	log   logrus.FieldLogger
}

func NewService(repo Repository, items *ItemFactory, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, items: items, log: log}
}

func (s *Service) Create(ctx context.Context) (*Cart, error) {
	return s.repo.Create(ctx)
}

func (s *Service) Get(ctx context.Context, id int) (*Cart, error) {
	return s.repo.FindByID(ctx, id)
}

// AddProduct merges quantity units of a product into the cart. Nothing is
// stored when the cart or product is unknown, the line would exceed
// MaxQuantity or the cart total would overflow.
func (s *Service) AddProduct(ctx context.Context, cartID, productID, quantity int) (*Cart, error) {
	c, err := s.repo.Mutate(ctx, cartID, func(c *Cart) error {
		item, err := s.items.CreateDetachedItem(ctx, productID, quantity)
		if err != nil {
			return err
		}
		if err := c.AddOrMerge(item); err != nil {
			return err
		}
		_, err = c.Total()
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   quantity,
	}).Debug("product added to cart")
	return c, nil
}

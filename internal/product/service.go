package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wichananm65/catalog-cart-backend/internal/pagination"
)

const DefaultPerPage = 3

type Service struct {
	repo    Repository
	perPage int
	log     logrus.FieldLogger
}

func NewService(repo Repository, perPage int, log logrus.FieldLogger) *Service {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return &Service{repo: repo, perPage: perPage, log: log}
}

// List returns one page of the catalog. Out-of-range pages are clamped.
func (s *Service) List(ctx context.Context, page int) (Page, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return Page{}, err
	}
	p := pagination.New(total, s.perPage, page)

	var items []Product
	if total > 0 {
		items, err = s.repo.List(ctx, p.Limit(), p.Offset())
		if err != nil {
			return Page{}, err
		}
	}
	if items == nil {
		items = []Product{}
	}
	return Page{Data: items, Meta: Meta{Pagination: p}}, nil
}

func (s *Service) Get(ctx context.Context, id int) (Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, title string, price int) (Product, error) {
	if err := s.ensureTitleFree(ctx, title, 0); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, New(title, price))
}

func (s *Service) Update(ctx context.Context, id int, title string, price int) (Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := s.ensureTitleFree(ctx, title, id); err != nil {
		return Product{}, err
	}
	p.SetTitle(title)
	p.SetPrice(price)
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("product_id", id).Debug("product removed from catalog")
	return nil
}

// ensureTitleFree lets a product keep its own title on update.
func (s *Service) ensureTitleFree(ctx context.Context, title string, selfID int) error {
	existing, err := s.repo.FindOneByTitle(ctx, title)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check title: %w", err)
	case existing.ID == selfID:
		return nil
	default:
		return ErrTitleTaken
	}
}

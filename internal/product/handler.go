package product

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/catalog-cart-backend/internal/response"
	"github.com/wichananm65/catalog-cart-backend/internal/validation"
)

const (
	msgNotFound   = "Product not found."
	msgTitleTaken = "Product with this title already exists."
)

type Handler struct {
	service   *Service
	validator *validation.Validator
	log       logrus.FieldLogger
}

func NewHandler(service *Service, v *validation.Validator, log logrus.FieldLogger) *Handler {
	return &Handler{service: service, validator: v, log: log}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Get("/api/products", h.listProducts)
	r.Post("/api/products", h.createProduct)
	r.Get("/api/products/:id", h.getProduct)
	r.Put("/api/products/:id", h.updateProduct)
	r.Delete("/api/products/:id", h.deleteProduct)
}

// productRequest is the body of create and update.
type productRequest struct {
	Title string `json:"title" validate:"required,min=2,max=255"`
	Price int    `json:"price" validate:"gte=0,lte=922337203685477580"`
}

func (h *Handler) parseProductRequest(c *fiber.Ctx) (productRequest, validation.Errors, error) {
	fields, err := validation.ParseFields(c.Body())
	if err != nil {
		return productRequest{}, nil, err
	}

	errs := validation.Errors{}
	req := productRequest{}
	req.Title, _ = fields.String("title", errs)
	req.Price, _ = fields.Int("price", errs)
	if err := h.validator.Struct(req, errs); err != nil {
		return productRequest{}, nil, err
	}
	return req, errs, nil
}

func (h *Handler) listProducts(c *fiber.Ctx) error {
	page, err := h.service.List(c.UserContext(), c.QueryInt("page", 1))
	if err != nil {
		return err
	}
	return response.JSON(c, fiber.StatusOK, page)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.NotFound(c, msgNotFound)
	}

	p, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return response.JSON(c, fiber.StatusOK, p)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	req, errs, err := h.parseProductRequest(c)
	if err != nil {
		return h.writeError(c, err)
	}
	if !errs.Empty() {
		return response.ValidationFailed(c, errs)
	}

	created, err := h.service.Create(c.UserContext(), req.Title, req.Price)
	if err != nil {
		return h.writeError(c, err)
	}
	return response.JSON(c, fiber.StatusCreated, created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.NotFound(c, msgNotFound)
	}
	// unknown ids are reported before the body is looked at
	if _, err := h.service.Get(c.UserContext(), id); err != nil {
		return h.writeError(c, err)
	}

	req, errs, err := h.parseProductRequest(c)
	if err != nil {
		return h.writeError(c, err)
	}
	if !errs.Empty() {
		return response.ValidationFailed(c, errs)
	}

	updated, err := h.service.Update(c.UserContext(), id, req.Title, req.Price)
	if err != nil {
		return h.writeError(c, err)
	}
	return response.JSON(c, fiber.StatusOK, updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.NotFound(c, msgNotFound)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.writeError(c, err)
	}
	return response.NoContent(c)
}

func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return response.NotFound(c, msgNotFound)
	case errors.Is(err, ErrTitleTaken):
		return response.Message(c, fiber.StatusUnprocessableEntity, msgTitleTaken)
	case errors.Is(err, validation.ErrMalformedBody):
		h.log.WithError(err).Debug("rejecting product request body")
		return response.Message(c, fiber.StatusBadRequest, "Malformed JSON body.")
	default:
		return err
	}
}

package cart

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/catalog-cart-backend/internal/product"
	"github.com/wichananm65/catalog-cart-backend/internal/response"
	"github.com/wichananm65/catalog-cart-backend/internal/validation"
)

const (
	msgCartNotFound    = "Cart not found."
	msgProductNotFound = "Product not found."
)

// Handler exposes carts over HTTP.
type Handler struct {
	service   *Service
	validator *validation.Validator
	log       logrus.FieldLogger
}

func NewHandler(s *Service, v *validation.Validator, log logrus.FieldLogger) *Handler {
	return &Handler{service: s, validator: v, log: log}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Post("/api/carts", h.createCart)
	r.Get("/api/carts/:id", h.getCart)
	r.Post("/api/carts/:cartId/items", h.addItem)
}

type addItemRequest struct {
	ProductID int `json:"productId" validate:"gte=1"`
	Quantity  int `json:"quantity" validate:"gte=1,lte=10"`
}

func (h *Handler) createCart(c *fiber.Ctx) error {
	created, err := h.service.Create(c.UserContext())
	if err != nil {
		return err
	}
	return response.JSON(c, fiber.StatusCreated, created)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.NotFound(c, msgCartNotFound)
	}
	found, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return response.JSON(c, fiber.StatusOK, found)
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	cartID, err := c.ParamsInt("cartId")
	if err != nil {
		return response.NotFound(c, msgCartNotFound)
	}

	fields, err := validation.ParseFields(c.Body())
	if err != nil {
		return h.writeError(c, err)
	}
	errs := validation.Errors{}
	req := addItemRequest{}
	req.ProductID, _ = fields.Int("productId", errs)
	req.Quantity, _ = fields.Int("quantity", errs)
	if err := h.validator.Struct(req, errs); err != nil {
		return err
	}
	if !errs.Empty() {
		return response.ValidationFailed(c, errs)
	}

	updated, err := h.service.AddProduct(c.UserContext(), cartID, req.ProductID, req.Quantity)
	if err != nil {
		return h.writeError(c, err)
	}
	return response.JSON(c, fiber.StatusCreated, updated)
}

func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	var limitErr *QuantityLimitError
	switch {
	case errors.Is(err, ErrNotFound):
		return response.NotFound(c, msgCartNotFound)
	case errors.Is(err, product.ErrNotFound):
		return response.NotFound(c, msgProductNotFound)
	case errors.As(err, &limitErr):
		h.log.WithFields(logrus.Fields{
			"current": limitErr.Current,
			"delta":   limitErr.Delta,
		}).Info("cart line limit reached")
		return response.ValidationFailed(c, validation.Errors{
			"quantity": {fmt.Sprintf("Cart item quantity cannot exceed %d (currently %d).", MaxQuantity, limitErr.Current)},
		})
	case errors.Is(err, ErrInvalidQuantity):
		return response.ValidationFailed(c, validation.Errors{
			"quantity": {fmt.Sprintf("This value should be between 1 and %d.", MaxQuantity)},
		})
	case errors.Is(err, ErrTotalOverflow):
		return response.ValidationFailed(c, validation.Errors{
			"quantity": {"Cart total is too large."},
		})
	case errors.Is(err, validation.ErrMalformedBody):
		return response.Message(c, fiber.StatusBadRequest, "Malformed JSON body.")
	default:
		return err
	}
}

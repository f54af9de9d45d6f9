package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/catalog-cart-backend/internal/cart"
	"github.com/wichananm65/catalog-cart-backend/internal/config"
	"github.com/wichananm65/catalog-cart-backend/internal/middleware"
	"github.com/wichananm65/catalog-cart-backend/internal/product"
	"github.com/wichananm65/catalog-cart-backend/internal/response"
	"github.com/wichananm65/catalog-cart-backend/internal/validation"
)

// Services bundles what the HTTP layer needs from the domain packages.
type Services struct {
	Products *product.Service
	Carts    *cart.Service
}

func New(cfg config.Config, log *logrus.Logger, svc Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "catalog-cart-backend",
		ErrorHandler:          response.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	setupCORS(app, cfg.CORSAllowOrigins)
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(log))
	// inside the logger so panics are logged as 500s
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return response.JSON(c, fiber.StatusOK, fiber.Map{"status": "ok"})
	})

	v := validation.New()
	product.NewHandler(svc.Products, v, log).RegisterRoutes(app)
	cart.NewHandler(svc.Carts, v, log).RegisterRoutes(app)

	return app
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders:  "Origin, Content-Type, Accept, " + middleware.HeaderRequestID,
		ExposeHeaders: middleware.HeaderRequestID,
	}))
}

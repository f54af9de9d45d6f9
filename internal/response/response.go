package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type messageBody struct {
	Message string `json:"message"`
}

type validationBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v, fiber.MIMEApplicationJSONCharsetUTF8)
}

func Message(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, messageBody{Message: message})
}

func NotFound(c *fiber.Ctx, message string) error {
	return Message(c, fiber.StatusNotFound, message)
}

func ValidationFailed(c *fiber.Ctx, errs map[string][]string) error {
	return JSON(c, fiber.StatusUnprocessableEntity, validationBody{
		Message: "Validation Failed",
		Errors:  errs,
	})
}

func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// ErrorHandler renders errors that escape a handler as a JSON message.
// Anything that is not a *fiber.Error is logged and hidden behind a 500.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return Message(c, fe.Code, fe.Message)
		}
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("unhandled request error")
		return Message(c, fiber.StatusInternalServerError, "Internal Server Error")
	}
}

package presenters

import (
	"github.com/gofiber/fiber/v2"
)

// SuccessResponse writes the uniform success envelope every endpoint shares.
func SuccessResponse(c *fiber.Ctx, data any, code int, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// ErrorResponse writes the uniform failure envelope. Clients must check
// "success" before touching "data".
func ErrorResponse(c *fiber.Ctx, code int, message string, err error) error {
	body := fiber.Map{
		"success": false,
		"message": message,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(code).JSON(body)
}

package presenter

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// AckResponse is the generic success acknowledgement body.
type AckResponse struct {
	OK bool `json:"ok"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

// Ack replies 200 {"ok":true}.
func Ack(c *fiber.Ctx) error {
	return JSON(c, http.StatusOK, AckResponse{OK: true})
}

package session

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cryptic-app/accounts/pkg/auth"
)

const localsKey = "session"

// New returns a Fiber middleware that resolves the "Token" header to a
// valid, non-expired session. On success the session is stored in
// c.Locals under "session".
func New(useCase auth.AuthUseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("Token")
		sess, err := useCase.Authenticate(c.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				// Auth failures are plain 400s here, like every other
				// user-visible failure on this surface.
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "unauthenticated"})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": "failed to resolve session"})
		}
		c.Locals(localsKey, sess)
		return c.Next()
	}
}

// FromContext fetches the session stored by the middleware.
func FromContext(c *fiber.Ctx) (auth.Session, bool) {
	sess, ok := c.Locals(localsKey).(auth.Session)
	return sess, ok
}

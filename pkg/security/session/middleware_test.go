package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptic-app/accounts/pkg/auth"
)

type stubAuthenticator struct {
	session auth.Session
	err     error

	gotToken string
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (auth.Session, error) {
	s.gotToken = token
	if s.err != nil {
		return auth.Session{}, s.err
	}
	return s.session, nil
}

func (s *stubAuthenticator) Login(ctx context.Context, username, password string) (auth.Session, error) {
	return auth.Session{}, nil
}

func (s *stubAuthenticator) Logout(ctx context.Context, token string) error { return nil }

func (s *stubAuthenticator) Register(ctx context.Context, username, email, password string) error {
	return nil
}

func TestMiddleware_SetsSession(t *testing.T) {
	now := time.Now().UTC()
	want := auth.Session{Token: "tok-1", UserID: uuid.New(), CreatedAt: now, ExpiresAt: now.Add(time.Hour), Valid: true}
	stub := &stubAuthenticator{session: want}

	app := fiber.New()
	app.Get("/protected", New(stub), func(c *fiber.Ctx) error {
		got, ok := FromContext(c)
		require.True(t, ok)
		assert.Equal(t, want, got)
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Token", "tok-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "tok-1", stub.gotToken)
}

func TestMiddleware_RejectsUnauthenticated(t *testing.T) {
	stub := &stubAuthenticator{err: auth.ErrUnauthenticated}

	app := fiber.New()
	app.Get("/protected", New(stub), func(c *fiber.Ctx) error {
		t.Fatal("handler must not run")
		return nil
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	// Auth failures surface as 400, matching the rest of the error surface.
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMiddleware_InternalError(t *testing.T) {
	stub := &stubAuthenticator{err: assert.AnError}

	app := fiber.New()
	app.Get("/protected", New(stub), func(c *fiber.Ctx) error {
		t.Fatal("handler must not run")
		return nil
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

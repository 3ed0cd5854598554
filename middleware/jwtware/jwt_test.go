package jwtware_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-quiz/middleware/jwtware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClaims struct {
	subject string
	userID  int64
	role    string
	name    string
}

func (c stubClaims) Subject() string { return c.subject }
func (c stubClaims) UserID() int64   { return c.userID }
func (c stubClaims) Role() string    { return c.role }
func (c stubClaims) Name() string    { return c.name }

func (c stubClaims) HasRole(role string) bool { return c.role == role }

func (c stubClaims) IsAtLeast(minRole string) bool {
	hierarchy := map[string]int{"Student": 0, "Admin": 1}
	mine, ok := hierarchy[c.role]
	if !ok {
		return false
	}
	min, ok := hierarchy[minRole]
	if !ok {
		return false
	}
	return mine >= min
}

// stubValidator accepts exactly one token string.
type stubValidator struct {
	token  string
	claims jwtware.AuthClaims
}

func (v stubValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	if tokenString != v.token {
		return nil, errors.New("token is malformed")
	}
	return v.claims, nil
}

func newTestApp(cfg jwtware.Config) *fiber.App {
	app := fiber.New()
	app.Get("/protected", jwtware.New(cfg), func(c *fiber.Ctx) error {
		claims, ok := c.Locals("user").(jwtware.AuthClaims)
		if !ok {
			return c.Status(fiber.StatusInternalServerError).SendString("missing claims")
		}
		return c.SendString(claims.Role())
	})
	return app
}

func request(t *testing.T, app *fiber.App, authorization string) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	res, err := app.Test(req, -1)
	require.NoError(t, err)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	res.Body.Close()

	return res, string(body)
}

func TestMiddleware(t *testing.T) {
	validator := stubValidator{
		token:  "valid-token",
		claims: stubClaims{subject: "1", userID: 1, role: "Student", name: "Stu"},
	}

	t.Run("valid bearer token passes and stashes claims", func(t *testing.T) {
		app := newTestApp(jwtware.Config{TokenValidator: validator})

		res, body := request(t, app, "Bearer valid-token")
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "Student", body)
	})

	t.Run("missing header answers 401", func(t *testing.T) {
		app := newTestApp(jwtware.Config{TokenValidator: validator})

		res, _ := request(t, app, "")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("wrong scheme answers 401", func(t *testing.T) {
		app := newTestApp(jwtware.Config{TokenValidator: validator})

		res, _ := request(t, app, "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("rejected token answers 401", func(t *testing.T) {
		app := newTestApp(jwtware.Config{TokenValidator: validator})

		res, _ := request(t, app, "Bearer other-token")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("minimum role below requirement answers 403", func(t *testing.T) {
		app := newTestApp(jwtware.Config{
			TokenValidator: validator,
			MinimumRole:    "Admin",
		})

		res, _ := request(t, app, "Bearer valid-token")
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})

	t.Run("exact role requirement", func(t *testing.T) {
		app := newTestApp(jwtware.Config{
			TokenValidator: validator,
			RequiredRole:   "Student",
		})

		res, _ := request(t, app, "Bearer valid-token")
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("filter skips authentication", func(t *testing.T) {
		app := fiber.New()
		app.Get("/protected", jwtware.New(jwtware.Config{
			TokenValidator: validator,
			Filter:         func(c *fiber.Ctx) bool { return true },
		}), func(c *fiber.Ctx) error {
			return c.SendString("open")
		})

		res, body := request(t, app, "")
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "open", body)
	})

	t.Run("validation listener error rejects the request", func(t *testing.T) {
		app := newTestApp(jwtware.Config{
			TokenValidator: validator,
			ValidationListeners: []jwtware.ValidationListener{
				func(c *fiber.Ctx, claims jwtware.AuthClaims) error {
					return errors.New("listener rejected")
				},
			},
		})

		res, _ := request(t, app, "Bearer valid-token")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}

func TestGetExtractors(t *testing.T) {
	extractors := jwtware.GetExtractors("header:Authorization,query:auth_token,cookie:jwt")
	assert.Len(t, extractors, 3)
}

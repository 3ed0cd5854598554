package quiz

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-quiz/middleware/jwtware"
)

// Policy describes the access requirement of a route. The zero value only
// requires a valid token.
type Policy struct {
	requiredRole string
	minimumRole  string
}

// Authenticated requires a valid session token with no role constraint
func Authenticated() Policy {
	return Policy{}
}

// RequireRole requires the exact role to be present in the claims
func RequireRole(role UserRole) Policy {
	return Policy{requiredRole: string(role)}
}

// AtLeast requires the claims' role to sit at or above role in the hierarchy
func AtLeast(role UserRole) Policy {
	return Policy{minimumRole: string(role)}
}

// APIResponse is the envelope every endpoint answers with. Payload carrying
// endpoints embed it next to their data fields.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// RouteAuthenticator wires the token validator into fiber routes and owns
// the error responses for rejected requests.
type RouteAuthenticator struct {
	auth         Authenticator
	cfg          Config
	Logger       Logger
	ErrorHandler func(c *fiber.Ctx, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	if auther == nil {
		return nil, errors.New("authenticator is required", errors.CategoryInternal)
	}

	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		Logger: defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// Protected builds the middleware guarding a route with the given policy.
// Token checks answer 401, role checks answer 403.
func (a *RouteAuthenticator) Protected(policy Policy) fiber.Handler {
	return jwtware.New(jwtware.Config{
		ErrorHandler:   a.ErrorHandler,
		AuthScheme:     a.cfg.GetAuthScheme(),
		ContextKey:     a.cfg.GetContextKey(),
		TokenValidator: wareValidator{inner: a.auth.TokenService()},
		RequiredRole:   policy.requiredRole,
		MinimumRole:    policy.minimumRole,
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			if ac, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(ctx, ac)
			}
			return ctx
		},
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c *fiber.Ctx, err error) error {
	var richErr *errors.Error

	switch {
	case errors.Is(err, jwtware.ErrInsufficientRole):
		richErr = errors.Wrap(err, errors.CategoryAuthz, "forbidden").
			WithCode(errors.CodeForbidden)
	case IsTokenExpiredError(err):
		richErr = ErrTokenExpired
	case IsMalformedError(err):
		richErr = ErrTokenMalformed
	default:
		richErr = errors.Wrap(err, errors.CategoryAuth, "invalid authentication token").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"request rejected: %s path=%s details=%s",
		richErr.Message,
		c.OriginalURL(),
		print.MaybePrettyJSON(richErr.Metadata),
	)

	return WriteError(c, richErr)
}

// WriteError maps an error to an HTTP status and the JSON envelope. Rich
// errors map by category; anything else answers 500 without leaking the
// original message.
func WriteError(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "an unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := statusForCategory(richErr)

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: richErr.Message,
	})
}

func statusForCategory(richErr *errors.Error) int {
	switch richErr.Category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	default:
		if richErr.Code >= fiber.StatusBadRequest {
			return richErr.Code
		}
		return fiber.StatusInternalServerError
	}
}

// NewServer builds the fiber app with panic recovery wired in.
func NewServer() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "quiz",
	})
	app.Use(recover.New())
	return app
}

// wareValidator adapts the root TokenValidator to the middleware's local
// interface.
type wareValidator struct {
	inner TokenValidator
}

func (w wareValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := w.inner.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

package quiz

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// AuthController answers the login, registration, and session introspection
// endpoints.
type AuthController struct {
	Logger     Logger
	Repo       RepositoryManager
	Auther     Authenticator
	ContextKey string
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func WithAuthLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithAuthRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithAuthAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithAuthContextKey(key string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// LoginResponse carries the session token and the identity attributes the
// client caches locally. A failed login answers 200 with Success false and
// the generic message; the transport status never distinguishes why.
type LoginResponse struct {
	APIResponse
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	Token string `json:"token,omitempty"`
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryBadInput, "could not parse login payload"))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryValidation, err.Error()))
	}

	token, identity, err := a.Auther.Login(c.UserContext(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		if IsCredentialError(err) {
			return c.JSON(LoginResponse{
				APIResponse: APIResponse{Success: false, Message: "invalid credentials provided"},
			})
		}
		a.Logger.Error("login error: %v", err)
		return WriteError(c, err)
	}

	return c.JSON(LoginResponse{
		APIResponse: APIResponse{Success: true},
		ID:          identity.ID(),
		Name:        identity.Name(),
		Role:        identity.Role(),
		Token:       token,
	})
}

// RegisterRequest is the self-registration payload
type RegisterRequest struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Phone    string `form:"phone" json:"phone"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.Length(10, 15)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register user parse payload: %v", err)
		return WriteError(c, errors.Wrap(err, errors.CategoryBadInput, "could not parse registration payload"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload: %v", err)
		return WriteError(c, errors.Wrap(err, errors.CategoryValidation, err.Error()))
	}

	// Self-registered users are always students pending approval
	req := RegisterUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Password: payload.Password,
		Role:     string(RoleStudent),
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	if _, err := registerUser.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("register user error: %v", err)
		return WriteError(c, err)
	}

	return c.JSON(APIResponse{Success: true, Message: "registration received, awaiting approval"})
}

// MeResponse mirrors the claims of the presented token plus the stored
// approval flag.
type MeResponse struct {
	APIResponse
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Approved bool   `json:"approved"`
}

func (a *AuthController) Me(c *fiber.Ctx) error {
	claims, ok := GetFiberClaims(c, a.ContextKey)
	if !ok {
		return WriteError(c, ErrUnableToDecodeSession)
	}

	user, err := a.Repo.Users().GetByID(c.UserContext(), claims.UserID())
	if err != nil {
		return WriteError(c, err)
	}

	return c.JSON(MeResponse{
		APIResponse: APIResponse{Success: true},
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        string(user.Role),
		Approved:    user.Approved,
	})
}

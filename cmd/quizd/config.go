package main

import (
	"os"
	"strconv"
	"strings"

	quiz "github.com/goliatone/go-quiz"
)

// AppConfig is an env-backed quiz.Config. Every knob has a default except
// the signing secret, which main refuses to run without.
type AppConfig struct {
	SigningKey      string
	ContextKey      string
	TokenExpiration int
	AuthScheme      string
	Issuer          string
	Audience        []string
	DSN             string
	Address         string
	AdminName       string
	AdminEmail      string
	AdminPassword   string
}

var _ quiz.Config = (*AppConfig)(nil)

func LoadConfig() *AppConfig {
	return &AppConfig{
		SigningKey:      os.Getenv("AUTH_SIGNING_KEY"),
		ContextKey:      envOr("AUTH_CONTEXT_KEY", "user"),
		TokenExpiration: envInt("AUTH_TOKEN_EXPIRATION", quiz.DefaultTokenExpiration),
		AuthScheme:      envOr("AUTH_SCHEME", "Bearer"),
		Issuer:          envOr("AUTH_ISSUER", "go-quiz"),
		Audience:        strings.Split(envOr("AUTH_AUDIENCE", "go-quiz"), ","),
		DSN:             envOr("DB_DSN", "file:quiz.db?cache=shared"),
		Address:         envOr("HTTP_ADDR", ":8572"),
		AdminName:       envOr("ADMIN_NAME", "Administrator"),
		AdminEmail:      envOr("ADMIN_EMAIL", "admin@gmail.com"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
	}
}

func (c *AppConfig) GetSigningKey() string   { return c.SigningKey }
func (c *AppConfig) GetContextKey() string   { return c.ContextKey }
func (c *AppConfig) GetTokenExpiration() int { return c.TokenExpiration }
func (c *AppConfig) GetAuthScheme() string   { return c.AuthScheme }
func (c *AppConfig) GetIssuer() string       { return c.Issuer }
func (c *AppConfig) GetAudience() []string   { return c.Audience }

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

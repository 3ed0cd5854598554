package quiz

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCreds is shared by every credential failure so callers
	// cannot tell which check rejected the login.
	TextCodeInvalidCreds = "INVALID_CREDENTIALS"
	// TextCodeTokenExpired marks rejected tokens that were once valid
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed marks tokens we could not parse or verify
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrMismatchedHashAndPassword is returned when the password does not match
// the stored hash. It shares the invalid-credentials text code on purpose.
var ErrMismatchedHashAndPassword = errors.New("invalid credentials provided", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrIdentityNotApproved is returned for identities awaiting admin approval.
// Callers see the same generic message as any other credential failure.
var ErrIdentityNotApproved = errors.New("invalid credentials provided", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrTokenExpired is returned for tokens past their expiry
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned for tokens that fail signature, issuer or
// audience checks, or that we cannot parse at all
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrUnableToDecodeSession unable to decode claims from a validated token
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString guards hashing empty passwords
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryBadInput)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}

	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsCredentialError reports whether err is one of the collapsed credential
// failures: unknown identity, wrong password, or pending approval.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}

	if errors.IsNotFound(err) {
		return true
	}

	var richErr *errors.Error
	return errors.As(err, &richErr) && richErr.TextCode == TextCodeInvalidCreds
}

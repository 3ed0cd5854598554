package quiz_test

import (
	"errors"
	"testing"

	quiz "github.com/goliatone/go-quiz"
	"github.com/stretchr/testify/assert"
)

func TestIsTokenExpiredError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "structured expired error",
			err:      quiz.ErrTokenExpired,
			expected: true,
		},
		{
			name:     "legacy expired error (string match)",
			err:      errors.New("some wrapper: token is expired"),
			expected: true,
		},
		{
			name:     "different structured error",
			err:      quiz.ErrIdentityNotFound,
			expected: false,
		},
		{
			name:     "different legacy error",
			err:      errors.New("invalid token"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, quiz.IsTokenExpiredError(tt.err))
		})
	}
}

func TestIsMalformedError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "structured malformed error",
			err:      quiz.ErrTokenMalformed,
			expected: true,
		},
		{
			name:     "legacy malformed error (string match)",
			err:      errors.New("token is malformed"),
			expected: true,
		},
		{
			name:     "legacy missing JWT error (string match)",
			err:      errors.New("missing or malformed JWT"),
			expected: true,
		},
		{
			name:     "different structured error",
			err:      quiz.ErrTokenExpired,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, quiz.IsMalformedError(tt.err))
		})
	}
}

func TestIsCredentialError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"password mismatch", quiz.ErrMismatchedHashAndPassword, true},
		{"pending approval", quiz.ErrIdentityNotApproved, true},
		{"identity not found", quiz.ErrIdentityNotFound, true},
		{"token expired is not a credential error", quiz.ErrTokenExpired, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, quiz.IsCredentialError(tt.err))
		})
	}
}

func TestCredentialErrorsShareOneMessage(t *testing.T) {
	// the verifier relies on these two being indistinguishable to callers
	assert.Equal(t,
		quiz.ErrMismatchedHashAndPassword.Error(),
		quiz.ErrIdentityNotApproved.Error(),
	)
}

package quiz_test

import (
	"context"
	"testing"

	quiz "github.com/goliatone/go-quiz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticator_Login(t *testing.T) {
	provider := quiz.NewUserProvider(seedProviderUsers(t)).WithLogger(testLogger{})
	auther := quiz.NewAuthenticator(provider, testConfig{signingKey: "test-signing-key"}).
		WithLogger(testLogger{})

	ctx := context.Background()

	t.Run("issues a token for valid credentials", func(t *testing.T) {
		token, identity, err := auther.Login(ctx, "student@example.com", "correct-password")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		assert.Equal(t, int64(1), identity.ID())

		claims, err := auther.TokenService().Validate(token)
		require.NoError(t, err)
		assert.Equal(t, int64(1), claims.UserID())
		assert.Equal(t, "Student", claims.Role())
		assert.Equal(t, "Approved Student", claims.Name())
	})

	t.Run("propagates the credential error", func(t *testing.T) {
		_, _, err := auther.Login(ctx, "student@example.com", "wrong-password")
		require.Error(t, err)
		assert.True(t, quiz.IsCredentialError(err))
	})

	t.Run("unapproved user cannot log in", func(t *testing.T) {
		_, _, err := auther.Login(ctx, "pending@example.com", "correct-password")
		require.Error(t, err)
		assert.True(t, quiz.IsCredentialError(err))
	})
}

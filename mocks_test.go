package quiz_test

import (
	"context"
	"sync"

	quiz "github.com/goliatone/go-quiz"
)

// testLogger satisfies quiz.Logger and keeps tests quiet.
type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// testIdentity is a fixed Identity for token tests.
type testIdentity struct {
	id    int64
	email string
	name  string
	role  string
}

func (t testIdentity) ID() int64     { return t.id }
func (t testIdentity) Email() string { return t.email }
func (t testIdentity) Name() string  { return t.name }
func (t testIdentity) Role() string  { return t.role }

// stubUserStore serves users from memory keyed by email.
type stubUserStore struct {
	mu    sync.Mutex
	users map[string]*quiz.User
}

func newStubUserStore(users ...*quiz.User) *stubUserStore {
	s := &stubUserStore{users: map[string]*quiz.User{}}
	for _, user := range users {
		s.users[user.Email] = user
	}
	return s
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (*quiz.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[email]
	if !ok {
		return nil, quiz.ErrIdentityNotFound
	}
	return user, nil
}

// testConfig is a fixed quiz.Config for HTTP and authenticator tests.
type testConfig struct {
	signingKey string
}

func (c testConfig) GetSigningKey() string   { return c.signingKey }
func (c testConfig) GetContextKey() string   { return "user" }
func (c testConfig) GetTokenExpiration() int { return 1 }
func (c testConfig) GetAuthScheme() string   { return "Bearer" }
func (c testConfig) GetIssuer() string       { return "quiz-test" }
func (c testConfig) GetAudience() []string   { return []string{"quiz-test"} }

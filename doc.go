// Package quiz implements the quiz management service: authentication with
// signed bearer tokens, role gated HTTP endpoints, and persistence for
// categories, quizzes, questions and student attempts.
//
// The package is organized around a small set of interfaces (Identity,
// IdentityProvider, TokenService, Authenticator) wired together by the
// server binary. The companion client package holds the logged-in session on
// the consumer side and attaches the issued token to outgoing requests.
package quiz

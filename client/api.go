package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ErrUnauthenticated is returned when the server rejects the token.
var ErrUnauthenticated = errors.New("unauthenticated", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden is returned when the token is valid but the role is not
// allowed to perform the operation.
var ErrForbidden = errors.New("forbidden", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden)

// TokenSource yields the session whose token authenticates requests. The
// token is read per request, so a re-login is picked up without rebuilding
// the client.
type TokenSource interface {
	Current() Session
}

// APIResponse is the server's response envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	APIResponse
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// Category mirrors the server record.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Quiz mirrors the server record.
type Quiz struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	CategoryID     int64     `json:"category_id"`
	Category       *Category `json:"category,omitempty"`
	TotalQuestions int       `json:"total_questions"`
	TimeInMinutes  int       `json:"time_in_minutes"`
	IsActive       bool      `json:"is_active"`
}

// Option mirrors the server record. IsCorrect is only populated for admins.
type Option struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

// Question mirrors the server record.
type Question struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Options []*Option `json:"options,omitempty"`
}

// Attempt mirrors the server's attempt record.
type Attempt struct {
	ID          int64      `json:"id"`
	QuizID      uuid.UUID  `json:"quiz_id"`
	Quiz        *Quiz      `json:"quiz,omitempty"`
	StartedOn   time.Time  `json:"started_on"`
	CompletedOn *time.Time `json:"completed_on,omitempty"`
	Score       int        `json:"score"`
}

// Answer is one selected option submitted for scoring.
type Answer struct {
	QuestionID int64 `json:"question_id"`
	OptionID   int64 `json:"option_id"`
}

// Me is the session introspection payload.
type Me struct {
	APIResponse
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Approved bool   `json:"approved"`
}

// Client talks to the quiz API. The bearer token is attached lazily from the
// TokenSource on each request.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
	}
}

// WithHTTPClient swaps the underlying http client, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.http = hc
	}
	return c
}

// Login exchanges credentials for a session. A credential rejection comes
// back as a failed LoginResult, not an error; the caller decides what to
// show.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	out := LoginResult{}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, name, email, phone, password string) (APIResponse, error) {
	out := APIResponse{}
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"phone":    phone,
		"password": password,
	}, &out)
	return out, err
}

func (c *Client) Me(ctx context.Context) (Me, error) {
	out := Me{}
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out)
	return out, err
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.do(ctx, http.MethodGet, "/api/categories", nil, &out)
	return out, err
}

func (c *Client) SaveCategory(ctx context.Context, id int64, name string) (APIResponse, error) {
	out := APIResponse{}
	err := c.do(ctx, http.MethodPost, "/api/categories", map[string]any{
		"id":   id,
		"name": name,
	}, &out)
	return out, err
}

func (c *Client) Quizzes(ctx context.Context) ([]Quiz, error) {
	var out []Quiz
	err := c.do(ctx, http.MethodGet, "/api/quizzes", nil, &out)
	return out, err
}

func (c *Client) QuizQuestions(ctx context.Context, quizID uuid.UUID) ([]Question, error) {
	var out []Question
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/quizzes/%s/questions", quizID), nil, &out)
	return out, err
}

func (c *Client) StartAttempt(ctx context.Context, quizID uuid.UUID) (Attempt, error) {
	out := Attempt{}
	err := c.do(ctx, http.MethodPost, "/api/attempts", map[string]any{
		"quiz_id": quizID,
	}, &out)
	return out, err
}

func (c *Client) CompleteAttempt(ctx context.Context, attemptID int64, answers []Answer) (Attempt, error) {
	out := Attempt{}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/attempts/%d/complete", attemptID), map[string]any{
		"answers": answers,
	}, &out)
	return out, err
}

func (c *Client) Attempts(ctx context.Context) ([]Attempt, error) {
	var out []Attempt
	err := c.do(ctx, http.MethodGet, "/api/attempts", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to encode request payload")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build request")
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if session := c.tokens.Current(); session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "request failed")
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return ErrForbidden
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to read response")
	}

	if res.StatusCode >= http.StatusBadRequest {
		envelope := APIResponse{}
		if err := json.Unmarshal(data, &envelope); err == nil && envelope.Message != "" {
			return errors.New(envelope.Message, errors.CategoryOperation).WithCode(res.StatusCode)
		}
		return errors.New(fmt.Sprintf("unexpected status %d", res.StatusCode), errors.CategoryOperation).
			WithCode(res.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to decode response")
	}

	return nil
}

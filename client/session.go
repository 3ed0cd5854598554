// Package client holds the API client and the durable session cache used by
// the command line frontend.
package client

import (
	"context"
	"sync"
)

// Session is the locally cached identity of the logged-in user. A positive
// ID means logged in; everything else is the logged-out zero value.
type Session struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// IsLoggedIn reports whether the session belongs to an authenticated user.
func (s Session) IsLoggedIn() bool {
	return s.ID > 0
}

// State tracks the lifecycle of the session manager.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateLoggedOut
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateLoggedOut:
		return "logged_out"
	case StateLoggedIn:
		return "logged_in"
	default:
		return "unknown"
	}
}

// Listener is notified after every session change has been persisted.
type Listener func(session Session)

// Logger matches the root package's logging surface.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// SessionManager owns the in-memory session and mirrors every change to the
// Store before anyone else observes it. Safe for concurrent use.
type SessionManager struct {
	mu        sync.Mutex
	store     Store
	logger    Logger
	state     State
	session   Session
	listeners map[int]Listener
	nextID    int
}

func NewSessionManager(store Store) *SessionManager {
	return &SessionManager{
		store:     store,
		logger:    nopLogger{},
		state:     StateUninitialized,
		listeners: map[int]Listener{},
	}
}

func (m *SessionManager) WithLogger(logger Logger) *SessionManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Initialize loads the durable slot once. A corrupt or unreadable slot
// resolves to logged out; it never fails startup.
func (m *SessionManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateUninitialized {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.state = StateInitializing

	session, err := m.store.Load()
	if err != nil {
		m.logger.Warn("session slot unreadable, starting logged out: %v", err)
		session = Session{}
	}

	if session.IsLoggedIn() {
		m.session = session
		m.state = StateLoggedIn
	} else {
		m.session = Session{}
		m.state = StateLoggedOut
	}

	return nil
}

// State returns the manager's lifecycle state.
func (m *SessionManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns a copy of the session.
func (m *SessionManager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// SetLogin persists the session, then swaps it in and notifies listeners.
// If persisting fails the in-memory session is left untouched.
func (m *SessionManager) SetLogin(session Session) error {
	if !session.IsLoggedIn() {
		return m.SetLogout()
	}

	m.mu.Lock()

	if err := m.store.Save(session); err != nil {
		m.mu.Unlock()
		return err
	}

	m.session = session
	m.state = StateLoggedIn
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	for _, listener := range listeners {
		listener(session)
	}

	return nil
}

// SetLogout clears the durable slot, then the in-memory session.
func (m *SessionManager) SetLogout() error {
	m.mu.Lock()

	if err := m.store.Clear(); err != nil {
		m.mu.Unlock()
		return err
	}

	m.session = Session{}
	m.state = StateLoggedOut
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	for _, listener := range listeners {
		listener(Session{})
	}

	return nil
}

// Subscribe registers a listener for session changes and returns its
// unsubscribe function.
func (m *SessionManager) Subscribe(listener Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = listener

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// snapshotListeners must be called with mu held. Listeners run outside the
// lock so they can call back into the manager.
func (m *SessionManager) snapshotListeners() []Listener {
	listeners := make([]Listener, 0, len(m.listeners))
	for _, listener := range m.listeners {
		listeners = append(listeners, listener)
	}
	return listeners
}

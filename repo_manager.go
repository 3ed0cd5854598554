package quiz

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Users() Users
	Categories() Categories
	Quizzes() Quizzes
	Attempts() Attempts
}

type mngr struct {
	db         *bun.DB
	users      Users
	categories Categories
	quizzes    Quizzes
	attempts   Attempts
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	quizzes := NewQuizzesRepository(db)
	return &mngr{
		db:         db,
		users:      NewUsersRepository(db),
		categories: NewCategoriesRepository(db),
		quizzes:    quizzes,
		attempts:   NewAttemptsRepository(db, quizzes),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.categories == nil {
		return errors.New("repository categories should be initialized")
	}

	if m.quizzes == nil {
		return errors.New("repository quizzes should be initialized")
	}

	if m.attempts == nil {
		return errors.New("repository attempts should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Categories() Categories {
	return m.categories
}

func (m mngr) Quizzes() Quizzes {
	return m.quizzes
}

func (m mngr) Attempts() Attempts {
	return m.attempts
}

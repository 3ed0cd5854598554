package quiz

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// CreateSchema bootstraps the sqlite schema. Table creation is idempotent;
// the models are the single source of truth for column definitions.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*Category)(nil),
		(*Quiz)(nil),
		(*Question)(nil),
		(*Option)(nil),
		(*StudentQuiz)(nil),
	}

	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx)

		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create table")
		}
	}

	return nil
}

// SeedAdmin ensures a pre-approved admin identity exists so a fresh install
// can log in. A no-op when the email is already registered.
func SeedAdmin(ctx context.Context, repo RepositoryManager, name, email, password string) error {
	if _, err := repo.Users().GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.IsNotFound(err) {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	_, err = repo.Users().Register(ctx, &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleAdmin,
		Approved:     true,
	})

	return err
}

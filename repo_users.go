package quiz

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type Users interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	List(ctx context.Context, approved *bool) ([]*User, error)
	SetApproval(ctx context.Context, id int64, approved bool) (*User, error)
	SetApprovalTx(ctx context.Context, tx bun.IDB, id int64, approved bool) (*User, error)
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (a *users) GetByID(ctx context.Context, id int64) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		return nil, wrapUserNotFound(err, map[string]any{"id": id})
	}

	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Scan(ctx)

	if err != nil {
		return nil, wrapUserNotFound(err, map[string]any{"email": email})
	}

	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)

	if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConflict, "could not create user").
			WithMetadata(map[string]any{"email": user.Email})
	}

	return user, nil
}

func (a *users) List(ctx context.Context, approved *bool) ([]*User, error) {
	var records []*User
	q := a.db.NewSelect().Model(&records).Order("id ASC")

	if approved != nil {
		q = q.Where("?TableAlias.is_approved = ?", *approved)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}

	return records, nil
}

func (a *users) SetApproval(ctx context.Context, id int64, approved bool) (*User, error) {
	return a.SetApprovalTx(ctx, a.db, id, approved)
}

func (a *users) SetApprovalTx(ctx context.Context, tx bun.IDB, id int64, approved bool) (*User, error) {
	now := time.Now()
	record := &User{ID: id, Approved: approved, UpdatedAt: &now}

	res, err := tx.NewUpdate().
		Model(record).
		Column("is_approved", "updated_at").
		WherePK().
		Exec(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update approval")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrIdentityNotFound
	}

	return a.getByIDTx(ctx, tx, id)
}

func (a *users) getByIDTx(ctx context.Context, tx bun.IDB, id int64) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		return nil, wrapUserNotFound(err, map[string]any{"id": id})
	}

	return record, nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleStudent
	}

	record.Email = strings.ToLower(strings.TrimSpace(record.Email))

	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
		record.UpdatedAt = &now
	}
}

func wrapUserNotFound(err error, meta map[string]any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrIdentityNotFound.Clone().WithMetadata(meta)
	}
	return errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user").WithMetadata(meta)
}

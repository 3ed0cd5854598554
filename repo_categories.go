package quiz

import (
	"context"
	"database/sql"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ErrCategoryNameTaken is returned when saving a category whose name is
// already used by a different category.
var ErrCategoryNameTaken = errors.New("category with same name exists already", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode("CATEGORY_NAME_TAKEN")

// ErrCategoryNotFound is returned when updating a category that does not exist.
var ErrCategoryNotFound = errors.New("category does not exist", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("CATEGORY_NOT_FOUND")

type Categories interface {
	List(ctx context.Context) ([]*Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	Save(ctx context.Context, record *Category) (*Category, error)
	SaveTx(ctx context.Context, tx bun.IDB, record *Category) (*Category, error)
}

type categories struct {
	db *bun.DB
}

var _ Categories = (*categories)(nil)

func NewCategoriesRepository(db *bun.DB) Categories {
	return &categories{db: db}
}

func (r *categories) List(ctx context.Context) ([]*Category, error) {
	var records []*Category
	err := r.db.NewSelect().
		Model(&records).
		Order("name ASC").
		Scan(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list categories")
	}

	return records, nil
}

func (r *categories) GetByID(ctx context.Context, id int64) (*Category, error) {
	record := &Category{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve category")
	}

	return record, nil
}

// Save creates the category when ID is zero, updates it otherwise. Either
// way a different category holding the same name rejects the save.
func (r *categories) Save(ctx context.Context, record *Category) (*Category, error) {
	return r.SaveTx(ctx, r.db, record)
}

func (r *categories) SaveTx(ctx context.Context, tx bun.IDB, record *Category) (*Category, error) {
	record.Name = strings.TrimSpace(record.Name)

	taken, err := tx.NewSelect().
		Model((*Category)(nil)).
		Where("?TableAlias.name = ?", record.Name).
		Where("?TableAlias.id != ?", record.ID).
		Exists(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check category name")
	}

	if taken {
		return nil, ErrCategoryNameTaken
	}

	if record.ID == 0 {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create category")
		}
		return record, nil
	}

	res, err := tx.NewUpdate().
		Model(record).
		Column("name").
		WherePK().
		Exec(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update category")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrCategoryNotFound
	}

	return record, nil
}

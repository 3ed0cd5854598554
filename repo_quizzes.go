package quiz

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrQuizNotFound is returned for unknown or inactive quizzes.
var ErrQuizNotFound = errors.New("quiz does not exist", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("QUIZ_NOT_FOUND")

type Quizzes interface {
	// List returns quizzes with their category preloaded. When activeOnly
	// is set, inactive quizzes are filtered out (the student view).
	List(ctx context.Context, activeOnly bool) ([]*Quiz, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Quiz, error)
	// Save persists the quiz and its questions/options as one unit,
	// replacing previous questions on update.
	Save(ctx context.Context, record *Quiz) (*Quiz, error)
	SaveTx(ctx context.Context, tx bun.IDB, record *Quiz) (*Quiz, error)
	// Questions loads a quiz's questions with options for quiz taking.
	Questions(ctx context.Context, quizID uuid.UUID) ([]*Question, error)
	SetStatus(ctx context.Context, id uuid.UUID, active bool) error
	// CorrectOptions maps question id to the correct option id for scoring.
	CorrectOptions(ctx context.Context, tx bun.IDB, quizID uuid.UUID) (map[int64]int64, error)
}

type quizzes struct {
	db *bun.DB
}

var _ Quizzes = (*quizzes)(nil)

func NewQuizzesRepository(db *bun.DB) Quizzes {
	return &quizzes{db: db}
}

func (r *quizzes) List(ctx context.Context, activeOnly bool) ([]*Quiz, error) {
	var records []*Quiz
	q := r.db.NewSelect().
		Model(&records).
		Relation("Category").
		OrderExpr("?TableAlias.name ASC")

	if activeOnly {
		q = q.Where("?TableAlias.is_active = ?", true)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list quizzes")
	}

	return records, nil
}

func (r *quizzes) GetByID(ctx context.Context, id uuid.UUID) (*Quiz, error) {
	record := &Quiz{}
	err := r.db.NewSelect().
		Model(record).
		Relation("Category").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve quiz")
	}

	return record, nil
}

func (r *quizzes) Save(ctx context.Context, record *Quiz) (*Quiz, error) {
	var saved *Quiz
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		saved, err = r.SaveTx(ctx, tx, record)
		return err
	})
	return saved, err
}

func (r *quizzes) SaveTx(ctx context.Context, tx bun.IDB, record *Quiz) (*Quiz, error) {
	isNew := record.ID == uuid.Nil
	if isNew {
		record.ID = uuid.New()
	}

	record.TotalQuestions = len(record.Questions)

	if isNew {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create quiz")
		}
	} else {
		res, err := tx.NewUpdate().
			Model(record).
			Column("name", "category_id", "total_questions", "time_in_minutes", "is_active").
			WherePK().
			Exec(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update quiz")
		}
		if rows, err := res.RowsAffected(); err == nil && rows == 0 {
			return nil, ErrQuizNotFound
		}

		// Questions are replaced wholesale; the editor always submits the
		// full set.
		if err := r.deleteQuestionsTx(ctx, tx, record.ID); err != nil {
			return nil, err
		}
	}

	for _, question := range record.Questions {
		question.ID = 0
		question.QuizID = record.ID
		if _, err := tx.NewInsert().Model(question).Exec(ctx); err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create question")
		}

		for _, option := range question.Options {
			option.ID = 0
			option.QuestionID = question.ID
			if _, err := tx.NewInsert().Model(option).Exec(ctx); err != nil {
				return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create option")
			}
		}
	}

	return record, nil
}

func (r *quizzes) deleteQuestionsTx(ctx context.Context, tx bun.IDB, quizID uuid.UUID) error {
	var questionIDs []int64
	err := tx.NewSelect().
		Model((*Question)(nil)).
		Column("id").
		Where("?TableAlias.quiz_id = ?", quizID).
		Scan(ctx, &questionIDs)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to load quiz questions")
	}

	if len(questionIDs) == 0 {
		return nil
	}

	if _, err := tx.NewDelete().
		Model((*Option)(nil)).
		Where("question_id IN (?)", bun.In(questionIDs)).
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete quiz options")
	}

	if _, err := tx.NewDelete().
		Model((*Question)(nil)).
		Where("quiz_id = ?", quizID).
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete quiz questions")
	}

	return nil
}

func (r *quizzes) Questions(ctx context.Context, quizID uuid.UUID) ([]*Question, error) {
	var records []*Question
	err := r.db.NewSelect().
		Model(&records).
		Relation("Options").
		Where("?TableAlias.quiz_id = ?", quizID).
		Order("id ASC").
		Scan(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load questions")
	}

	return records, nil
}

func (r *quizzes) SetStatus(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.NewUpdate().
		Model((*Quiz)(nil)).
		Set("is_active = ?", active).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update quiz status")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrQuizNotFound
	}

	return nil
}

func (r *quizzes) CorrectOptions(ctx context.Context, tx bun.IDB, quizID uuid.UUID) (map[int64]int64, error) {
	if tx == nil {
		tx = r.db
	}

	var rows []struct {
		QuestionID int64 `bun:"question_id"`
		OptionID   int64 `bun:"id"`
	}

	err := tx.NewSelect().
		Model((*Option)(nil)).
		Column("opt.id", "opt.question_id").
		Join("JOIN questions AS qst ON qst.id = opt.question_id").
		Where("qst.quiz_id = ?", quizID).
		Where("opt.is_correct = ?", true).
		Scan(ctx, &rows)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load answer key")
	}

	key := make(map[int64]int64, len(rows))
	for _, row := range rows {
		key[row.QuestionID] = row.OptionID
	}

	return key, nil
}

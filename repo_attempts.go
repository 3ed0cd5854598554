package quiz

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrAttemptNotFound covers both unknown attempts and attempts owned by a
// different student; students cannot probe for other students' attempts.
var ErrAttemptNotFound = errors.New("attempt does not exist", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("ATTEMPT_NOT_FOUND")

// ErrAttemptCompleted rejects answer submission on a finished attempt.
var ErrAttemptCompleted = errors.New("attempt already completed", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode("ATTEMPT_COMPLETED")

// AttemptAnswer is a student's selected option for one question.
type AttemptAnswer struct {
	QuestionID int64 `json:"question_id"`
	OptionID   int64 `json:"option_id"`
}

type Attempts interface {
	Start(ctx context.Context, studentID int64, quizID uuid.UUID) (*StudentQuiz, error)
	GetByID(ctx context.Context, id, studentID int64) (*StudentQuiz, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*StudentQuiz, error)
	// Complete scores the submitted answers against the quiz's answer key
	// and stamps the attempt, all inside one transaction.
	Complete(ctx context.Context, id, studentID int64, answers []AttemptAnswer) (*StudentQuiz, error)
}

type attempts struct {
	db      *bun.DB
	quizzes Quizzes
}

var _ Attempts = (*attempts)(nil)

func NewAttemptsRepository(db *bun.DB, quizzes Quizzes) Attempts {
	return &attempts{db: db, quizzes: quizzes}
}

func (r *attempts) Start(ctx context.Context, studentID int64, quizID uuid.UUID) (*StudentQuiz, error) {
	quiz, err := r.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if !quiz.IsActive {
		return nil, ErrQuizNotFound
	}

	record := &StudentQuiz{
		QuizID:    quizID,
		StudentID: studentID,
		StartedOn: time.Now(),
	}

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to start attempt")
	}

	return record, nil
}

func (r *attempts) GetByID(ctx context.Context, id, studentID int64) (*StudentQuiz, error) {
	return r.getByIDTx(ctx, r.db, id, studentID)
}

func (r *attempts) getByIDTx(ctx context.Context, tx bun.IDB, id, studentID int64) (*StudentQuiz, error) {
	record := &StudentQuiz{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.student_id = ?", studentID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve attempt")
	}

	return record, nil
}

func (r *attempts) ListByStudent(ctx context.Context, studentID int64) ([]*StudentQuiz, error) {
	var records []*StudentQuiz
	err := r.db.NewSelect().
		Model(&records).
		Relation("Quiz").
		Where("?TableAlias.student_id = ?", studentID).
		Order("started_on DESC").
		Scan(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list attempts")
	}

	return records, nil
}

func (r *attempts) Complete(ctx context.Context, id, studentID int64, answers []AttemptAnswer) (*StudentQuiz, error) {
	var record *StudentQuiz

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		record, err = r.getByIDTx(ctx, tx, id, studentID)
		if err != nil {
			return err
		}

		if record.Completed() {
			return ErrAttemptCompleted
		}

		key, err := r.quizzes.CorrectOptions(ctx, tx, record.QuizID)
		if err != nil {
			return err
		}

		score := 0
		seen := make(map[int64]bool, len(answers))
		for _, answer := range answers {
			if seen[answer.QuestionID] {
				continue
			}
			seen[answer.QuestionID] = true

			if correct, ok := key[answer.QuestionID]; ok && correct == answer.OptionID {
				score++
			}
		}

		now := time.Now()
		record.Score = score
		record.CompletedOn = &now

		_, err = tx.NewUpdate().
			Model(record).
			Column("score", "completed_on").
			WherePK().
			Exec(ctx)

		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to complete attempt")
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return record, nil
}

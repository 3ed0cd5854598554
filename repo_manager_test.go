package quiz_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	quiz "github.com/goliatone/go-quiz"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupRepo(t *testing.T) quiz.RepositoryManager {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)

	// Keep the single connection alive so the in-memory database survives
	// for the whole test.
	sqldb.SetMaxOpenConns(1)

	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, quiz.CreateSchema(context.Background(), db))

	repo := quiz.NewRepositoryManager(db)
	repo.MustValidate()
	return repo
}

func seedUser(t *testing.T, repo quiz.RepositoryManager, email string, role quiz.UserRole, approved bool) *quiz.User {
	t.Helper()

	user, err := repo.Users().Register(context.Background(), &quiz.User{
		Name:         "Test " + email,
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Role:         role,
		Approved:     approved,
	})
	require.NoError(t, err)
	return user
}

func seedQuiz(t *testing.T, repo quiz.RepositoryManager, name string, active bool) *quiz.Quiz {
	t.Helper()
	ctx := context.Background()

	category, err := repo.Categories().Save(ctx, &quiz.Category{Name: "Category for " + name})
	require.NoError(t, err)

	record, err := repo.Quizzes().Save(ctx, &quiz.Quiz{
		Name:          name,
		CategoryID:    category.ID,
		TimeInMinutes: 10,
		IsActive:      active,
		Questions: []*quiz.Question{
			{
				Text: "What is 2+2?",
				Options: []*quiz.Option{
					{Text: "3"},
					{Text: "4", IsCorrect: true},
				},
			},
			{
				Text: "What is 3+3?",
				Options: []*quiz.Option{
					{Text: "6", IsCorrect: true},
					{Text: "7"},
				},
			},
		},
	})
	require.NoError(t, err)
	return record
}

func TestUsersRepository(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	t.Run("register applies defaults", func(t *testing.T) {
		user, err := repo.Users().Register(ctx, &quiz.User{
			Name:         "Mixed Case",
			Email:        "Mixed.Case@Example.COM",
			PasswordHash: "hash",
		})
		require.NoError(t, err)

		assert.True(t, user.ID > 0)
		assert.Equal(t, quiz.RoleStudent, user.Role)
		assert.Equal(t, "mixed.case@example.com", user.Email)
		assert.False(t, user.Approved)
		assert.NotNil(t, user.CreatedAt)
	})

	t.Run("lookup normalizes email", func(t *testing.T) {
		user, err := repo.Users().GetByEmail(ctx, "  MIXED.case@example.com ")
		require.NoError(t, err)
		assert.Equal(t, "Mixed Case", user.Name)
	})

	t.Run("unknown email is a not found error", func(t *testing.T) {
		_, err := repo.Users().GetByEmail(ctx, "nobody@example.com")
		assert.Error(t, err)
		assert.True(t, quiz.IsCredentialError(err))
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := repo.Users().Register(ctx, &quiz.User{
			Name:         "Duplicate",
			Email:        "mixed.case@example.com",
			PasswordHash: "hash",
		})
		assert.Error(t, err)
	})

	t.Run("approval toggles and filters", func(t *testing.T) {
		pending := seedUser(t, repo, "pending@example.com", quiz.RoleStudent, false)

		approved, err := repo.Users().SetApproval(ctx, pending.ID, true)
		require.NoError(t, err)
		assert.True(t, approved.Approved)

		yes := true
		records, err := repo.Users().List(ctx, &yes)
		require.NoError(t, err)
		for _, record := range records {
			assert.True(t, record.Approved)
		}
	})

	t.Run("approval of unknown user not found", func(t *testing.T) {
		_, err := repo.Users().SetApproval(ctx, 9999, true)
		assert.ErrorIs(t, err, quiz.ErrIdentityNotFound)
	})
}

func TestCategoriesRepository(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	t.Run("create and rename", func(t *testing.T) {
		record, err := repo.Categories().Save(ctx, &quiz.Category{Name: "Science"})
		require.NoError(t, err)
		assert.True(t, record.ID > 0)

		record.Name = "Natural Science"
		renamed, err := repo.Categories().Save(ctx, record)
		require.NoError(t, err)
		assert.Equal(t, "Natural Science", renamed.Name)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		_, err := repo.Categories().Save(ctx, &quiz.Category{Name: "History"})
		require.NoError(t, err)

		_, err = repo.Categories().Save(ctx, &quiz.Category{Name: "History"})
		assert.ErrorIs(t, err, quiz.ErrCategoryNameTaken)

		// same name with surrounding spaces is still a duplicate
		_, err = repo.Categories().Save(ctx, &quiz.Category{Name: "  History  "})
		assert.ErrorIs(t, err, quiz.ErrCategoryNameTaken)
	})

	t.Run("renaming keeps own name valid", func(t *testing.T) {
		record, err := repo.Categories().Save(ctx, &quiz.Category{Name: "Geography"})
		require.NoError(t, err)

		_, err = repo.Categories().Save(ctx, record)
		assert.NoError(t, err)
	})

	t.Run("updating missing category not found", func(t *testing.T) {
		_, err := repo.Categories().Save(ctx, &quiz.Category{ID: 9999, Name: "Ghost"})
		assert.ErrorIs(t, err, quiz.ErrCategoryNotFound)
	})
}

func TestQuizzesRepository(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	record := seedQuiz(t, repo, "Basic Math", true)
	inactive := seedQuiz(t, repo, "Hidden Quiz", false)

	t.Run("save assigns id and counts questions", func(t *testing.T) {
		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.Equal(t, 2, record.TotalQuestions)
	})

	t.Run("list filters inactive for students", func(t *testing.T) {
		all, err := repo.Quizzes().List(ctx, false)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		active, err := repo.Quizzes().List(ctx, true)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "Basic Math", active[0].Name)
		require.NotNil(t, active[0].Category)
	})

	t.Run("questions load with options", func(t *testing.T) {
		questions, err := repo.Quizzes().Questions(ctx, record.ID)
		require.NoError(t, err)
		require.Len(t, questions, 2)
		assert.Len(t, questions[0].Options, 2)
	})

	t.Run("correct options maps the answer key", func(t *testing.T) {
		key, err := repo.Quizzes().CorrectOptions(ctx, nil, record.ID)
		require.NoError(t, err)
		assert.Len(t, key, 2)
	})

	t.Run("update replaces questions wholesale", func(t *testing.T) {
		record.Questions = []*quiz.Question{
			{
				Text: "Only question now",
				Options: []*quiz.Option{
					{Text: "Yes", IsCorrect: true},
					{Text: "No"},
				},
			},
		}

		updated, err := repo.Quizzes().Save(ctx, record)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.TotalQuestions)

		questions, err := repo.Quizzes().Questions(ctx, record.ID)
		require.NoError(t, err)
		require.Len(t, questions, 1)
		assert.Equal(t, "Only question now", questions[0].Text)
	})

	t.Run("set status flips visibility", func(t *testing.T) {
		require.NoError(t, repo.Quizzes().SetStatus(ctx, inactive.ID, true))

		active, err := repo.Quizzes().List(ctx, true)
		require.NoError(t, err)
		assert.Len(t, active, 2)
	})

	t.Run("unknown quiz not found", func(t *testing.T) {
		_, err := repo.Quizzes().GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, quiz.ErrQuizNotFound)

		err = repo.Quizzes().SetStatus(ctx, uuid.New(), true)
		assert.ErrorIs(t, err, quiz.ErrQuizNotFound)
	})
}

func TestAttemptsRepository(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	student := seedUser(t, repo, "student@example.com", quiz.RoleStudent, true)
	other := seedUser(t, repo, "other@example.com", quiz.RoleStudent, true)

	active := seedQuiz(t, repo, "Active Quiz", true)
	hidden := seedQuiz(t, repo, "Inactive Quiz", false)

	t.Run("cannot start inactive quiz", func(t *testing.T) {
		_, err := repo.Attempts().Start(ctx, student.ID, hidden.ID)
		assert.ErrorIs(t, err, quiz.ErrQuizNotFound)
	})

	t.Run("attempt lifecycle scores answers", func(t *testing.T) {
		attempt, err := repo.Attempts().Start(ctx, student.ID, active.ID)
		require.NoError(t, err)
		assert.False(t, attempt.Completed())

		key, err := repo.Quizzes().CorrectOptions(ctx, nil, active.ID)
		require.NoError(t, err)
		require.Len(t, key, 2)

		answers := make([]quiz.AttemptAnswer, 0, 3)
		for questionID, optionID := range key {
			answers = append(answers, quiz.AttemptAnswer{QuestionID: questionID, OptionID: optionID})
		}
		// duplicate submissions for a question must not double count
		answers = append(answers, answers[0])

		completed, err := repo.Attempts().Complete(ctx, attempt.ID, student.ID, answers)
		require.NoError(t, err)
		assert.True(t, completed.Completed())
		assert.Equal(t, 2, completed.Score)

		_, err = repo.Attempts().Complete(ctx, attempt.ID, student.ID, answers)
		assert.ErrorIs(t, err, quiz.ErrAttemptCompleted)
	})

	t.Run("wrong answers score zero", func(t *testing.T) {
		attempt, err := repo.Attempts().Start(ctx, student.ID, active.ID)
		require.NoError(t, err)

		completed, err := repo.Attempts().Complete(ctx, attempt.ID, student.ID, []quiz.AttemptAnswer{
			{QuestionID: 1, OptionID: 9999},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, completed.Score)
	})

	t.Run("attempts are scoped to their student", func(t *testing.T) {
		attempt, err := repo.Attempts().Start(ctx, student.ID, active.ID)
		require.NoError(t, err)

		_, err = repo.Attempts().GetByID(ctx, attempt.ID, other.ID)
		assert.ErrorIs(t, err, quiz.ErrAttemptNotFound)

		_, err = repo.Attempts().Complete(ctx, attempt.ID, other.ID, nil)
		assert.ErrorIs(t, err, quiz.ErrAttemptNotFound)
	})

	t.Run("list by student", func(t *testing.T) {
		records, err := repo.Attempts().ListByStudent(ctx, student.ID)
		require.NoError(t, err)
		assert.True(t, len(records) >= 3)

		records, err = repo.Attempts().ListByStudent(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

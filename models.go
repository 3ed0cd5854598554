package quiz

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the server-side identity record. Users are created by
// registration, mutated only by the approval workflow, and never deleted.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Approved      bool       `bun:"is_approved,notnull,default:false" json:"is_approved"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Category groups quizzes. Names are unique.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	Name          string `bun:"name,notnull,unique" json:"name"`
}

// Quiz is a timed set of questions inside a category. Inactive quizzes are
// hidden from students but kept for admins.
type Quiz struct {
	bun.BaseModel  `bun:"table:quizzes,alias:qz"`
	ID             uuid.UUID   `bun:"id,pk,type:uuid" json:"id"`
	Name           string      `bun:"name,notnull" json:"name"`
	CategoryID     int64       `bun:"category_id,notnull" json:"category_id"`
	Category       *Category   `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	TotalQuestions int         `bun:"total_questions,notnull" json:"total_questions"`
	TimeInMinutes  int         `bun:"time_in_minutes,notnull" json:"time_in_minutes"`
	IsActive       bool        `bun:"is_active,notnull,default:false" json:"is_active"`
	Questions      []*Question `bun:"rel:has-many,join:id=quiz_id" json:"questions,omitempty"`
}

// Question belongs to a quiz.
type Question struct {
	bun.BaseModel `bun:"table:questions,alias:qst"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	QuizID        uuid.UUID `bun:"quiz_id,notnull,type:uuid" json:"quiz_id"`
	Text          string    `bun:"text,notnull" json:"text"`
	Options       []*Option `bun:"rel:has-many,join:id=question_id" json:"options,omitempty"`
}

// Option is one of a question's answers. IsCorrect never leaves the server
// through the student-facing endpoints.
type Option struct {
	bun.BaseModel `bun:"table:options,alias:opt"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	QuestionID    int64  `bun:"question_id,notnull" json:"question_id"`
	Text          string `bun:"text,notnull" json:"text"`
	IsCorrect     bool   `bun:"is_correct,notnull,default:false" json:"is_correct,omitempty"`
}

// StudentQuiz records a student's attempt at a quiz.
type StudentQuiz struct {
	bun.BaseModel `bun:"table:student_quizzes,alias:sq"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	QuizID        uuid.UUID  `bun:"quiz_id,notnull,type:uuid" json:"quiz_id"`
	Quiz          *Quiz      `bun:"rel:belongs-to,join:quiz_id=id" json:"quiz,omitempty"`
	StudentID     int64      `bun:"student_id,notnull" json:"student_id"`
	StartedOn     time.Time  `bun:"started_on,notnull" json:"started_on"`
	CompletedOn   *time.Time `bun:"completed_on,nullzero" json:"completed_on,omitempty"`
	Score         int        `bun:"score,notnull,default:0" json:"score"`
}

// Completed reports whether the attempt has been submitted.
func (s *StudentQuiz) Completed() bool {
	return s.CompletedOn != nil
}

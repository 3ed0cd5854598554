package quiz

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// CategoryController answers category listing and admin category edits.
type CategoryController struct {
	Logger Logger
	Repo   RepositoryManager
}

// SaveCategoryRequest creates when ID is zero, renames otherwise
type SaveCategoryRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (r SaveCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
	)
}

func (a *CategoryController) Index(c *fiber.Ctx) error {
	records, err := a.Repo.Categories().List(c.UserContext())
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(records)
}

func (a *CategoryController) Save(c *fiber.Ctx) error {
	payload := new(SaveCategoryRequest)

	if err := c.BodyParser(payload); err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryBadInput, "could not parse category payload"))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryValidation, err.Error()))
	}

	record := &Category{ID: payload.ID, Name: payload.Name}
	if _, err := a.Repo.Categories().Save(c.UserContext(), record); err != nil {
		// Duplicate names are part of the editor flow; it answers inside
		// the envelope rather than as a transport failure.
		if errors.Is(err, ErrCategoryNameTaken) {
			return c.JSON(APIResponse{Success: false, Message: "category with same name exists already"})
		}
		a.Logger.Error("category save error: %v", err)
		return WriteError(c, err)
	}

	return c.JSON(APIResponse{Success: true})
}

// QuizController answers quiz listing, editing, and question delivery.
type QuizController struct {
	Logger     Logger
	Repo       RepositoryManager
	ContextKey string
}

// SaveOptionPayload is one answer choice inside a question payload
type SaveOptionPayload struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// SaveQuestionPayload is one question inside a quiz payload
type SaveQuestionPayload struct {
	Text    string              `json:"text"`
	Options []SaveOptionPayload `json:"options"`
}

func (r SaveQuestionPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.Options, validation.Required, validation.Length(2, 10)),
	)
}

// SaveQuizRequest creates when ID is omitted, replaces otherwise. The editor
// always submits the complete question set.
type SaveQuizRequest struct {
	ID            uuid.UUID             `json:"id"`
	Name          string                `json:"name"`
	CategoryID    int64                 `json:"category_id"`
	TimeInMinutes int                   `json:"time_in_minutes"`
	IsActive      bool                  `json:"is_active"`
	Questions     []SaveQuestionPayload `json:"questions"`
}

func (r SaveQuizRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.CategoryID, validation.Required),
		validation.Field(&r.TimeInMinutes, validation.Required, validation.Min(1), validation.Max(120)),
		validation.Field(&r.Questions, validation.Required, validation.Length(1, 100)),
	)
}

func (r SaveQuizRequest) toModel() *Quiz {
	record := &Quiz{
		ID:            r.ID,
		Name:          r.Name,
		CategoryID:    r.CategoryID,
		TimeInMinutes: r.TimeInMinutes,
		IsActive:      r.IsActive,
	}

	for _, question := range r.Questions {
		q := &Question{Text: question.Text}
		for _, option := range question.Options {
			q.Options = append(q.Options, &Option{Text: option.Text, IsCorrect: option.IsCorrect})
		}
		record.Questions = append(record.Questions, q)
	}

	return record
}

// List returns every quiz for admins and only active ones for students.
func (a *QuizController) List(c *fiber.Ctx) error {
	claims, ok := GetFiberClaims(c, a.ContextKey)
	if !ok {
		return WriteError(c, ErrUnableToDecodeSession)
	}

	activeOnly := !claims.IsAtLeast(string(RoleAdmin))
	records, err := a.Repo.Quizzes().List(c.UserContext(), activeOnly)
	if err != nil {
		return WriteError(c, err)
	}

	return c.JSON(records)
}

func (a *QuizController) Save(c *fiber.Ctx) error {
	payload := new(SaveQuizRequest)

	if err := c.BodyParser(payload); err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryBadInput, "could not parse quiz payload"))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryValidation, err.Error()))
	}

	for _, question := range payload.Questions {
		if err := question.Validate(); err != nil {
			return WriteError(c, errors.Wrap(err, errors.CategoryValidation, err.Error()))
		}
	}

	if _, err := a.Repo.Categories().GetByID(c.UserContext(), payload.CategoryID); err != nil {
		return WriteError(c, err)
	}

	record, err := a.Repo.Quizzes().Save(c.UserContext(), payload.toModel())
	if err != nil {
		a.Logger.Error("quiz save error: %v", err)
		return WriteError(c, err)
	}

	return c.JSON(struct {
		APIResponse
		ID uuid.UUID `json:"id"`
	}{APIResponse{Success: true}, record.ID})
}

// Questions serves a quiz's questions. For students the correct answer flag
// is stripped before the payload leaves the server.
func (a *QuizController) Questions(c *fiber.Ctx) error {
	claims, ok := GetFiberClaims(c, a.ContextKey)
	if !ok {
		return WriteError(c, ErrUnableToDecodeSession)
	}

	quizID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryBadInput, "invalid quiz id"))
	}

	if _, err := a.Repo.Quizzes().GetByID(c.UserContext(), quizID); err != nil {
		return WriteError(c, err)
	}

	records, err := a.Repo.Quizzes().Questions(c.UserContext(), quizID)
	if err != nil {
		return WriteError(c, err)
	}

	if !claims.IsAtLeast(string(RoleAdmin)) {
		for _, question := range records {
			for _, option := range question.Options {
				option.IsCorrect = false
			}
		}
	}

	return c.JSON(records)
}

// SetStatusRequest toggles quiz visibility for students
type SetStatusRequest struct {
	IsActive bool `json:"is_active"`
}

func (a *QuizController) SetStatus(c *fiber.Ctx) error {
	quizID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryBadInput, "invalid quiz id"))
	}

	payload := new(SetStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryBadInput, "could not parse status payload"))
	}

	if err := a.Repo.Quizzes().SetStatus(c.UserContext(), quizID, payload.IsActive); err != nil {
		return WriteError(c, err)
	}

	return c.JSON(APIResponse{Success: true})
}

// AttemptController answers the student attempt lifecycle.
type AttemptController struct {
	Logger     Logger
	Repo       RepositoryManager
	ContextKey string
}

// StartAttemptRequest begins an attempt at an active quiz
type StartAttemptRequest struct {
	QuizID uuid.UUID `json:"quiz_id"`
}

func (a *AttemptController) Start(c *fiber.Ctx) error {
	claims, ok := GetFiberClaims(c, a.ContextKey)
	if !ok {
		return WriteError(c, ErrUnableToDecodeSession)
	}

	payload := new(StartAttemptRequest)
	if err := c.BodyParser(payload); err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryBadInput, "could not parse attempt payload"))
	}

	if payload.QuizID == uuid.Nil {
		return WriteError(c, errors.New("quiz_id is required", errors.CategoryValidation))
	}

	record, err := a.Repo.Attempts().Start(c.UserContext(), claims.UserID(), payload.QuizID)
	if err != nil {
		a.Logger.Error("attempt start error: %v", err)
		return WriteError(c, err)
	}

	return c.JSON(record)
}

// CompleteAttemptRequest submits the full answer sheet for scoring
type CompleteAttemptRequest struct {
	Answers []AttemptAnswer `json:"answers"`
}

func (a *AttemptController) Complete(c *fiber.Ctx) error {
	claims, ok := GetFiberClaims(c, a.ContextKey)
	if !ok {
		return WriteError(c, ErrUnableToDecodeSession)
	}

	attemptID, err := c.ParamsInt("id")
	if err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryBadInput, "invalid attempt id"))
	}

	payload := new(CompleteAttemptRequest)
	if err := c.BodyParser(payload); err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryBadInput, "could not parse answers payload"))
	}

	record, err := a.Repo.Attempts().Complete(c.UserContext(), int64(attemptID), claims.UserID(), payload.Answers)
	if err != nil {
		a.Logger.Error("attempt complete error: %v", err)
		return WriteError(c, err)
	}

	return c.JSON(record)
}

// List returns the calling student's attempt history.
func (a *AttemptController) List(c *fiber.Ctx) error {
	claims, ok := GetFiberClaims(c, a.ContextKey)
	if !ok {
		return WriteError(c, ErrUnableToDecodeSession)
	}

	records, err := a.Repo.Attempts().ListByStudent(c.UserContext(), claims.UserID())
	if err != nil {
		return WriteError(c, err)
	}

	return c.JSON(records)
}

// AdminController answers user administration for admins.
type AdminController struct {
	Logger Logger
	Repo   RepositoryManager
}

// Users lists accounts, optionally filtered with ?approved=true|false.
func (a *AdminController) Users(c *fiber.Ctx) error {
	var approved *bool
	switch c.Query("approved") {
	case "true":
		v := true
		approved = &v
	case "false":
		v := false
		approved = &v
	}

	records, err := a.Repo.Users().List(c.UserContext(), approved)
	if err != nil {
		return WriteError(c, err)
	}

	return c.JSON(records)
}

// SetApprovalRequest grants or revokes login access
type SetApprovalRequest struct {
	Approved bool `json:"approved"`
}

func (a *AdminController) SetApproval(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryBadInput, "invalid user id"))
	}

	payload := new(SetApprovalRequest)
	if err := c.BodyParser(payload); err != nil {
		return WriteError(c, errors.Wrap(err, errors.CategoryBadInput, "could not parse approval payload"))
	}

	approveUser := NewApproveUserHandler(a.Repo)
	if err := approveUser.Execute(c.UserContext(), ApproveUserMessage{
		UserID:   int64(userID),
		Approved: payload.Approved,
	}); err != nil {
		a.Logger.Error("user approval error: %v", err)
		return WriteError(c, err)
	}

	return c.JSON(APIResponse{Success: true})
}

// RegisterRoutes mounts the full API surface on app. Reads require a valid
// token, writes require the role named next to each route.
func RegisterRoutes(app *fiber.App, repo RepositoryManager, auther Authenticator, cfg Config, logger Logger) error {
	routeAuth, err := NewHTTPAuthenticator(auther, cfg)
	if err != nil {
		return err
	}
	routeAuth.WithLogger(logger)

	if logger == nil {
		logger = defLogger{}
	}

	contextKey := cfg.GetContextKey()

	authController := NewAuthController(
		WithAuthLogger(logger),
		WithAuthRepo(repo),
		WithAuthAuthenticator(auther),
		WithAuthContextKey(contextKey),
	)
	categories := &CategoryController{Logger: logger, Repo: repo}
	quizzes := &QuizController{Logger: logger, Repo: repo, ContextKey: contextKey}
	attempts := &AttemptController{Logger: logger, Repo: repo, ContextKey: contextKey}
	admin := &AdminController{Logger: logger, Repo: repo}

	authenticated := routeAuth.Protected(Authenticated())
	adminOnly := routeAuth.Protected(AtLeast(RoleAdmin))
	studentOnly := routeAuth.Protected(RequireRole(RoleStudent))

	api := app.Group("/api")

	api.Post("/auth/login", authController.LoginPost)
	api.Post("/auth/register", authController.RegisterPost)
	api.Get("/auth/me", authenticated, authController.Me)

	api.Get("/categories", authenticated, categories.Index)
	api.Post("/categories", adminOnly, categories.Save)

	api.Get("/quizzes", authenticated, quizzes.List)
	api.Post("/quizzes", adminOnly, quizzes.Save)
	api.Get("/quizzes/:id/questions", authenticated, quizzes.Questions)
	api.Patch("/quizzes/:id/status", adminOnly, quizzes.SetStatus)

	api.Post("/attempts", studentOnly, attempts.Start)
	api.Post("/attempts/:id/complete", studentOnly, attempts.Complete)
	api.Get("/attempts", studentOnly, attempts.List)

	api.Get("/admin/users", adminOnly, admin.Users)
	api.Patch("/admin/users/:id/approval", adminOnly, admin.SetApproval)

	return nil
}

package quiz

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type ApproveUserMessage struct {
	UserID   int64 `json:"user_id"`
	Approved bool  `json:"approved"`
}

func (e ApproveUserMessage) Type() string { return "user.approval" }

// ApproveUserHandler toggles the approval flag that gates login.
type ApproveUserHandler struct {
	repo RepositoryManager
}

func NewApproveUserHandler(repo RepositoryManager) *ApproveUserHandler {
	return &ApproveUserHandler{repo: repo}
}

func (h *ApproveUserHandler) Execute(ctx context.Context, event ApproveUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user approval",
		)
	default:
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := h.repo.Users().SetApprovalTx(ctx, tx, event.UserID, event.Approved)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user approval transaction failed")
	}

	return nil
}

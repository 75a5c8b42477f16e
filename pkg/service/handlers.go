package service

import (
	"github.com/charmbracelet/log"
	"github.com/cohesivestack/valgo"
	"github.com/gofiber/fiber/v3"
	"github.com/theapemachine/taskagent/pkg/auth"
	"github.com/theapemachine/taskagent/pkg/errors"
	"github.com/theapemachine/taskagent/pkg/types"
)

const maxMessageLength = 2000

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

var knownActions = []string{
	types.ActionCreate,
	types.ActionComplete,
	types.ActionDelete,
	types.ActionUpdateStatus,
	types.ActionCancel,
}

func (srv *ChatServer) handleChat(ctx fiber.Ctx) error {
	var request ChatRequest

	if err := ctx.Bind().Body(&request); err != nil {
		return errors.ErrBadRequest.WithMessagef("invalid request body: %v", err)
	}

	validation := valgo.Is(
		valgo.String(request.Message, "message").Not().Blank().MaxLength(maxMessageLength),
	)

	if !validation.Valid() {
		return errors.ErrBadRequest.WithMessagef("invalid message").WithData(validation.Error())
	}

	userID := currentUser(ctx)
	snapshot, err := srv.snapshots.ListForUser(ctx.Context(), userID)

	if err != nil {
		log.Error("task snapshot failed", "user", userID, "error", err)
		return errors.ErrInternal.WithMessagef("could not load tasks")
	}

	response, err := srv.assistant.ProcessMessage(ctx.Context(), userID, request.Message, snapshot)

	if err != nil {
		log.Error("chat turn failed", "user", userID, "error", err)
		return errors.ErrInternal.WithMessagef("could not store conversation")
	}

	return ctx.JSON(response)
}

func (srv *ChatServer) handleHistory(ctx fiber.Ctx) error {
	history, err := srv.assistant.History(ctx.Context(), currentUser(ctx))

	if err != nil {
		return errors.ErrInternal.WithMessagef("could not load conversation")
	}

	if history == nil {
		history = []types.ConversationTurn{}
	}

	return ctx.JSON(fiber.Map{"history": history})
}

func (srv *ChatServer) handleClearHistory(ctx fiber.Ctx) error {
	if err := srv.assistant.ClearHistory(ctx.Context(), currentUser(ctx)); err != nil {
		return errors.ErrInternal.WithMessagef("could not clear conversation")
	}

	return ctx.JSON(fiber.Map{"message": "Histórico limpo com sucesso"})
}

/*
handleAction runs a confirmed action.  The body is always an ActionResult;
the status code tells a rejected confirmation (409) apart from a malformed
request (400) or a failing backend (500).
*/
func (srv *ChatServer) handleAction(ctx fiber.Ctx) error {
	var request types.ActionRequest

	if err := ctx.Bind().Body(&request); err != nil {
		return errors.ErrBadRequest.WithMessagef("invalid request body: %v", err)
	}

	validation := valgo.Is(valgo.String(request.Action, "action").Not().Blank().InSlice(knownActions))

	switch request.Action {
	case types.ActionComplete, types.ActionDelete, types.ActionUpdateStatus:
		validation.Is(valgo.String(request.TaskID, "task_id").Not().Blank())
	}

	if !validation.Valid() {
		return errors.ErrBadRequest.WithMessagef("invalid action").WithData(validation.Error())
	}

	result, err := srv.assistant.ExecuteAction(ctx.Context(), currentUser(ctx), request)

	return ctx.Status(actionStatus(err)).JSON(result)
}

func actionStatus(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, errors.ErrNoPendingConfirmation):
		return fiber.StatusConflict
	case errors.Is(err, errors.ErrUnsupportedAction), errors.Is(err, errors.ErrInvalidPayload):
		return fiber.StatusBadRequest
	case errors.Is(err, errors.ErrPortUnavailable):
		return fiber.StatusServiceUnavailable
	}

	return fiber.StatusInternalServerError
}

func (srv *ChatServer) handleTasks(ctx fiber.Ctx) error {
	snapshot, err := srv.snapshots.ListForUser(ctx.Context(), currentUser(ctx))

	if err != nil {
		return errors.ErrInternal.WithMessagef("could not load tasks")
	}

	return ctx.JSON(fiber.Map{"tasks": snapshot})
}

func (srv *ChatServer) handleStatus(ctx fiber.Ctx) error {
	status, err := srv.assistant.Status(ctx.Context(), currentUser(ctx))

	if err != nil {
		return errors.ErrInternal.WithMessagef("could not load conversation")
	}

	return ctx.JSON(status)
}

func fromAuthError(err error) error {
	switch {
	case errors.Is(err, auth.ErrRateLimited):
		return errors.ErrRateLimited
	case errors.Is(err, auth.ErrMissingToken):
		return errors.ErrUnauthorized.WithMessagef("missing bearer token")
	}

	return errors.ErrUnauthorized.WithMessagef("invalid bearer token")
}

// errorHandler renders APIError values as JSON; anything else is a 500.
func errorHandler(ctx fiber.Ctx, err error) error {
	var apiErr *errors.APIError

	if errors.As(err, &apiErr) {
		return ctx.Status(apiErr.Code).JSON(apiErr)
	}

	var fiberErr *fiber.Error

	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(errors.APIError{Code: fiberErr.Code, Message: fiberErr.Message})
	}

	log.Error("unhandled request error", "path", ctx.Path(), "error", err)

	return ctx.Status(fiber.StatusInternalServerError).JSON(errors.ErrInternal)
}

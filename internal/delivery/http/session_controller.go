package http

import (
	"errors"

	"github.com/shelfclub/bookclub-backend/internal/constant"
	"github.com/shelfclub/bookclub-backend/internal/model"
	"github.com/shelfclub/bookclub-backend/internal/usecase"
	"github.com/shelfclub/bookclub-backend/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type SessionController struct {
	SessionUsecase *usecase.SessionUsecase
	Log            *zap.Logger
	Config         *koanf.Koanf
}

func NewSessionController(sessionUsecase *usecase.SessionUsecase, zap *zap.Logger, koanf *koanf.Koanf) *SessionController {
	return &SessionController{
		SessionUsecase: sessionUsecase,
		Log:            zap,
		Config:         koanf,
	}
}

func (controller SessionController) Get(ctx *fiber.Ctx) error {
	sessionId := ctx.Query("id")

	var validationErr *model.ValidationError
	var notFoundErr *model.NotFoundError

	response, err := controller.SessionUsecase.GetSession(ctx, sessionId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}
		if errors.As(err, &notFoundErr) {
			return util.SendErrorResponseNotFound(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller SessionController) Create(ctx *fiber.Ctx) error {
	var payload model.SessionCreateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError
	var notFoundErr *model.NotFoundError

	session, err := controller.SessionUsecase.CreateSession(ctx, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}
		if errors.As(err, &notFoundErr) {
			return util.SendErrorResponseNotFound(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponse(ctx, "Session created successfully", fiber.Map{
		"id": session.Id,
	})
}

func (controller SessionController) Update(ctx *fiber.Ctx) error {
	var payload model.SessionUpdateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError
	var notFoundErr *model.NotFoundError
	var cascadeErr *model.CascadeError

	response, err := controller.SessionUsecase.UpdateSession(ctx, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}
		if errors.As(err, &notFoundErr) {
			return util.SendErrorResponseNotFound(ctx, err)
		}
		if errors.As(err, &cascadeErr) {
			return util.SendErrorResponseCascade(ctx, controller.Log, cascadeErr)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponse(ctx, "Session updated successfully", fiber.Map{
		"session_updated":     response.SessionUpdated,
		"book_updated":        response.BookUpdated,
		"discussions_updated": response.DiscussionsUpdated,
	})
}

// Delete reports success even when the owned book could not be removed; the
// message tells the caller which case it was.
func (controller SessionController) Delete(ctx *fiber.Ctx) error {
	sessionId := ctx.Query("id")

	var validationErr *model.ValidationError
	var notFoundErr *model.NotFoundError
	var cascadeErr *model.CascadeError

	message, err := controller.SessionUsecase.DeleteSession(ctx, sessionId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}
		if errors.As(err, &notFoundErr) {
			return util.SendErrorResponseNotFound(ctx, err)
		}
		if errors.As(err, &cascadeErr) {
			return util.SendErrorResponseCascade(ctx, controller.Log, cascadeErr)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponse(ctx, message, nil)
}

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

type ServerController struct {
	ServerUsecase *usecase.ServerUsecase
	Log           *zap.Logger
	Config        *koanf.Koanf
}

func NewServerController(serverUsecase *usecase.ServerUsecase, zap *zap.Logger, koanf *koanf.Koanf) *ServerController {
	return &ServerController{
		ServerUsecase: serverUsecase,
		Log:           zap,
		Config:        koanf,
	}
}

// Get lists all servers when no id is given, otherwise returns the server
// with its club summaries.
func (controller ServerController) Get(ctx *fiber.Ctx) error {
	serverId := ctx.Query("id")

	if serverId == "" {
		response, err := controller.ServerUsecase.ListServers(ctx)
		if err != nil {
			return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
		}

		return util.SendSuccessResponseWithData(ctx, response)
	}

	var notFoundErr *model.NotFoundError

	response, err := controller.ServerUsecase.GetServer(ctx, serverId)
	if err != nil {
		if errors.As(err, &notFoundErr) {
			return util.SendErrorResponseNotFound(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller ServerController) Create(ctx *fiber.Ctx) error {
	var payload model.ServerCreateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError

	server, err := controller.ServerUsecase.CreateServer(ctx, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponse(ctx, "Server created successfully", fiber.Map{
		"id": server.Id,
	})
}

func (controller ServerController) Update(ctx *fiber.Ctx) error {
	var payload model.ServerUpdateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError
	var notFoundErr *model.NotFoundError

	err = controller.ServerUsecase.UpdateServer(ctx, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}
		if errors.As(err, &notFoundErr) {
			return util.SendErrorResponseNotFound(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponse(ctx, "Server updated successfully", nil)
}

// Delete refuses a server that still owns clubs; the response carries the
// blocking club count.
func (controller ServerController) Delete(ctx *fiber.Ctx) error {
	serverId := ctx.Query("id")

	var validationErr *model.ValidationError
	var notFoundErr *model.NotFoundError
	var hasClubsErr *model.ServerHasClubsError

	err := controller.ServerUsecase.DeleteServer(ctx, serverId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}
		if errors.As(err, &notFoundErr) {
			return util.SendErrorResponseNotFound(ctx, err)
		}
		if errors.As(err, &hasClubsErr) {
			return util.SendErrorResponseServerHasClubs(ctx, hasClubsErr)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponse(ctx, "Server deleted successfully", nil)
}

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

type ClubController struct {
	ClubUsecase *usecase.ClubUsecase
	Log         *zap.Logger
	Config      *koanf.Koanf
}

func NewClubController(clubUsecase *usecase.ClubUsecase, zap *zap.Logger, koanf *koanf.Koanf) *ClubController {
	return &ClubController{
		ClubUsecase: clubUsecase,
		Log:         zap,
		Config:      koanf,
	}
}

// Get resolves the club by id, or by discord_channel plus server_id when no
// id is given.
func (controller ClubController) Get(ctx *fiber.Ctx) error {
	var validationErr *model.ValidationError
	var notFoundErr *model.NotFoundError

	response, err := controller.ClubUsecase.GetClub(ctx)
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

func (controller ClubController) Create(ctx *fiber.Ctx) error {
	var payload model.ClubCreateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError
	var notFoundErr *model.NotFoundError

	club, err := controller.ClubUsecase.CreateClub(ctx, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}
		if errors.As(err, &notFoundErr) {
			return util.SendErrorResponseNotFound(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponse(ctx, "Club created successfully", fiber.Map{
		"id": club.Id,
	})
}

func (controller ClubController) Update(ctx *fiber.Ctx) error {
	var payload model.ClubUpdateRequest
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

	response, err := controller.ClubUsecase.UpdateClub(ctx, payload)
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

	return util.SendSuccessResponse(ctx, "Club updated successfully", fiber.Map{
		"club_updated":       response.ClubUpdated,
		"shame_list_updated": response.ShameListUpdated,
	})
}

func (controller ClubController) Delete(ctx *fiber.Ctx) error {
	clubId := ctx.Query("id")

	var serverId *string
	if raw := ctx.Query("server_id"); raw != "" {
		serverId = &raw
	}

	var validationErr *model.ValidationError
	var notFoundErr *model.NotFoundError
	var cascadeErr *model.CascadeError

	err := controller.ClubUsecase.DeleteClub(ctx, clubId, serverId)
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

	return util.SendSuccessResponse(ctx, "Club deleted successfully", nil)
}

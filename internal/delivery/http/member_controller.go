package http

import (
	"errors"
	"strconv"

	"github.com/shelfclub/bookclub-backend/internal/constant"
	"github.com/shelfclub/bookclub-backend/internal/model"
	"github.com/shelfclub/bookclub-backend/internal/usecase"
	"github.com/shelfclub/bookclub-backend/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type MemberController struct {
	MemberUsecase *usecase.MemberUsecase
	Log           *zap.Logger
	Config        *koanf.Koanf
}

func NewMemberController(memberUsecase *usecase.MemberUsecase, zap *zap.Logger, koanf *koanf.Koanf) *MemberController {
	return &MemberController{
		MemberUsecase: memberUsecase,
		Log:           zap,
		Config:        koanf,
	}
}

// Get resolves the member by id, or by user_id when no id is given.
func (controller MemberController) Get(ctx *fiber.Ctx) error {
	var validationErr *model.ValidationError
	var notFoundErr *model.NotFoundError

	response, err := controller.MemberUsecase.GetMember(ctx)
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

func (controller MemberController) Create(ctx *fiber.Ctx) error {
	var payload model.MemberCreateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError

	member, err := controller.MemberUsecase.CreateMember(ctx, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponse(ctx, "Member created successfully", fiber.Map{
		"id": member.Id,
	})
}

func (controller MemberController) Update(ctx *fiber.Ctx) error {
	var payload model.MemberUpdateRequest
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

	response, err := controller.MemberUsecase.UpdateMember(ctx, payload)
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

	return util.SendSuccessResponse(ctx, "Member updated successfully", fiber.Map{
		"member_updated": response.MemberUpdated,
		"clubs_updated":  response.ClubsUpdated,
	})
}

func (controller MemberController) Delete(ctx *fiber.Ctx) error {
	rawId := ctx.Query("id")

	memberId, err := strconv.Atoi(rawId)
	if err != nil || memberId == 0 {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Id must be an integer",
			Param:   "id",
		})
	}

	var notFoundErr *model.NotFoundError
	var cascadeErr *model.CascadeError

	err = controller.MemberUsecase.DeleteMember(ctx, memberId)
	if err != nil {
		if errors.As(err, &notFoundErr) {
			return util.SendErrorResponseNotFound(ctx, err)
		}
		if errors.As(err, &cascadeErr) {
			return util.SendErrorResponseCascade(ctx, controller.Log, cascadeErr)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponse(ctx, "Member deleted successfully", nil)
}

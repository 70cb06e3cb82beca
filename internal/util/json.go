package util

import (
	"github.com/shelfclub/bookclub-backend/internal/constant"
	"github.com/shelfclub/bookclub-backend/internal/middleware"
	"github.com/shelfclub/bookclub-backend/internal/model"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func ReadRequestBody(ctx *fiber.Ctx, result interface{}) error {
	err := ctx.BodyParser(&result)
	if err != nil {
		return err
	}
	return nil
}

// SendSuccessResponseWithData writes the bare resource, used by GET flows.
func SendSuccessResponseWithData(ctx *fiber.Ctx, data interface{}) error {
	return ctx.Status(fiber.StatusOK).JSON(data)
}

// SendSuccessResponse writes the {success:true, message, ...payload} envelope.
func SendSuccessResponse(ctx *fiber.Ctx, message string, payload fiber.Map) error {
	body := fiber.Map{
		"success": true,
		"message": message,
	}
	for k, v := range payload {
		body[k] = v
	}

	return ctx.Status(fiber.StatusOK).JSON(body)
}

func SendErrorResponse(ctx *fiber.Ctx, err error) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func SendErrorResponseNotFound(ctx *fiber.Ctx, err error) error {
	return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func SendErrorResponseMethodNotAllowed(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
		"success": false,
		"error":   "method not allowed",
	})
}

// SendErrorResponseCascade reports a failed cascade step. Rows deleted or
// updated by earlier steps stay committed, surfaced via partial_success.
func SendErrorResponseCascade(ctx *fiber.Ctx, log *zap.Logger, cascadeErr *model.CascadeError) error {
	middleware.GetLoggerFromContext(ctx, log).Error("cascade step failed",
		zap.String("step", cascadeErr.Step),
		zap.Bool("partial_success", cascadeErr.PartialSuccess),
		zap.Error(cascadeErr.Err),
	)

	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success":         false,
		"error":           cascadeErr.Error(),
		"partial_success": cascadeErr.PartialSuccess,
	})
}

func SendErrorResponseServerHasClubs(ctx *fiber.Ctx, hasClubsErr *model.ServerHasClubsError) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success":     false,
		"error":       hasClubsErr.Error(),
		"clubs_count": hasClubsErr.ClubsCount,
	})
}

func SendErrorResponseInternalServer(ctx *fiber.Ctx, log *zap.Logger, err error) error {
	middleware.GetLoggerFromContext(ctx, log).Error("internal server error occured", zap.Error(err))
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   constant.ERR_INTERNAL_SERVER_ERROR_MESSAGE,
	})
}

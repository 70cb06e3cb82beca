package usecase

import (
	"github.com/shelfclub/bookclub-backend/internal/constant"
	"github.com/shelfclub/bookclub-backend/internal/model"
	"github.com/shelfclub/bookclub-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type ServerUsecase struct {
	ServerRepository *repository.ServerRepository
	DB               *pgxpool.Pool
	Log              *zap.Logger
	Config           *koanf.Koanf
}

func NewServerUsecase(serverRepository *repository.ServerRepository, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *ServerUsecase {
	return &ServerUsecase{
		ServerRepository: serverRepository,
		DB:               db,
		Log:              zap,
		Config:           koanf,
	}
}

func (usecase *ServerUsecase) ListServers(ctx *fiber.Ctx) ([]model.Server, error) {
	return usecase.ServerRepository.ListServers(ctx.Context())
}

func (usecase *ServerUsecase) GetServer(ctx *fiber.Ctx, serverId string) (model.ServerDetailResponse, error) {
	response := model.ServerDetailResponse{}
	ctxContext := ctx.Context()

	server, err := usecase.ServerRepository.GetServer(ctxContext, serverId)
	if err != nil {
		return response, err
	}

	if server.Id == "" {
		return response, &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Server not found",
			Param:   "id",
		}
	}

	clubs, err := usecase.ServerRepository.ListClubSummaries(ctxContext, serverId)
	if err != nil {
		return response, err
	}

	response.Id = server.Id
	response.Name = server.Name
	response.Clubs = clubs

	return response, nil
}

func (usecase *ServerUsecase) CreateServer(ctx *fiber.Ctx, payload model.ServerCreateRequest) (model.Server, error) {
	server := model.Server{}

	if payload.Name == "" {
		return server, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Name is required to not be empty",
			Param:   "name",
		}
	}

	serverId := uuid.NewString()
	if payload.Id != nil && *payload.Id != "" {
		serverId = *payload.Id
	}

	ctxContext := ctx.Context()

	exists, err := usecase.ServerRepository.CheckServer(ctxContext, serverId)
	if err != nil {
		return server, err
	}

	if exists == 1 {
		return server, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Server already exists",
			Param:   "id",
		}
	}

	server.Id = serverId
	server.Name = payload.Name

	err = usecase.ServerRepository.CreateServer(ctxContext, server)
	if err != nil {
		return server, err
	}

	return server, nil
}

func (usecase *ServerUsecase) UpdateServer(ctx *fiber.Ctx, payload model.ServerUpdateRequest) error {
	if payload.Id == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Id is required to not be empty",
			Param:   "id",
		}
	}

	if payload.Name == nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "No fields to update",
			Param:   "name",
		}
	}

	ctxContext := ctx.Context()

	exists, err := usecase.ServerRepository.CheckServer(ctxContext, payload.Id)
	if err != nil {
		return err
	}

	if exists != 1 {
		return &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Server not found",
			Param:   "id",
		}
	}

	return usecase.ServerRepository.UpdateServerName(ctxContext, payload.Id, *payload.Name)
}

// DeleteServer refuses to delete a server that still owns clubs; the caller
// gets the count back so it can surface what is blocking the deletion.
func (usecase *ServerUsecase) DeleteServer(ctx *fiber.Ctx, serverId string) error {
	if serverId == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Id is required to not be empty",
			Param:   "id",
		}
	}

	ctxContext := ctx.Context()

	exists, err := usecase.ServerRepository.CheckServer(ctxContext, serverId)
	if err != nil {
		return err
	}

	if exists != 1 {
		return &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Server not found",
			Param:   "id",
		}
	}

	clubsCount, err := usecase.ServerRepository.CountClubs(ctxContext, serverId)
	if err != nil {
		return err
	}

	if clubsCount > 0 {
		return &model.ServerHasClubsError{
			ClubsCount: clubsCount,
		}
	}

	return usecase.ServerRepository.DeleteServer(ctxContext, serverId)
}

package config

import (
	http "github.com/shelfclub/bookclub-backend/internal/delivery/http"
	"github.com/shelfclub/bookclub-backend/internal/delivery/http/route"
	"github.com/shelfclub/bookclub-backend/internal/repository"
	"github.com/shelfclub/bookclub-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Router  *fiber.App
	DB      *pgxpool.Pool
	DBCache *redis.Client
	Log     *zap.Logger
	Config  *koanf.Koanf
}

func Server(config *ServerConfig) {
	serverRepository := repository.NewServerRepository(config.Log, config.DB, config.DBCache)
	clubRepository := repository.NewClubRepository(config.Log, config.DB, config.DBCache)
	memberRepository := repository.NewMemberRepository(config.Log, config.DB, config.DBCache)
	sessionRepository := repository.NewSessionRepository(config.Log, config.DB, config.DBCache)

	serverUsecase := usecase.NewServerUsecase(serverRepository, config.DB, config.Log, config.Config)
	clubUsecase := usecase.NewClubUsecase(clubRepository, memberRepository, sessionRepository, serverRepository, config.DB, config.Log, config.Config)
	memberUsecase := usecase.NewMemberUsecase(memberRepository, clubRepository, config.DB, config.Log, config.Config)
	sessionUsecase := usecase.NewSessionUsecase(sessionRepository, clubRepository, config.DB, config.Log, config.Config)

	serverController := http.NewServerController(serverUsecase, config.Log, config.Config)
	clubController := http.NewClubController(clubUsecase, config.Log, config.Config)
	memberController := http.NewMemberController(memberUsecase, config.Log, config.Config)
	sessionController := http.NewSessionController(sessionUsecase, config.Log, config.Config)

	routeConfig := route.RouteConfig{
		App:               config.Router,
		ServerController:  serverController,
		ClubController:    clubController,
		MemberController:  memberController,
		SessionController: sessionController,
	}

	routeConfig.SetupRoute()
}

package setup

import (
	"context"
	"testing"

	"github.com/shelfclub/bookclub-backend/internal/delivery/http"
	"github.com/shelfclub/bookclub-backend/internal/delivery/http/route"
	"github.com/shelfclub/bookclub-backend/internal/repository"
	"github.com/shelfclub/bookclub-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupTestApp(t *testing.T, pgURL, redisURL string) (*fiber.App, *pgxpool.Pool, *redis.Client) {
	t.Log("Setting up test application...")

	ctx := context.Background()

	// 1. Create test config with test infrastructure values
	testConfig := koanf.New(".")
	_ = testConfig.Set("POSTGRES_URL", pgURL)
	_ = testConfig.Set("REDIS_URL", redisURL)

	// 2. Connect to PostgreSQL
	t.Log("Connecting to test PostgreSQL...")
	dbPool, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		t.Fatalf("failed to connect to test db: %v", err)
	}

	// 3. Connect to Redis
	t.Log("Connecting to test Redis...")
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
		DB:   0, // Use default DB for testing
	})

	// Test redis connection
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Fatalf("failed to connect to test redis: %v", err)
	}

	// 4. Setup logger (use development config for test)
	zapLogger := zap.NewExample()
	defer func() {
		_ = zapLogger.Sync()
	}()

	// 5. Setup repositories
	serverRepository := repository.NewServerRepository(zapLogger, dbPool, redisClient)
	clubRepository := repository.NewClubRepository(zapLogger, dbPool, redisClient)
	memberRepository := repository.NewMemberRepository(zapLogger, dbPool, redisClient)
	sessionRepository := repository.NewSessionRepository(zapLogger, dbPool, redisClient)

	// 6. Setup usecases
	serverUsecase := usecase.NewServerUsecase(serverRepository, dbPool, zapLogger, testConfig)
	clubUsecase := usecase.NewClubUsecase(clubRepository, memberRepository, sessionRepository, serverRepository, dbPool, zapLogger, testConfig)
	memberUsecase := usecase.NewMemberUsecase(memberRepository, clubRepository, dbPool, zapLogger, testConfig)
	sessionUsecase := usecase.NewSessionUsecase(sessionRepository, clubRepository, dbPool, zapLogger, testConfig)

	// 7. Setup controllers
	serverController := http.NewServerController(serverUsecase, zapLogger, testConfig)
	clubController := http.NewClubController(clubUsecase, zapLogger, testConfig)
	memberController := http.NewMemberController(memberUsecase, zapLogger, testConfig)
	sessionController := http.NewSessionController(sessionUsecase, zapLogger, testConfig)

	// 8. Setup Fiber app
	fiberApp := fiber.New(fiber.Config{
		AppName:               "Bookclub Test",
		DisableStartupMessage: true,
		DisableKeepalive:      true, // Important for tests
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		},
	})

	// 9. Setup routes
	routeConfig := route.RouteConfig{
		App:               fiberApp,
		ServerController:  serverController,
		ClubController:    clubController,
		MemberController:  memberController,
		SessionController: sessionController,
	}

	routeConfig.SetupRoute()

	t.Log("Test application setup completed successfully")

	return fiberApp, dbPool, redisClient
}

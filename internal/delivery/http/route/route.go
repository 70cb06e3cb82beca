package route

import (
	"github.com/shelfclub/bookclub-backend/internal/delivery/http"
	"github.com/shelfclub/bookclub-backend/internal/util"

	"github.com/gofiber/fiber/v2"
)

type RouteConfig struct {
	App               *fiber.App
	ServerController  *http.ServerController
	ClubController    *http.ClubController
	MemberController  *http.MemberController
	SessionController *http.SessionController
}

func (c *RouteConfig) SetupRoute() {
	api := c.App.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api.Get("/server", c.ServerController.Get)
	api.Post("/server", c.ServerController.Create)
	api.Put("/server", c.ServerController.Update)
	api.Delete("/server", c.ServerController.Delete)
	api.All("/server", methodNotAllowed)

	api.Get("/club", c.ClubController.Get)
	api.Post("/club", c.ClubController.Create)
	api.Put("/club", c.ClubController.Update)
	api.Delete("/club", c.ClubController.Delete)
	api.All("/club", methodNotAllowed)

	api.Get("/member", c.MemberController.Get)
	api.Post("/member", c.MemberController.Create)
	api.Put("/member", c.MemberController.Update)
	api.Delete("/member", c.MemberController.Delete)
	api.All("/member", methodNotAllowed)

	api.Get("/session", c.SessionController.Get)
	api.Post("/session", c.SessionController.Create)
	api.Put("/session", c.SessionController.Update)
	api.Delete("/session", c.SessionController.Delete)
	api.All("/session", methodNotAllowed)
}

// methodNotAllowed answers the verbs not registered above. OPTIONS is let
// through for the CORS preflight.
func methodNotAllowed(ctx *fiber.Ctx) error {
	if ctx.Method() == fiber.MethodOptions {
		return ctx.SendStatus(fiber.StatusOK)
	}

	return util.SendErrorResponseMethodNotAllowed(ctx)
}

package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/pod-grading-api/internal/config"
	"github.com/noah-isme/pod-grading-api/internal/handler"
	"github.com/noah-isme/pod-grading-api/internal/middleware"
	"github.com/noah-isme/pod-grading-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StateHandler      *handler.StateHandler
	StudentHandler    *handler.StudentHandler
	PodHandler        *handler.PodHandler
	AssessmentHandler *handler.AssessmentHandler
	GradeHandler      *handler.GradeHandler
	TransferHandler   *handler.TransferHandler
	SyncHandler       *handler.SyncHandler
	ActivityHandler   *handler.ActivityHandler
	AdminHandler      *handler.AdminHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	guards := Guards(cfg)
	if cfg.AuthEnabled() {
		api.Use(middleware.JWTOptional(cfg.JWTSecret))
	}

	if deps.StateHandler != nil {
		deps.StateHandler.Register(api, guards)
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students"), guards)
	}
	if deps.PodHandler != nil {
		deps.PodHandler.Register(api.Group("/pods"), guards)
	}
	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.Register(api, guards)
	}
	if deps.GradeHandler != nil {
		deps.GradeHandler.Register(api)
	}
	if deps.TransferHandler != nil {
		deps.TransferHandler.Register(api, guards)
	}
	if deps.SyncHandler != nil {
		deps.SyncHandler.Register(api.Group("/sync"))
	}
	if deps.ActivityHandler != nil {
		activity := api.Group("/activity")
		if cfg.AuthEnabled() {
			activity.Use(middleware.RequireRole("teacher", "admin"))
		}
		deps.ActivityHandler.Register(activity)
	}
	if deps.AdminHandler != nil {
		deps.AdminHandler.Register(api.Group("/admin"), guards)
	}
}

// Guards builds the route guards for cfg. Without a JWT secret every route is
// open and only the rate limiter applies.
func Guards(cfg config.Config) handler.Guards {
	guards := handler.Guards{
		Throttle: middleware.RateLimit("writes", 30, time.Minute),
	}
	if !cfg.AuthEnabled() {
		return guards
	}

	guards.Write = func(h fiber.Handler) fiber.Handler {
		return middleware.WithAuth(h, middleware.AuthOptions{Role: middleware.AuthRoleAny, RequireUser: true})
	}
	guards.Teacher = func(h fiber.Handler) fiber.Handler {
		return middleware.WithAuth(h, middleware.AuthOptions{Role: middleware.AuthRoleTeacher})
	}
	return guards
}

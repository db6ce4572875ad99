package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/database"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/ws"
)

// Base64 grows payloads by a third; the extra megabyte covers the rest of
// the JSON or multipart envelope.
const bodyOverhead = 1 << 20

type Dependencies struct {
	Employees  handler.EmployeeService
	Visitors   handler.VisitorService
	Attendance handler.AttendanceService
	// DB is pinged by /ready; nil skips the check
	DB           database.Pinger
	APIKey       string
	MaxImageSize int64
	// Limiter caps face submissions per client; nil disables it
	Limiter        middleware.Limiter
	RateLimitPerIP int
	// Hub streams events to dashboards on /v1/events; nil disables it
	Hub *ws.Hub
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	config := fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Frontdesk API",
	}
	if deps != nil && deps.MaxImageSize > 0 {
		config.BodyLimit = int(deps.MaxImageSize*4/3) + bodyOverhead
	}

	return &Router{
		app:    fiber.New(config),
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Logger sits outside Recover so panics are logged with their final status
	r.app.Use(requestid.New())
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.RequestContext())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	var db database.Pinger
	if r.deps != nil {
		db = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(db)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	v1 := r.app.Group("/v1", middleware.Auth(r.deps.APIKey))
	limit := middleware.RateLimit(r.deps.Limiter, r.deps.RateLimitPerIP, r.logger)

	employees := handler.NewEmployeeHandler(r.deps.Employees, r.logger)
	v1.Post("/employees", limit, employees.Register)
	v1.Get("/employees", employees.List)
	v1.Get("/employees/:id", employees.Get)
	v1.Put("/employees/:id", employees.Update)
	v1.Delete("/employees/:id", employees.Delete)

	attendance := handler.NewAttendanceHandler(r.deps.Attendance, r.logger)
	v1.Post("/attendance", limit, attendance.Mark)
	v1.Get("/attendance", attendance.List)

	visitors := handler.NewVisitorHandler(r.deps.Visitors, r.logger)
	v1.Post("/visitors", limit, visitors.Create)
	v1.Get("/visitors", visitors.List)
	v1.Get("/visitors/:id", visitors.Get)
	v1.Put("/visitors/:id", visitors.Update)
	v1.Put("/visitors/:id/decision", visitors.Decide)
	v1.Delete("/visitors/:id", visitors.Delete)

	if r.deps.Hub != nil {
		v1.Get("/events", ws.UpgradeMiddleware(), ws.Handler(r.deps.Hub))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires
func (r *Router) Shutdown(ctx context.Context) error {
	return r.app.ShutdownWithContext(ctx)
}

package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/osas-office/violation-portal/internal/api/handler"
	"github.com/osas-office/violation-portal/internal/api/middleware"
	"github.com/osas-office/violation-portal/internal/core/domain"
	"github.com/osas-office/violation-portal/internal/core/ports"
	"github.com/osas-office/violation-portal/internal/core/service"
	mongodb "github.com/osas-office/violation-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/osas-office/violation-portal/internal/infrastructure/db/redis"
	"github.com/osas-office/violation-portal/internal/session"
	"github.com/osas-office/violation-portal/internal/view"
)

// Options carries everything the router needs beyond its datastores.
type Options struct {
	ViewsRoot    string
	AssetsRoot   string
	SessionDir   string
	CookieSecret string
	TokenSecret  string
	Audit        ports.AuditRecorder
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("osas"))

	store := session.NewStore([]byte(opts.CookieSecret), opts.SessionDir, opts.Log)
	e.Use(store.Middleware())

	// --- Dependencies ---
	users := mongodb.NewUserRepository(db)
	authService := service.NewAuthService(users, opts.TokenSecret, 0)
	throttle := redisdb.NewLoginThrottle(rdb)

	renderer := view.NewRenderer(opts.ViewsRoot, opts.Log)
	loader := view.NewLoader(opts.ViewsRoot, opts.Log)
	gate := middleware.NewAuthGate(users, authService, opts.Audit, opts.Log)

	authHandler := handler.NewAuthHandler(authService, throttle, opts.Audit, renderer, opts.Log)
	pageHandler := handler.NewPageHandler(renderer, opts.Log)
	viewHandler := handler.NewViewHandler(loader)

	// --- Pages ---
	e.GET("/", pageHandler.Home)
	e.GET("/login", authHandler.LoginPage)
	e.POST("/login", authHandler.Login)
	e.GET("/logout", authHandler.Logout)

	requireAdmin := gate.RequireRole(domain.RoleAdmin)
	requireUser := gate.RequireRole(domain.RoleUser)

	e.GET("/admin/dashboard", pageHandler.AdminDashboard, requireAdmin)
	e.GET("/user/dashboard", pageHandler.UserDashboard, requireUser)

	// The loader serves fragments for both dashboards; role scoping is
	// enforced at the page entry points, so either role may fetch.
	e.GET("/load", viewHandler.Load, gate.RequireAny())

	// --- Static assets ---
	e.Static("/app/assets", opts.AssetsRoot)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness - is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness - are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

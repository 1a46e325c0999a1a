// Package server assembles the Fiber application: middleware, the /api
// routes, the live-update websocket, /metrics and the static front-end.
package server

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mchic/setlist/internal/config"
	"github.com/mchic/setlist/internal/handler"
	"github.com/mchic/setlist/internal/middleware"
	"github.com/mchic/setlist/internal/service"
	ws "github.com/mchic/setlist/internal/websocket"
	"github.com/mchic/setlist/pkg/response"
)

// Deps holds what the routes need. Hub and Redis are optional.
type Deps struct {
	Config *config.Config
	Songs  *service.SongService
	Hub    *ws.Hub
	Redis  *redis.Client
	Logger *log.Logger
}

// New builds the Fiber app with every route registered.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler(d.Logger),
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	basicAuth := middleware.NewBasicAuth(d.Config.Auth)
	rateLimiter := middleware.NewRateLimiter(d.Redis, d.Logger)
	authHandler := handler.NewAuthHandler(basicAuth, validator.New())
	songHandler := handler.NewSongHandler(d.Songs, d.Logger)

	api := app.Group("/api")

	// Ungated routes must be registered before the auth gate
	api.Post("/login", rateLimiter.LoginLimit(d.Config.RateLimit.LoginPerMin), authHandler.Login)
	api.Get("/health", handler.Health(d.Config.Storage.Driver))

	api.Use(basicAuth.Authenticate())

	api.Get("/songs", songHandler.List)
	api.Post("/songs", songHandler.Create)
	api.Put("/songs/:id", songHandler.Update)
	api.Delete("/songs/:id", songHandler.Delete)
	if d.Songs.CanReset() {
		api.Post("/reset", songHandler.Reset)
	}

	if d.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/songs", basicAuth.AuthenticateQuery("token"), websocket.New(d.Hub.HandleConnection))
	}

	// Static front-end, falling back to the single-page entry document
	publicDir := d.Config.Server.PublicDir
	if publicDir != "" {
		app.Static("/", publicDir)
		index := filepath.Join(publicDir, "index.html")
		// Use, not Get, so unknown non-GET routes stay 404 rather than 405
		app.Use(func(c *fiber.Ctx) error {
			if c.Method() != fiber.MethodGet || strings.HasPrefix(c.Path(), "/api/") {
				return c.Next()
			}
			return c.SendFile(index)
		})
	}

	return app
}

func errorHandler(l *log.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		switch {
		case code == fiber.StatusNotFound:
			return response.Error(c, code, response.CodeNotFound, response.MessageRouteNotFound)
		case code >= fiber.StatusInternalServerError:
			l.Error("unhandled error", "method", c.Method(), "path", c.Path(), "err", err)
			return response.ServiceError(c)
		default:
			return response.BadRequest(c, code)
		}
	}
}

// Package server is the notable HTTP backend: accounts, notes and the AI
// assist routes the editor calls in remote mode.
package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/csheth/notable/internal/apperr"
	"github.com/csheth/notable/internal/assist"
	"github.com/csheth/notable/internal/auth"
	"github.com/csheth/notable/internal/notes"
)

const bodyLimit = 10 * 1024 * 1024

// Deps are the server's collaborators.
type Deps struct {
	Notes  *notes.SQLStore
	Users  *auth.Users
	Issuer *auth.Issuer
	Assist assist.Service
	Logger *zap.Logger
	// CORSOrigins is a comma separated allow list.
	CORSOrigins string
}

// Server wraps the fiber app.
type Server struct {
	app    *fiber.App
	deps   Deps
	logger *zap.Logger
}

// New builds the app and registers every route.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	logger := deps.Logger.Named("server")
	app := fiber.New(fiber.Config{
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	origins := strings.TrimSpace(deps.CORSOrigins)
	if origins == "" {
		origins = "http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type",
		MaxAge:        3600,
	}))
	app.Use(requestLogger(logger))

	s := &Server{app: app, deps: deps, logger: logger}
	s.registerRoutes()
	return s
}

// App returns the fiber app, used by tests through app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}

func (s *Server) registerRoutes() {
	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to Notable API"})
	})

	api := s.app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", s.register)
	authGroup.Post("/login", s.login)
	authGroup.Post("/logout", jwtMiddleware(s.deps.Issuer), s.logout)

	protected := api.Group("", jwtMiddleware(s.deps.Issuer))

	notesGroup := protected.Group("/notes")
	notesGroup.Get("", s.listNotes)
	notesGroup.Post("", s.createNote)
	notesGroup.Get("/:id", s.getNote)
	notesGroup.Patch("/:id", s.updateNote)
	notesGroup.Delete("/:id", s.deleteNote)

	protected.Post("/lecture/edit", s.editLecture)
	protected.Post("/lecture/process", s.processLecture)
	protected.Post("/diagram/generate", s.generateDiagram)
	protected.Post("/chat", s.chat)
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := apperr.StatusOf(err)
		message := apperr.MessageOf(err)

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err),
			)
		}
		return c.Status(status).JSON(fiber.Map{"detail": message})
	}
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = apperr.StatusOf(err)
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}
		logger.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}

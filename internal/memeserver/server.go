package memeserver

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"memefeed/internal/config"
	"memefeed/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Server is the local meme API used for development and end-to-end tests.
type Server struct {
	cfg   *config.Config
	store *Store
}

// NewServer builds a Server on top of an opened store.
func NewServer(cfg *config.Config, store *Store) *Server {
	return &Server{cfg: cfg, store: store}
}

// App assembles the fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "memefeedd",
		ErrorHandler: s.errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(s.requestLogger)

	app.Post("/authentication/login", s.handleLogin)

	if dir := s.uploadsDir(); dir != "" {
		app.Static("/uploads", dir)
	}

	authed := app.Group("/", s.authRequired)
	authed.Get("/users/:id", s.handleGetUser)
	authed.Get("/memes", s.handleListMemes)
	authed.Post("/memes", s.handleCreateMeme)
	authed.Get("/memes/:memeId/comments", s.handleListComments)
	authed.Post("/memes/:memeId/comments", s.handleCreateComment)

	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(errorResponse{Error: fiberErr.Message})
	}
	return respondError(c, err)
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	err := c.Next()
	observability.GlobalLogger.Info("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"request_id", c.Locals("requestid"),
	)
	return err
}

// uploadsDir returns the directory meme pictures are written to, creating it
// if needed. Empty when no storage dir is configured (in-memory tests).
func (s *Server) uploadsDir() string {
	if s.cfg.StorageDir == "" {
		return ""
	}
	dir := filepath.Join(s.cfg.StorageDir, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return dir
}

// savePicture persists an uploaded picture and returns the URL it will be
// served from.
func (s *Server) savePicture(c *fiber.Ctx, fh *multipart.FileHeader, memeID string) (string, error) {
	name := memeID + filepath.Ext(fh.Filename)
	dir := s.uploadsDir()
	if dir == "" {
		// Nothing persisted without a storage dir; still give the meme a URL.
		return "/uploads/" + name, nil
	}
	if err := c.SaveFile(fh, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("saving picture: %w", err)
	}
	return "/uploads/" + name, nil
}

// Package api exposes the family calendar over a small JSON HTTP API.
package api

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/planner"
	"github.com/hray3182/CoParent/internal/repository"
)

const requestTimeout = 5 * time.Second

// Store is the family and children storage the API needs besides the planner.
type Store interface {
	GetFamily(ctx context.Context, familyID int64) (*models.Family, error)
	ListParents(ctx context.Context, familyID int64) ([]models.Parent, error)
	repository.ChildStore
}

type Server struct {
	app      *fiber.App
	planner  *planner.Service
	store    Store
	validate *validator.Validate
	now      func() time.Time
}

func New(svc *planner.Service, store Store) *Server {
	s := &Server{
		planner:  svc,
		store:    store,
		validate: validator.New(),
		now:      time.Now,
	}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(requestID)
	s.app.Use(logger.New(logger.Config{
		Format: "[HTTP] ${locals:reqid} ${method} ${path} status=${status} dur=${latency}\n",
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	f := s.app.Group("/api/families/:id")
	f.Get("/recap", s.getRecap)
	f.Post("/custody-plans/preview", s.previewPlan)
	f.Post("/custody-plans", s.createPlan)
	f.Get("/events", s.listEvents)
	f.Post("/events", s.createEvent)
	f.Get("/events/:eventID", s.getEvent)
	f.Put("/events/:eventID", s.updateEvent)
	f.Delete("/events/:eventID", s.deleteEvent)
	f.Get("/calendar.ics", s.exportCalendar)
	f.Get("/children", s.listChildren)
	f.Post("/children", s.createChild)
	f.Get("/children/:childID", s.getChild)
	f.Put("/children/:childID", s.updateChild)
	f.Delete("/children/:childID", s.deleteChild)
}

// requestID tags every request and bounds the time spent on it.
func requestID(c *fiber.Ctx) error {
	id := c.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("X-Request-ID", id)
	c.Locals("reqid", id)

	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()
	c.SetUserContext(ctx)
	return c.Next()
}

// App returns the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	log.Printf("HTTP API listening on %s", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

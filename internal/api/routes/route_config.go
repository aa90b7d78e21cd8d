package routes

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Tray-Validation-Backend/internal/api/handlers"
	"Tray-Validation-Backend/internal/middleware"
	"Tray-Validation-Backend/pkg/jwt"
)

type Config struct {
	App               *fiber.App
	ReviewerHandler   handlers.ReviewerHandler
	WorkItemHandler   handlers.WorkItemHandler
	AnnotationHandler handlers.AnnotationHandler
	ValidationHandler handlers.ValidationHandler
	ImageHandler      handlers.ImageHandler
	IngestHandler     handlers.IngestHandler
	Middleware        middleware.Middleware
	JWTService        jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Reviewers()
	c.WorkItems()
	c.Annotations()
	c.Validation()
	c.Images()
	c.Ingest()
	c.GuestRoute()
}

func (c *Config) Reviewers() {
	reviewers := c.App.Group("/api/v1/reviewers")
	{
		reviewers.Post("/register", c.ReviewerHandler.Register)
		reviewers.Post("/login", c.ReviewerHandler.Login)
		reviewers.Get("/me", c.Middleware.AuthMiddleware(c.JWTService), c.ReviewerHandler.Me)
	}
}

func (c *Config) WorkItems() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)

	items := c.App.Group("/api/v1/items", auth)
	{
		items.Post("", c.WorkItemHandler.CreateWorkItem)
		items.Patch("/:id", c.WorkItemHandler.UpdateWorkItem)
		items.Delete("/:id", c.WorkItemHandler.DeleteWorkItem)
	}
	c.App.Get("/api/v1/work-logs/:workLogId/items", auth, c.WorkItemHandler.GetWorkItems)
}

func (c *Config) Annotations() {
	annotations := c.App.Group("/api/v1/annotations", c.Middleware.AuthMiddleware(c.JWTService))
	{
		annotations.Post("", c.AnnotationHandler.CreateAnnotation)
		annotations.Patch("/:id", c.AnnotationHandler.UpdateAnnotation)
		annotations.Delete("/:id", c.AnnotationHandler.DeleteAnnotation)
	}
}

func (c *Config) Validation() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)

	c.App.Get("/api/v1/validation-session/:workLogId", auth, c.ValidationHandler.GetValidationSession)

	validation := c.App.Group("/api/v1/validation", auth)
	{
		validation.Post("/claim", c.ValidationHandler.Claim)
		validation.Post("/complete", c.ValidationHandler.Complete)
		validation.Post("/abandon", c.ValidationHandler.Abandon)
		validation.Post("/next-step", c.ValidationHandler.NextStep)
		validation.Post("/heartbeat", c.ValidationHandler.Heartbeat)
		validation.Post("/:workLogId/reset", c.ValidationHandler.Reset)
	}
}

func (c *Config) Images() {
	images := c.App.Group("/api/v1/images", c.Middleware.AuthMiddleware(c.JWTService))
	images.Get("/:id/file", c.ImageHandler.DownloadImage)
}

// Ingest is called by the capture pipeline, not reviewers; admin token only.
func (c *Config) Ingest() {
	ingest := c.App.Group("/api/v1/ingest",
		c.Middleware.AuthMiddleware(c.JWTService),
		c.Middleware.AdminOnly())
	ingest.Post("/recognitions", c.IngestHandler.IngestRecognition)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

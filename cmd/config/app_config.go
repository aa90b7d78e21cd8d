package config

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	"Tray-Validation-Backend/internal/api/handlers"
	"Tray-Validation-Backend/internal/api/routes"
	"Tray-Validation-Backend/internal/middleware"
	"Tray-Validation-Backend/internal/utils"
	"Tray-Validation-Backend/internal/utils/storage"
	"Tray-Validation-Backend/pkg/annotation"
	"Tray-Validation-Backend/pkg/ingest"
	"Tray-Validation-Backend/pkg/jwt"
	"Tray-Validation-Backend/pkg/reviewer"
	"Tray-Validation-Backend/pkg/workitem"
	"Tray-Validation-Backend/pkg/worklog"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		BodyLimit:         64 * 1024 * 1024, // ingest payloads carry raw camera images
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Jakarta",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        30,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()

	// Repository
	reviewerRepository := reviewer.NewReviewerRepository(db)
	workItemRepository := workitem.NewWorkItemRepository(db)
	annotationRepository := annotation.NewAnnotationRepository(db)
	workLogRepository := worklog.NewWorkLogRepository(db)
	ingestRepository := ingest.NewIngestRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	reviewerService := reviewer.NewReviewerService(reviewerRepository, jwtService)
	workItemService := workitem.NewWorkItemService(workItemRepository)
	annotationService := annotation.NewAnnotationService(annotationRepository, workItemRepository)
	workLogService := worklog.NewWorkLogService(workLogRepository, workItemRepository, annotationRepository, s3)
	ingestService := ingest.NewIngestService(ingestRepository, s3)

	// Handler
	reviewerHandler := handlers.NewReviewerHandler(reviewerService, validator)
	workItemHandler := handlers.NewWorkItemHandler(workItemService, validator)
	annotationHandler := handlers.NewAnnotationHandler(annotationService, validator)
	validationHandler := handlers.NewValidationHandler(workLogService, validator)
	imageHandler := handlers.NewImageHandler(workLogService)
	ingestHandler := handlers.NewIngestHandler(ingestService, validator)

	// routes
	routesConfig := routes.Config{
		App:               app,
		ReviewerHandler:   reviewerHandler,
		WorkItemHandler:   workItemHandler,
		AnnotationHandler: annotationHandler,
		ValidationHandler: validationHandler,
		ImageHandler:      imageHandler,
		IngestHandler:     ingestHandler,
		Middleware:        middlewares,
		JWTService:        jwtService,
	}
	routesConfig.Setup()
	return app, nil
}

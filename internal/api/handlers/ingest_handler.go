package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/internal/api/presenters"
	"Tray-Validation-Backend/pkg/ingest"
)

type (
	IngestHandler interface {
		IngestRecognition(c *fiber.Ctx) error
	}

	ingestHandler struct {
		ingestService ingest.IngestService
		validator     *validator.Validate
	}
)

func NewIngestHandler(ingestService ingest.IngestService, validator *validator.Validate) IngestHandler {
	return &ingestHandler{
		ingestService: ingestService,
		validator:     validator,
	}
}

func (h *ingestHandler) IngestRecognition(c *fiber.Ctx) error {
	req := new(domain.IngestRecognitionRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedIngest, err)
	}

	res, err := h.ingestService.IngestRecognition(c.Context(), *req)
	if err != nil {
		if errors.Is(err, domain.ErrRecognitionExists) {
			return presenters.ErrorResponse(c, fiber.StatusConflict, domain.MessageFailedIngest, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedIngest, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessIngest)
}

package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/internal/api/presenters"
	"Tray-Validation-Backend/pkg/reviewer"
)

type (
	ReviewerHandler interface {
		Register(c *fiber.Ctx) error
		Login(c *fiber.Ctx) error
		Me(c *fiber.Ctx) error
	}

	reviewerHandler struct {
		reviewerService reviewer.ReviewerService
		validator       *validator.Validate
	}
)

func NewReviewerHandler(reviewerService reviewer.ReviewerService, validator *validator.Validate) ReviewerHandler {
	return &reviewerHandler{
		reviewerService: reviewerService,
		validator:       validator,
	}
}

func (h *reviewerHandler) Register(c *fiber.Ctx) error {
	req := new(domain.RegisterReviewerRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRegister, err)
	}

	res, err := h.reviewerService.Register(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRegister, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessRegister)
}

func (h *reviewerHandler) Login(c *fiber.Ctx) error {
	req := new(domain.LoginRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedLogin, err)
	}

	res, err := h.reviewerService.Login(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedLogin, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLogin)
}

func (h *reviewerHandler) Me(c *fiber.Ctx) error {
	reviewerID := c.Locals("user_id").(string)

	res, err := h.reviewerService.Me(c.Context(), reviewerID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedMe, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessMe)
}

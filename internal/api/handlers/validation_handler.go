package handlers

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/internal/api/presenters"
	"Tray-Validation-Backend/pkg/worklog"
)

type (
	ValidationHandler interface {
		GetValidationSession(c *fiber.Ctx) error
		Complete(c *fiber.Ctx) error
		Abandon(c *fiber.Ctx) error
		NextStep(c *fiber.Ctx) error
		Reset(c *fiber.Ctx) error
		Heartbeat(c *fiber.Ctx) error
		Claim(c *fiber.Ctx) error
	}

	validationHandler struct {
		workLogService worklog.WorkLogService
		validator      *validator.Validate
	}
)

func NewValidationHandler(workLogService worklog.WorkLogService, validator *validator.Validate) ValidationHandler {
	return &validationHandler{
		workLogService: workLogService,
		validator:      validator,
	}
}

func (h *validationHandler) GetValidationSession(c *fiber.Ctx) error {
	workLogID, err := strconv.ParseInt(c.Params("workLogId"), 10, 64)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetSession, err)
	}

	res, err := h.workLogService.GetValidationSession(c.Context(), workLogID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedGetSession, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetSession)
}

func (h *validationHandler) Complete(c *fiber.Ctx) error {
	req := new(domain.WorkLogRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedComplete, err)
	}

	if err := h.workLogService.Complete(c.Context(), req.WorkLogID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedComplete, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessComplete)
}

func (h *validationHandler) Abandon(c *fiber.Ctx) error {
	req := new(domain.WorkLogRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAbandon, err)
	}

	if err := h.workLogService.Abandon(c.Context(), req.WorkLogID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAbandon, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessAbandon)
}

func (h *validationHandler) NextStep(c *fiber.Ctx) error {
	req := new(domain.NextStepRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedNextStep, err)
	}

	res, err := h.workLogService.NextStep(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedNextStep, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessNextStep)
}

func (h *validationHandler) Reset(c *fiber.Ctx) error {
	workLogID, err := strconv.ParseInt(c.Params("workLogId"), 10, 64)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedReset, err)
	}

	res, err := h.workLogService.Reset(c.Context(), workLogID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedReset, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessReset)
}

func (h *validationHandler) Heartbeat(c *fiber.Ctx) error {
	req := new(domain.WorkLogRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedHeartbeat, err)
	}

	if err := h.workLogService.Heartbeat(c.Context(), req.WorkLogID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedHeartbeat, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessHeartbeat)
}

func (h *validationHandler) Claim(c *fiber.Ctx) error {
	reviewerID := c.Locals("user_id").(string)

	res, err := h.workLogService.Claim(c.Context(), reviewerID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedClaimWorkLog, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessClaimWorkLog)
}

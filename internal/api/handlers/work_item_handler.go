package handlers

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/internal/api/presenters"
	"Tray-Validation-Backend/pkg/workitem"
)

type (
	WorkItemHandler interface {
		CreateWorkItem(c *fiber.Ctx) error
		UpdateWorkItem(c *fiber.Ctx) error
		DeleteWorkItem(c *fiber.Ctx) error
		GetWorkItems(c *fiber.Ctx) error
	}

	workItemHandler struct {
		workItemService workitem.WorkItemService
		validator       *validator.Validate
	}
)

func NewWorkItemHandler(workItemService workitem.WorkItemService, validator *validator.Validate) WorkItemHandler {
	return &workItemHandler{
		workItemService: workItemService,
		validator:       validator,
	}
}

func (h *workItemHandler) CreateWorkItem(c *fiber.Ctx) error {
	req := new(domain.CreateWorkItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateWorkItem, err)
	}

	res, err := h.workItemService.CreateWorkItem(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateWorkItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateWorkItem)
}

func (h *workItemHandler) UpdateWorkItem(c *fiber.Ctx) error {
	itemID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateWorkItem, err)
	}

	patch := new(domain.WorkItemPatch)
	if err := c.BodyParser(patch); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.workItemService.UpdateWorkItem(c.Context(), itemID, *patch)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateWorkItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateWorkItem)
}

func (h *workItemHandler) DeleteWorkItem(c *fiber.Ctx) error {
	itemID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedDeleteWorkItem, err)
	}

	if err := h.workItemService.DeleteWorkItem(c.Context(), itemID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedDeleteWorkItem, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteWorkItem)
}

func (h *workItemHandler) GetWorkItems(c *fiber.Ctx) error {
	workLogID, err := strconv.ParseInt(c.Params("workLogId"), 10, 64)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetWorkItems, err)
	}

	items, err := h.workItemService.GetWorkItems(c.Context(), workLogID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetWorkItems, err)
	}

	return presenters.SuccessResponse(c, items, fiber.StatusOK, domain.MessageSuccessGetWorkItems)
}

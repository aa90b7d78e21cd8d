package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/internal/api/presenters"
	"Tray-Validation-Backend/pkg/worklog"
)

type (
	ImageHandler interface {
		DownloadImage(c *fiber.Ctx) error
	}

	imageHandler struct {
		workLogService worklog.WorkLogService
	}
)

func NewImageHandler(workLogService worklog.WorkLogService) ImageHandler {
	return &imageHandler{workLogService: workLogService}
}

// DownloadImage proxies the stored camera shot so the annotation frontend
// never needs bucket credentials.
func (h *imageHandler) DownloadImage(c *fiber.Ctx) error {
	imageID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedDownloadFile, err)
	}

	body, contentType, err := h.workLogService.DownloadImage(c.Context(), imageID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedDownloadFile, err)
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.SendStream(body)
}

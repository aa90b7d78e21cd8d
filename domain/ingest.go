package domain

import (
	"errors"

	"Tray-Validation-Backend/entities"
)

var (
	MessageSuccessIngest       = "recognition ingested successfully"
	MessageSuccessDownloadFile = "image downloaded successfully"

	MessageFailedIngest       = "failed to ingest recognition"
	MessageFailedDownloadFile = "failed to download image"

	ErrRecognitionExists    = errors.New("recognition already ingested")
	ErrRecognitionNotFound  = errors.New("recognition not found")
	ErrImageNotFound        = errors.New("image not found")
	ErrInvalidActiveMenu    = errors.New("active menu payload failed schema validation")
	ErrUnreadableImage      = errors.New("image could not be decoded")
)

type (
	// IngestImage is one camera shot submitted with a recognition batch.
	IngestImage struct {
		CameraNumber int    `json:"camera_number" validate:"min=1"`
		Filename     string `json:"filename" validate:"required"`
		Data         []byte `json:"data" validate:"required"`
	}

	// IngestCorrectDish is a ground-truth receipt line from the capture system;
	// it becomes a recipe line with its candidate options.
	IngestCorrectDish struct {
		Name     string   `json:"name" validate:"required"`
		Quantity int      `json:"quantity" validate:"min=1"`
		Options  []string `json:"options,omitempty"` // external menu ids
	}

	// IngestInitialItem seeds the baseline tables so a reset has something to
	// restore; bounding boxes come from the upstream detector.
	IngestInitialItem struct {
		Type              string          `json:"type" validate:"required"`
		Quantity          int             `json:"quantity"`
		BottleOrientation *string         `json:"bottle_orientation,omitempty"`
		Metadata          map[string]any  `json:"metadata,omitempty"`
		Boxes             []IngestInitialBox `json:"boxes,omitempty"`
	}

	IngestInitialBox struct {
		CameraNumber int           `json:"camera_number"`
		BBox         entities.BBox `json:"bbox"`
		IsOccluded   bool          `json:"is_occluded"`
	}

	IngestRecognitionRequest struct {
		RecognitionID int64               `json:"recognition_id" validate:"required"`
		BatchID       string              `json:"batch_id,omitempty" validate:"omitempty,uuid"`
		ActiveMenu    []byte              `json:"active_menu"` // raw JSON, schema-validated
		CorrectDishes []IngestCorrectDish `json:"correct_dishes"`
		Images        []IngestImage       `json:"images" validate:"required,min=1"`
		InitialItems  []IngestInitialItem `json:"initial_items,omitempty"`
	}

	IngestRecognitionResponse struct {
		RecognitionID  int64  `json:"recognition_id"`
		WorkLogID      int64  `json:"work_log_id"`
		ValidationMode string `json:"validation_mode"`
		ImagesStored   int    `json:"images_stored"`
	}
)

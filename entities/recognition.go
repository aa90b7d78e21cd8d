package entities

import (
	"github.com/google/uuid"
)

// Recognition is one captured tray event: a set of camera images plus the
// receipt and menu context it was recognized against.
type Recognition struct {
	ID      int64      `gorm:"primaryKey" json:"id"` // external recognition id from the capture system
	BatchID *uuid.UUID `gorm:"type:uuid;index" json:"batch_id,omitempty"`

	WorkflowState  string `json:"workflow_state"`  // "pending", "in_validation", "validated"
	ValidationMode string `json:"validation_mode"` // "quick" | "edit"

	ActiveMenu []MenuEntry `gorm:"serializer:json" json:"active_menu,omitempty"`

	Images []Image `gorm:"foreignKey:RecognitionID" json:"images,omitempty"`
	Timestamp
}

// MenuEntry is one dish of the menu that was active when the tray was captured.
type MenuEntry struct {
	ExternalID string  `json:"external_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category,omitempty"`
	Price      float64 `json:"price,omitempty"`
}

// Image is one camera shot of a recognition, stored as a blob in object storage.
type Image struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RecognitionID int64  `gorm:"index" json:"recognition_id"`
	CameraNumber  int    `json:"camera_number"`
	StoragePath   string `json:"storage_path"` // "{recognitionID}/{filename}" in the bbox-images bucket
	Width         int    `json:"width"`
	Height        int    `json:"height"`

	Timestamp
}

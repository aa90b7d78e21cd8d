package domain

import (
	"errors"

	"Tray-Validation-Backend/entities"
)

const (
	ItemTypeFood   = "FOOD"
	ItemTypePlate  = "PLATE"
	ItemTypeBuzzer = "BUZZER"
	ItemTypeBottle = "BOTTLE"
	ItemTypeOther  = "OTHER"

	BottleHorizontal = "horizontal"
	BottleVertical   = "vertical"
)

var (
	MessageSuccessCreateWorkItem = "work item created successfully"
	MessageSuccessUpdateWorkItem = "work item updated successfully"
	MessageSuccessDeleteWorkItem = "work item deleted successfully"
	MessageSuccessGetWorkItems   = "work items retrieved successfully"

	MessageFailedCreateWorkItem = "failed to create work item"
	MessageFailedUpdateWorkItem = "failed to update work item"
	MessageFailedDeleteWorkItem = "failed to delete work item"
	MessageFailedGetWorkItems   = "failed to retrieve work items"

	ErrWorkItemNotFound  = errors.New("work item not found")
	ErrInvalidItemType   = errors.New("invalid item type")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidOrientation = errors.New("invalid bottle orientation")
)

// ValidItemTypes is the closed set of tray object kinds.
var ValidItemTypes = map[string]bool{
	ItemTypeFood:   true,
	ItemTypePlate:  true,
	ItemTypeBuzzer: true,
	ItemTypeBottle: true,
	ItemTypeOther:  true,
}

type (
	CreateWorkItemRequest struct {
		WorkLogID         int64          `json:"work_log_id" validate:"required"`
		RecognitionID     int64          `json:"recognition_id" validate:"required"`
		Type              string         `json:"type" validate:"required"`
		RecipeLineID      *int64         `json:"recipe_line_id,omitempty"`
		Quantity          int            `json:"quantity" validate:"omitempty,min=1"`
		BottleOrientation *string        `json:"bottle_orientation,omitempty"`
		Metadata          map[string]any `json:"metadata,omitempty"`
	}

	// WorkItemPatch carries a partial update; nil fields are left untouched.
	WorkItemPatch struct {
		Type              *string        `json:"type,omitempty"`
		RecipeLineID      *int64         `json:"recipe_line_id,omitempty"`
		Quantity          *int           `json:"quantity,omitempty" validate:"omitempty,min=1"`
		BottleOrientation *string        `json:"bottle_orientation,omitempty"`
		Metadata          map[string]any `json:"metadata,omitempty"`
	}

	CreateWorkItemResponse struct {
		Item *entities.WorkItem `json:"item"`
	}
)

// Apply merges the patch into the item. Metadata replaces the whole bag when
// present, matching how the editor submits it.
func (p *WorkItemPatch) Apply(item *entities.WorkItem) {
	if p.Type != nil {
		item.Type = *p.Type
	}
	if p.RecipeLineID != nil {
		item.RecipeLineID = p.RecipeLineID
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.BottleOrientation != nil {
		item.BottleOrientation = p.BottleOrientation
	}
	if p.Metadata != nil {
		item.Metadata = p.Metadata
	}
}

package domain

import (
	"errors"

	"Tray-Validation-Backend/entities"
)

var (
	MessageSuccessCreateAnnotation = "annotation created successfully"
	MessageSuccessUpdateAnnotation = "annotation updated successfully"
	MessageSuccessDeleteAnnotation = "annotation deleted successfully"

	MessageFailedCreateAnnotation = "failed to create annotation"
	MessageFailedUpdateAnnotation = "failed to update annotation"
	MessageFailedDeleteAnnotation = "failed to delete annotation"

	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrOrphanedAnnotation = errors.New("annotation references a missing or deleted work item")
	ErrInvalidBBox        = errors.New("bounding box must have positive extent")
)

type (
	CreateAnnotationRequest struct {
		WorkLogID           int64          `json:"work_log_id" validate:"required"`
		WorkItemID          int64          `json:"work_item_id" validate:"required"`
		ImageID             int64          `json:"image_id" validate:"required"`
		BBox                entities.BBox  `json:"bbox" validate:"required"`
		IsOccluded          bool           `json:"is_occluded"`
		OcclusionMetadata   map[string]any `json:"occlusion_metadata,omitempty"`
		InitialAnnotationID *int64         `json:"initial_annotation_id,omitempty"`
	}

	// AnnotationPatch carries a partial update; nil fields are left untouched.
	AnnotationPatch struct {
		WorkItemID        *int64         `json:"work_item_id,omitempty"`
		ImageID           *int64         `json:"image_id,omitempty"`
		BBox              *entities.BBox `json:"bbox,omitempty"`
		IsOccluded        *bool          `json:"is_occluded,omitempty"`
		OcclusionMetadata map[string]any `json:"occlusion_metadata,omitempty"`
	}

	CreateAnnotationResponse struct {
		Annotation *entities.WorkAnnotation `json:"annotation"`
	}
)

// Apply merges the patch into the annotation.
func (p *AnnotationPatch) Apply(a *entities.WorkAnnotation) {
	if p.WorkItemID != nil {
		a.WorkItemID = *p.WorkItemID
	}
	if p.ImageID != nil {
		a.ImageID = *p.ImageID
	}
	if p.BBox != nil {
		a.BBox = *p.BBox
	}
	if p.IsOccluded != nil {
		a.IsOccluded = *p.IsOccluded
	}
	if p.OcclusionMetadata != nil {
		a.OcclusionMetadata = p.OcclusionMetadata
	}
}

package entities

// BBox is a bounding box in pixel coordinates of the reference image.
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// WorkAnnotation is one bounding box tying a WorkItem to a specific image.
// Like WorkItem, a negative ID marks a box drawn locally and not yet persisted.
type WorkAnnotation struct {
	ID                  int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkLogID           int64  `gorm:"index" json:"work_log_id"`
	WorkItemID          int64  `gorm:"index" json:"work_item_id"`
	ImageID             int64  `gorm:"index" json:"image_id"`
	InitialAnnotationID *int64 `json:"initial_annotation_id,omitempty"`

	BBox              BBox           `gorm:"serializer:json" json:"bbox"`
	IsOccluded        bool           `json:"is_occluded"`
	OcclusionMetadata map[string]any `gorm:"serializer:json" json:"occlusion_metadata,omitempty"`

	IsDeleted bool `json:"is_deleted"`

	// Session-local flags, never persisted.
	IsModified bool `gorm:"-" json:"is_modified,omitempty"`
	IsTemp     bool `gorm:"-" json:"is_temp,omitempty"`

	Timestamp
}

func (a *WorkAnnotation) IsTemporary() bool {
	return a.ID < 0
}

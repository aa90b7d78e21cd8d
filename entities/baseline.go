package entities

// InitialItem is the pristine, server-owned baseline of a work item as produced
// by ingest or a previous validation pass. Reset rebuilds the mutable work rows
// from these tables, so the client never needs to keep its own pristine copy.
type InitialItem struct {
	ID            int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RecognitionID int64 `gorm:"index" json:"recognition_id"`

	Type              string         `json:"type"`
	RecipeLineID      *int64         `json:"recipe_line_id,omitempty"`
	Quantity          int            `json:"quantity"`
	BottleOrientation *string        `json:"bottle_orientation,omitempty"`
	Metadata          map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`

	Timestamp
}

// InitialAnnotation is the baseline counterpart of a WorkAnnotation.
type InitialAnnotation struct {
	ID            int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RecognitionID int64 `gorm:"index" json:"recognition_id"`
	InitialItemID int64 `gorm:"index" json:"initial_item_id"`
	ImageID       int64 `gorm:"index" json:"image_id"`

	BBox              BBox           `gorm:"serializer:json" json:"bbox"`
	IsOccluded        bool           `json:"is_occluded"`
	OcclusionMetadata map[string]any `gorm:"serializer:json" json:"occlusion_metadata,omitempty"`

	Timestamp
}

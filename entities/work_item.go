package entities

// WorkItem is one object on a tray (a dish, plate, buzzer, bottle, ...) being
// classified during a validation work log. A negative ID marks an item created
// locally and not yet confirmed by the backend.
type WorkItem struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkLogID     int64  `gorm:"index" json:"work_log_id"`
	RecognitionID int64  `gorm:"index" json:"recognition_id"`
	InitialItemID *int64 `json:"initial_item_id,omitempty"` // nil when created during the session

	Type              string         `json:"type"` // "FOOD", "PLATE", "BUZZER", "BOTTLE", "OTHER"
	RecipeLineID      *int64         `json:"recipe_line_id,omitempty"`
	Quantity          int            `json:"quantity"`
	BottleOrientation *string        `json:"bottle_orientation,omitempty"` // "horizontal" | "vertical"
	Metadata          map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`

	IsDeleted bool `json:"is_deleted"`

	// Session-local flags, never persisted.
	IsModified bool `gorm:"-" json:"is_modified,omitempty"`

	Timestamp
}

// IsTemporary reports whether the item has not been persisted yet.
func (w *WorkItem) IsTemporary() bool {
	return w.ID < 0
}

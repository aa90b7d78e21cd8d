package entities

// Recipe is the receipt attached to a recognition: the dishes the till says
// should be on the tray.
type Recipe struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RecognitionID int64  `gorm:"index" json:"recognition_id"`
	ExternalID    string `json:"external_id,omitempty"`

	Lines []RecipeLine `gorm:"foreignKey:RecipeID" json:"lines,omitempty"`
	Timestamp
}

// RecipeLine is one receipt line; food items link back to it through
// WorkItem.RecipeLineID to disambiguate which dish a box covers.
type RecipeLine struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipeID int64  `gorm:"index" json:"recipe_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`

	Options []RecipeLineOption `gorm:"foreignKey:RecipeLineID" json:"options,omitempty"`
	Timestamp
}

// RecipeLineOption is one candidate menu dish for a receipt line. At most one
// option per line carries IsSelected.
type RecipeLineOption struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipeLineID int64  `gorm:"index" json:"recipe_line_id"`
	ExternalID   string `json:"external_id"`
	Name         string `json:"name"`
	IsSelected   bool   `json:"is_selected"`

	Timestamp
}

package session

import (
	"fmt"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/entities"
)

// ValidationResult is the derived status of a session for its active step.
// CanComplete is true only when both error collections are empty.
type ValidationResult struct {
	CanComplete  bool
	ItemErrors   map[int64][]string
	GlobalErrors []string
}

// Validate computes per-item and global error lists for the given step type.
// It is pure and total: nil slices, unknown step types and inconsistent input
// produce errors in the result, never a panic. Recomputed on every state
// change; item counts are a few dozen at most, so no caching.
func Validate(items []*entities.WorkItem, annotations []*entities.WorkAnnotation,
	images []entities.Image, recipeLines []entities.RecipeLine, stepType string) ValidationResult {

	res := ValidationResult{ItemErrors: make(map[int64][]string)}

	live := make(map[int64]*entities.WorkItem)
	for _, it := range items {
		if it == nil || it.IsDeleted {
			continue
		}
		live[it.ID] = it
	}
	imagesByID := make(map[int64]entities.Image, len(images))
	for _, img := range images {
		imagesByID[img.ID] = img
	}

	boxesPerItem := make(map[int64]int)
	for _, a := range annotations {
		if a == nil || a.IsDeleted {
			continue
		}
		owner, ok := live[a.WorkItemID]
		if !ok {
			res.GlobalErrors = append(res.GlobalErrors,
				fmt.Sprintf("annotation %d references a missing or deleted item (%d)", a.ID, a.WorkItemID))
			continue
		}
		boxesPerItem[owner.ID]++

		if a.BBox.W <= 0 || a.BBox.H <= 0 {
			res.ItemErrors[owner.ID] = append(res.ItemErrors[owner.ID],
				fmt.Sprintf("annotation %d has an empty bounding box", a.ID))
		} else if img, ok := imagesByID[a.ImageID]; ok && img.Width > 0 && img.Height > 0 {
			if a.BBox.X < 0 || a.BBox.Y < 0 ||
				a.BBox.X+a.BBox.W > float64(img.Width) || a.BBox.Y+a.BBox.H > float64(img.Height) {
				res.ItemErrors[owner.ID] = append(res.ItemErrors[owner.ID],
					fmt.Sprintf("annotation %d extends outside image %d", a.ID, a.ImageID))
			}
		}
	}

	coveredLines := make(map[int64]bool)
	for _, it := range live {
		if it.Quantity < 1 {
			res.ItemErrors[it.ID] = append(res.ItemErrors[it.ID], "quantity must be at least 1")
		}
		if it.Type == domain.ItemTypeFood && it.RecipeLineID != nil {
			coveredLines[*it.RecipeLineID] = true
		}
		if !stepCoversType(stepType, it.Type) {
			continue
		}
		if boxesPerItem[it.ID] == 0 {
			res.ItemErrors[it.ID] = append(res.ItemErrors[it.ID], "item has no bounding box")
		}
		switch it.Type {
		case domain.ItemTypeBottle:
			if it.BottleOrientation == nil || *it.BottleOrientation == "" {
				res.ItemErrors[it.ID] = append(res.ItemErrors[it.ID], "bottle orientation is required")
			}
		case domain.ItemTypeFood:
			if len(recipeLines) > 0 && it.RecipeLineID == nil {
				res.ItemErrors[it.ID] = append(res.ItemErrors[it.ID], "food item is not linked to a receipt line")
			}
		case domain.ItemTypeBuzzer:
			if color, _ := it.Metadata["buzzer_color"].(string); color == "" {
				res.ItemErrors[it.ID] = append(res.ItemErrors[it.ID], "buzzer color is required")
			}
		}
	}

	if stepType == domain.StepFoodValidation {
		for _, line := range recipeLines {
			if !coveredLines[line.ID] {
				res.GlobalErrors = append(res.GlobalErrors,
					fmt.Sprintf("receipt line %q is not covered by any food item", line.Name))
			}
		}
	}

	res.CanComplete = len(res.GlobalErrors) == 0 && len(res.ItemErrors) == 0
	return res
}

// stepCoversType scopes item checks to the active step. Food validation also
// covers bottles and uncategorized objects; a blank or unknown step type runs
// the generic checks for every item.
func stepCoversType(stepType, itemType string) bool {
	switch stepType {
	case domain.StepFoodValidation:
		return itemType == domain.ItemTypeFood || itemType == domain.ItemTypeBottle || itemType == domain.ItemTypeOther
	case domain.StepPlateValidation:
		return itemType == domain.ItemTypePlate
	case domain.StepBuzzerValidation:
		return itemType == domain.ItemTypeBuzzer
	default:
		return true
	}
}

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/entities"
)

func strptr(s string) *string { return &s }
func i64ptr(v int64) *int64   { return &v }

func TestValidateCleanFoodStep(t *testing.T) {
	lineID := int64(3)
	items := []*entities.WorkItem{
		{ID: 1, Type: domain.ItemTypeFood, Quantity: 1, RecipeLineID: &lineID},
	}
	annotations := []*entities.WorkAnnotation{
		{ID: 10, WorkItemID: 1, ImageID: 1, BBox: entities.BBox{X: 5, Y: 5, W: 100, H: 100}},
	}
	images := []entities.Image{{ID: 1, Width: 1000, Height: 800}}
	lines := []entities.RecipeLine{{ID: 3, Name: "borscht", Quantity: 1}}

	res := Validate(items, annotations, images, lines, domain.StepFoodValidation)
	assert.True(t, res.CanComplete)
	assert.Empty(t, res.GlobalErrors)
	assert.Empty(t, res.ItemErrors)
}

func TestValidateItemWithoutBoxFails(t *testing.T) {
	items := []*entities.WorkItem{{ID: 1, Type: domain.ItemTypePlate, Quantity: 1}}

	res := Validate(items, nil, nil, nil, domain.StepPlateValidation)
	assert.False(t, res.CanComplete)
	require.Contains(t, res.ItemErrors, int64(1))
	assert.Contains(t, res.ItemErrors[1][0], "no bounding box")
}

func TestValidateOrphanedAnnotationIsGlobalError(t *testing.T) {
	annotations := []*entities.WorkAnnotation{
		{ID: 10, WorkItemID: 42, ImageID: 1, BBox: entities.BBox{W: 10, H: 10}},
	}
	res := Validate(nil, annotations, nil, nil, domain.StepFoodValidation)
	assert.False(t, res.CanComplete)
	require.Len(t, res.GlobalErrors, 1)
}

func TestValidateDeletedItemCountsAsOrphan(t *testing.T) {
	items := []*entities.WorkItem{{ID: 1, Type: domain.ItemTypeFood, Quantity: 1, IsDeleted: true}}
	annotations := []*entities.WorkAnnotation{
		{ID: 10, WorkItemID: 1, ImageID: 1, BBox: entities.BBox{W: 10, H: 10}},
	}
	res := Validate(items, annotations, nil, nil, domain.StepFoodValidation)
	assert.False(t, res.CanComplete)
	assert.Len(t, res.GlobalErrors, 1)
}

func TestValidateBottleNeedsOrientation(t *testing.T) {
	items := []*entities.WorkItem{{ID: 1, Type: domain.ItemTypeBottle, Quantity: 1}}
	annotations := []*entities.WorkAnnotation{
		{ID: 10, WorkItemID: 1, ImageID: 1, BBox: entities.BBox{W: 10, H: 10}},
	}

	res := Validate(items, annotations, nil, nil, domain.StepFoodValidation)
	require.Contains(t, res.ItemErrors, int64(1))
	assert.Contains(t, res.ItemErrors[1][0], "orientation")

	items[0].BottleOrientation = strptr(domain.BottleHorizontal)
	res = Validate(items, annotations, nil, nil, domain.StepFoodValidation)
	assert.True(t, res.CanComplete)
}

func TestValidateUncoveredRecipeLine(t *testing.T) {
	items := []*entities.WorkItem{
		{ID: 1, Type: domain.ItemTypeFood, Quantity: 1, RecipeLineID: i64ptr(3)},
	}
	annotations := []*entities.WorkAnnotation{
		{ID: 10, WorkItemID: 1, ImageID: 1, BBox: entities.BBox{W: 10, H: 10}},
	}
	lines := []entities.RecipeLine{
		{ID: 3, Name: "borscht", Quantity: 1},
		{ID: 4, Name: "compote", Quantity: 1},
	}

	res := Validate(items, annotations, nil, lines, domain.StepFoodValidation)
	assert.False(t, res.CanComplete)
	require.Len(t, res.GlobalErrors, 1)
	assert.Contains(t, res.GlobalErrors[0], "compote")
}

func TestValidateRecipeLinesIgnoredOutsideFoodStep(t *testing.T) {
	lines := []entities.RecipeLine{{ID: 3, Name: "borscht", Quantity: 1}}
	res := Validate(nil, nil, nil, lines, domain.StepPlateValidation)
	assert.True(t, res.CanComplete, "plate step does not check receipt coverage")
}

func TestValidateBuzzerNeedsColor(t *testing.T) {
	items := []*entities.WorkItem{{ID: 1, Type: domain.ItemTypeBuzzer, Quantity: 1}}
	annotations := []*entities.WorkAnnotation{
		{ID: 10, WorkItemID: 1, ImageID: 1, BBox: entities.BBox{W: 10, H: 10}},
	}

	res := Validate(items, annotations, nil, nil, domain.StepBuzzerValidation)
	require.Contains(t, res.ItemErrors, int64(1))

	items[0].Metadata = map[string]any{"buzzer_color": "red"}
	res = Validate(items, annotations, nil, nil, domain.StepBuzzerValidation)
	assert.True(t, res.CanComplete)
}

func TestValidateBBoxChecks(t *testing.T) {
	items := []*entities.WorkItem{{ID: 1, Type: domain.ItemTypePlate, Quantity: 1}}
	images := []entities.Image{{ID: 1, Width: 100, Height: 100}}

	empty := []*entities.WorkAnnotation{
		{ID: 10, WorkItemID: 1, ImageID: 1, BBox: entities.BBox{X: 5, Y: 5, W: 0, H: 10}},
	}
	res := Validate(items, empty, images, nil, domain.StepPlateValidation)
	require.Contains(t, res.ItemErrors, int64(1))
	assert.Contains(t, res.ItemErrors[1][0], "empty bounding box")

	outside := []*entities.WorkAnnotation{
		{ID: 11, WorkItemID: 1, ImageID: 1, BBox: entities.BBox{X: 90, Y: 5, W: 20, H: 10}},
	}
	res = Validate(items, outside, images, nil, domain.StepPlateValidation)
	require.Contains(t, res.ItemErrors, int64(1))
	assert.Contains(t, res.ItemErrors[1][0], "outside image")
}

func TestValidateNegativeQuantity(t *testing.T) {
	items := []*entities.WorkItem{{ID: 1, Type: domain.ItemTypePlate, Quantity: 0}}
	annotations := []*entities.WorkAnnotation{
		{ID: 10, WorkItemID: 1, ImageID: 1, BBox: entities.BBox{W: 10, H: 10}},
	}
	res := Validate(items, annotations, nil, nil, domain.StepPlateValidation)
	assert.False(t, res.CanComplete)
}

func TestValidateIsTotalOnNilInput(t *testing.T) {
	assert.NotPanics(t, func() {
		res := Validate(nil, nil, nil, nil, "")
		assert.True(t, res.CanComplete)
	})
	assert.NotPanics(t, func() {
		Validate([]*entities.WorkItem{nil}, []*entities.WorkAnnotation{nil}, nil, nil, "SOMETHING_ELSE")
	})
}

func TestValidateDeletedAnnotationIsIgnored(t *testing.T) {
	items := []*entities.WorkItem{{ID: 1, Type: domain.ItemTypePlate, Quantity: 1}}
	annotations := []*entities.WorkAnnotation{
		{ID: 10, WorkItemID: 1, ImageID: 1, BBox: entities.BBox{W: 10, H: 10}, IsDeleted: true},
	}
	res := Validate(items, annotations, nil, nil, domain.StepPlateValidation)
	require.Contains(t, res.ItemErrors, int64(1), "a deleted box does not cover its item")
}

package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/entities"
)

func newTestService(t *testing.T) *ingestService {
	t.Helper()
	svc, ok := NewIngestService(nil, nil).(*ingestService)
	require.True(t, ok)
	return svc
}

func TestParseActiveMenuAcceptsValidPayload(t *testing.T) {
	svc := newTestService(t)

	menu, err := svc.parseActiveMenu([]byte(`[
		{"external_id": "m-1", "name": "nasi goreng", "price": 25000},
		{"external_id": "m-2", "name": "es teh", "category": "drink"}
	]`))
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, "m-1", menu[0].ExternalID)
	assert.Equal(t, "es teh", menu[1].Name)
}

func TestParseActiveMenuRejectsMissingFields(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.parseActiveMenu([]byte(`[{"name": "unnamed dish"}]`))
	assert.ErrorIs(t, err, domain.ErrInvalidActiveMenu)

	_, err = svc.parseActiveMenu([]byte(`[{"external_id": "", "name": "x"}]`))
	assert.ErrorIs(t, err, domain.ErrInvalidActiveMenu)

	_, err = svc.parseActiveMenu([]byte(`{"not": "an array"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidActiveMenu)
}

func TestParseActiveMenuAllowsEmptyPayload(t *testing.T) {
	svc := newTestService(t)

	menu, err := svc.parseActiveMenu(nil)
	require.NoError(t, err)
	assert.Nil(t, menu)
}

func TestDeriveStepsFollowsDetectedTypes(t *testing.T) {
	foodOnly := deriveSteps([]domain.IngestInitialItem{{Type: domain.ItemTypeFood}})
	require.Len(t, foodOnly, 1)
	assert.Equal(t, domain.StepFoodValidation, foodOnly[0].Type)

	full := deriveSteps([]domain.IngestInitialItem{
		{Type: domain.ItemTypeFood},
		{Type: domain.ItemTypePlate},
		{Type: domain.ItemTypeBuzzer},
	})
	require.Len(t, full, 3)
	assert.Equal(t, domain.StepFoodValidation, full[0].Type)
	assert.Equal(t, domain.StepPlateValidation, full[1].Type)
	assert.Equal(t, domain.StepBuzzerValidation, full[2].Type)
	for _, step := range full {
		assert.Equal(t, domain.StepStatusPending, step.Status)
	}
}

func TestComputeValidationMode(t *testing.T) {
	boxed := []domain.IngestInitialItem{
		{Type: domain.ItemTypeFood, Boxes: []domain.IngestInitialBox{{CameraNumber: 1}}},
	}
	assert.Equal(t, domain.ValidationModeQuick, computeValidationMode(boxed))

	unboxed := []domain.IngestInitialItem{
		{Type: domain.ItemTypeFood, Boxes: []domain.IngestInitialBox{{CameraNumber: 1}}},
		{Type: domain.ItemTypePlate},
	}
	assert.Equal(t, domain.ValidationModeEdit, computeValidationMode(unboxed))

	assert.Equal(t, domain.ValidationModeEdit, computeValidationMode(nil))
}

func TestBuildRecipeMatchesMenuOptions(t *testing.T) {
	menu := []entities.MenuEntry{
		{ExternalID: "m-1", Name: "nasi goreng"},
		{ExternalID: "m-2", Name: "nasi goreng spesial"},
	}
	recipe := buildRecipe([]domain.IngestCorrectDish{
		{Name: "nasi goreng", Quantity: 2, Options: []string{"m-1", "m-2", "m-missing"}},
		{Name: "es teh", Quantity: 1, Options: []string{"m-1"}},
	}, menu)

	require.NotNil(t, recipe)
	require.Len(t, recipe.Lines, 2)
	assert.Len(t, recipe.Lines[0].Options, 2)
	assert.False(t, recipe.Lines[0].Options[0].IsSelected)

	// a single candidate is pre-selected
	require.Len(t, recipe.Lines[1].Options, 1)
	assert.True(t, recipe.Lines[1].Options[0].IsSelected)
}

func TestBuildRecipeNilWithoutDishes(t *testing.T) {
	assert.Nil(t, buildRecipe(nil, nil))
}

func TestBuildBaselineKeepsBoxOrder(t *testing.T) {
	items, boxes := buildBaseline([]domain.IngestInitialItem{
		{Type: domain.ItemTypeFood, Quantity: 0, Boxes: []domain.IngestInitialBox{
			{CameraNumber: 1, BBox: entities.BBox{X: 1, Y: 2, W: 3, H: 4}},
			{CameraNumber: 2, BBox: entities.BBox{X: 5, Y: 6, W: 7, H: 8}},
		}},
	})
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity) // zero quantity coerced up

	require.Len(t, boxes[0], 2)
	assert.Equal(t, 1, boxes[0][0].CameraNumber)
	assert.Equal(t, entities.BBox{X: 5, Y: 6, W: 7, H: 8}, boxes[0][1].Annotation.BBox)
}

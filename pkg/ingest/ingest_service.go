package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonschema"
	_ "golang.org/x/image/webp"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/entities"
	"Tray-Validation-Backend/internal/observability"
	"Tray-Validation-Backend/internal/utils/storage"
)

// activeMenuSchema constrains the menu payload from the capture system.
// Entries missing an external id or name are useless for recipe line matching
// and are rejected outright rather than silently dropped.
const activeMenuSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["external_id", "name"],
		"properties": {
			"external_id": {"type": "string", "minLength": 1},
			"name": {"type": "string", "minLength": 1},
			"category": {"type": "string"},
			"price": {"type": "number", "minimum": 0}
		}
	}
}`

type (
	IngestService interface {
		IngestRecognition(ctx context.Context, req domain.IngestRecognitionRequest) (*domain.IngestRecognitionResponse, error)
	}

	ingestService struct {
		ingestRepository IngestRepository
		awsS3            storage.AwsS3
		menuSchema       *jsonschema.Schema
	}
)

func NewIngestService(ingestRepository IngestRepository, awsS3 storage.AwsS3) IngestService {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile([]byte(activeMenuSchema))
	if err != nil {
		panic(fmt.Sprintf("active menu schema does not compile: %v", err))
	}
	return &ingestService{
		ingestRepository: ingestRepository,
		awsS3:            awsS3,
		menuSchema:       schema,
	}
}

func (s *ingestService) IngestRecognition(ctx context.Context, req domain.IngestRecognitionRequest) (*domain.IngestRecognitionResponse, error) {
	start := time.Now()
	defer func() {
		observability.IngestDuration.Observe(time.Since(start).Seconds())
	}()

	exists, err := s.ingestRepository.RecognitionExists(ctx, req.RecognitionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrRecognitionExists
	}

	for _, item := range req.InitialItems {
		if !domain.ValidItemTypes[item.Type] {
			return nil, domain.ErrInvalidItemType
		}
	}

	activeMenu, err := s.parseActiveMenu(req.ActiveMenu)
	if err != nil {
		return nil, err
	}

	batch := &RecognitionBatch{
		Recognition: &entities.Recognition{
			ID:             req.RecognitionID,
			WorkflowState:  "pending",
			ValidationMode: computeValidationMode(req.InitialItems),
			ActiveMenu:     activeMenu,
		},
	}
	if req.BatchID != "" {
		batchUUID, err := uuid.Parse(req.BatchID)
		if err != nil {
			return nil, domain.ErrParseUUID
		}
		batch.Recognition.BatchID = &batchUUID
	}

	images, err := s.storeImages(ctx, req.RecognitionID, req.Images)
	if err != nil {
		return nil, err
	}
	batch.Images = images

	batch.Recipe = buildRecipe(req.CorrectDishes, activeMenu)
	batch.InitialItems, batch.BoxesByItem = buildBaseline(req.InitialItems)
	batch.WorkLog = &entities.ValidationWorkLog{
		Status:          domain.WorkLogStatusPending,
		ValidationSteps: deriveSteps(req.InitialItems),
	}

	if err := s.ingestRepository.StoreBatch(ctx, batch); err != nil {
		for _, img := range batch.Images {
			_ = s.awsS3.DeleteFile(ctx, img.StoragePath)
		}
		return nil, err
	}

	observability.RecognitionsIngested.Inc()
	return &domain.IngestRecognitionResponse{
		RecognitionID:  req.RecognitionID,
		WorkLogID:      batch.WorkLog.ID,
		ValidationMode: batch.Recognition.ValidationMode,
		ImagesStored:   len(batch.Images),
	}, nil
}

func (s *ingestService) parseActiveMenu(raw []byte) ([]entities.MenuEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, domain.ErrInvalidActiveMenu
	}
	if result := s.menuSchema.Validate(payload); !result.IsValid() {
		return nil, domain.ErrInvalidActiveMenu
	}
	var menu []entities.MenuEntry
	if err := json.Unmarshal(raw, &menu); err != nil {
		return nil, domain.ErrInvalidActiveMenu
	}
	return menu, nil
}

// storeImages probes each image's dimensions and uploads it to the bucket.
func (s *ingestService) storeImages(ctx context.Context, recognitionID int64, uploads []domain.IngestImage) ([]entities.Image, error) {
	rows := make([]entities.Image, 0, len(uploads))
	for _, upload := range uploads {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(upload.Data))
		if err != nil {
			return nil, fmt.Errorf("%w: camera %d", domain.ErrUnreadableImage, upload.CameraNumber)
		}
		key := fmt.Sprintf("%d/%s", recognitionID, upload.Filename)
		contentType := http.DetectContentType(upload.Data)
		if _, err := s.awsS3.UploadFile(ctx, key, contentType, bytes.NewReader(upload.Data)); err != nil {
			return nil, err
		}
		rows = append(rows, entities.Image{
			CameraNumber: upload.CameraNumber,
			StoragePath:  key,
			Width:        cfg.Width,
			Height:       cfg.Height,
		})
	}
	return rows, nil
}

// buildRecipe turns the receipt lines into a recipe; each line carries the
// menu entries whose names match as selectable options.
func buildRecipe(dishes []domain.IngestCorrectDish, menu []entities.MenuEntry) *entities.Recipe {
	if len(dishes) == 0 {
		return nil
	}
	menuByID := make(map[string]entities.MenuEntry, len(menu))
	for _, entry := range menu {
		menuByID[entry.ExternalID] = entry
	}

	recipe := &entities.Recipe{}
	for _, dish := range dishes {
		line := entities.RecipeLine{
			Name:     dish.Name,
			Quantity: dish.Quantity,
		}
		for _, optionID := range dish.Options {
			entry, ok := menuByID[optionID]
			if !ok {
				continue
			}
			line.Options = append(line.Options, entities.RecipeLineOption{
				ExternalID: entry.ExternalID,
				Name:       entry.Name,
				IsSelected: len(dish.Options) == 1,
			})
		}
		recipe.Lines = append(recipe.Lines, line)
	}
	return recipe
}

func buildBaseline(items []domain.IngestInitialItem) ([]entities.InitialItem, map[int][]BaselineBox) {
	baseline := make([]entities.InitialItem, 0, len(items))
	boxes := make(map[int][]BaselineBox)
	for i, item := range items {
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		baseline = append(baseline, entities.InitialItem{
			Type:              item.Type,
			Quantity:          quantity,
			BottleOrientation: item.BottleOrientation,
			Metadata:          item.Metadata,
		})
		for _, box := range item.Boxes {
			boxes[i] = append(boxes[i], BaselineBox{
				CameraNumber: box.CameraNumber,
				Annotation: entities.InitialAnnotation{
					BBox:       box.BBox,
					IsOccluded: box.IsOccluded,
				},
			})
		}
	}
	return baseline, boxes
}

// deriveSteps builds the ordered step list from the detected item types:
// food always gets a step, plates and buzzers only when the detector saw one.
func deriveSteps(items []domain.IngestInitialItem) []entities.ValidationStep {
	hasPlate, hasBuzzer := false, false
	for _, item := range items {
		switch item.Type {
		case domain.ItemTypePlate:
			hasPlate = true
		case domain.ItemTypeBuzzer:
			hasBuzzer = true
		}
	}
	steps := []entities.ValidationStep{
		{Type: domain.StepFoodValidation, Status: domain.StepStatusPending},
	}
	if hasPlate {
		steps = append(steps, entities.ValidationStep{Type: domain.StepPlateValidation, Status: domain.StepStatusPending})
	}
	if hasBuzzer {
		steps = append(steps, entities.ValidationStep{Type: domain.StepBuzzerValidation, Status: domain.StepStatusPending})
	}
	return steps
}

// computeValidationMode picks quick review for trays where every detection is
// already boxed; anything missing boxes needs the full edit workflow.
func computeValidationMode(items []domain.IngestInitialItem) string {
	if len(items) == 0 {
		return domain.ValidationModeEdit
	}
	for _, item := range items {
		if len(item.Boxes) == 0 {
			return domain.ValidationModeEdit
		}
	}
	return domain.ValidationModeQuick
}

package ingest

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"Tray-Validation-Backend/entities"
)

type (
	// IngestRepository persists a full recognition batch in one transaction:
	// the recognition row, its images, the receipt, the initial_* baseline and
	// the mutable work rows seeded from that baseline.
	IngestRepository interface {
		RecognitionExists(ctx context.Context, recognitionID int64) (bool, error)
		StoreBatch(ctx context.Context, batch *RecognitionBatch) error
	}

	ingestRepository struct {
		db *gorm.DB
	}

	// RecognitionBatch bundles every row of one ingest. Baseline boxes are
	// keyed by the index of their item in InitialItems and reference images by
	// camera number, because database IDs do not exist until the transaction
	// assigns them.
	RecognitionBatch struct {
		Recognition *entities.Recognition
		Images      []entities.Image
		Recipe      *entities.Recipe
		InitialItems []entities.InitialItem
		BoxesByItem  map[int][]BaselineBox
		WorkLog      *entities.ValidationWorkLog
	}

	// BaselineBox is an InitialAnnotation that still points at its camera
	// instead of a stored image row.
	BaselineBox struct {
		CameraNumber int
		Annotation   entities.InitialAnnotation
	}
)

func NewIngestRepository(db *gorm.DB) IngestRepository {
	return &ingestRepository{db: db}
}

func (r *ingestRepository) RecognitionExists(ctx context.Context, recognitionID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Recognition{}).
		Where("id = ?", recognitionID).Count(&count).Error
	return count > 0, err
}

func (r *ingestRepository) StoreBatch(ctx context.Context, batch *RecognitionBatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch.Recognition).Error; err != nil {
			return err
		}
		imageIDByCamera := make(map[int]int64, len(batch.Images))
		for i := range batch.Images {
			batch.Images[i].RecognitionID = batch.Recognition.ID
			if err := tx.Create(&batch.Images[i]).Error; err != nil {
				return err
			}
			imageIDByCamera[batch.Images[i].CameraNumber] = batch.Images[i].ID
		}
		if batch.Recipe != nil {
			batch.Recipe.RecognitionID = batch.Recognition.ID
			if err := tx.Create(batch.Recipe).Error; err != nil {
				return err
			}
		}

		batch.WorkLog.RecognitionID = batch.Recognition.ID
		if err := tx.Create(batch.WorkLog).Error; err != nil {
			return err
		}

		for i := range batch.InitialItems {
			item := &batch.InitialItems[i]
			item.RecognitionID = batch.Recognition.ID
			if err := tx.Create(item).Error; err != nil {
				return err
			}
			workItem := entities.WorkItem{
				WorkLogID:         batch.WorkLog.ID,
				RecognitionID:     batch.Recognition.ID,
				InitialItemID:     &item.ID,
				Type:              item.Type,
				RecipeLineID:      item.RecipeLineID,
				Quantity:          item.Quantity,
				BottleOrientation: item.BottleOrientation,
				Metadata:          item.Metadata,
			}
			if err := tx.Create(&workItem).Error; err != nil {
				return err
			}
			for _, box := range batch.BoxesByItem[i] {
				imageID, ok := imageIDByCamera[box.CameraNumber]
				if !ok {
					return fmt.Errorf("baseline box references unknown camera %d", box.CameraNumber)
				}
				ann := box.Annotation
				ann.RecognitionID = batch.Recognition.ID
				ann.InitialItemID = item.ID
				ann.ImageID = imageID
				if err := tx.Create(&ann).Error; err != nil {
					return err
				}
				annID := ann.ID
				workAnnotation := entities.WorkAnnotation{
					WorkLogID:           batch.WorkLog.ID,
					WorkItemID:          workItem.ID,
					ImageID:             ann.ImageID,
					InitialAnnotationID: &annID,
					BBox:                ann.BBox,
					IsOccluded:          ann.IsOccluded,
					OcclusionMetadata:   ann.OcclusionMetadata,
				}
				if err := tx.Create(&workAnnotation).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

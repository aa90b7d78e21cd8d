package worklog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Tray-Validation-Backend/entities"
)

type (
	WorkLogRepository interface {
		GetWorkLogByID(ctx context.Context, id int64) (*entities.ValidationWorkLog, error)
		UpdateWorkLog(ctx context.Context, workLog *entities.ValidationWorkLog) error
		ClaimOldestPending(ctx context.Context, reviewerID uuid.UUID) (*entities.ValidationWorkLog, error)
		TouchLastActivity(ctx context.Context, id int64, at time.Time) error

		GetRecognitionByID(ctx context.Context, id int64) (*entities.Recognition, error)
		UpdateRecognitionState(ctx context.Context, id int64, state string) error
		GetImages(ctx context.Context, recognitionID int64) ([]entities.Image, error)
		GetImageByID(ctx context.Context, id int64) (*entities.Image, error)
		GetRecipe(ctx context.Context, recognitionID int64) (*entities.Recipe, error)
		GetRecipeLines(ctx context.Context, recipeID int64) ([]entities.RecipeLine, error)
		GetRecipeLineOptions(ctx context.Context, recipeLineIDs []int64) ([]entities.RecipeLineOption, error)

		GetInitialItems(ctx context.Context, recognitionID int64) ([]entities.InitialItem, error)
		GetInitialAnnotations(ctx context.Context, recognitionID int64) ([]entities.InitialAnnotation, error)
		ReplaceWorkRows(ctx context.Context, workLogID int64, items []entities.WorkItem, annotationsByInitialItem map[int64][]entities.WorkAnnotation) ([]entities.WorkItem, []entities.WorkAnnotation, error)
	}

	workLogRepository struct {
		db *gorm.DB
	}
)

func NewWorkLogRepository(db *gorm.DB) WorkLogRepository {
	return &workLogRepository{db: db}
}

func (r *workLogRepository) GetWorkLogByID(ctx context.Context, id int64) (*entities.ValidationWorkLog, error) {
	var workLog entities.ValidationWorkLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&workLog).Error; err != nil {
		return nil, err
	}
	return &workLog, nil
}

func (r *workLogRepository) UpdateWorkLog(ctx context.Context, workLog *entities.ValidationWorkLog) error {
	return r.db.WithContext(ctx).Save(workLog).Error
}

// ClaimOldestPending assigns the oldest unclaimed pending work log to the
// reviewer inside one transaction, so two reviewers racing for work cannot end
// up holding the same lease.
func (r *workLogRepository) ClaimOldestPending(ctx context.Context, reviewerID uuid.UUID) (*entities.ValidationWorkLog, error) {
	var workLog entities.ValidationWorkLog
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND assigned_to IS NULL", "pending").
			Order("created_at asc").
			First(&workLog).Error; err != nil {
			return err
		}
		now := time.Now()
		workLog.Status = "active"
		workLog.AssignedTo = &reviewerID
		workLog.LastActivityAt = &now
		if len(workLog.ValidationSteps) > 0 {
			workLog.ValidationSteps[0].Status = "in_progress"
		}
		return tx.Save(&workLog).Error
	})
	if err != nil {
		return nil, err
	}
	return &workLog, nil
}

func (r *workLogRepository) TouchLastActivity(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entities.ValidationWorkLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"last_activity_at": at}).Error
}

func (r *workLogRepository) GetRecognitionByID(ctx context.Context, id int64) (*entities.Recognition, error) {
	var recognition entities.Recognition
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&recognition).Error; err != nil {
		return nil, err
	}
	return &recognition, nil
}

func (r *workLogRepository) UpdateRecognitionState(ctx context.Context, id int64, state string) error {
	return r.db.WithContext(ctx).Model(&entities.Recognition{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"workflow_state": state}).Error
}

func (r *workLogRepository) GetImages(ctx context.Context, recognitionID int64) ([]entities.Image, error) {
	var images []entities.Image
	if err := r.db.WithContext(ctx).
		Where("recognition_id = ?", recognitionID).
		Order("camera_number asc").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (r *workLogRepository) GetImageByID(ctx context.Context, id int64) (*entities.Image, error) {
	var img entities.Image
	if err := r.db.WithContext(ctx).First(&img, id).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *workLogRepository) GetRecipe(ctx context.Context, recognitionID int64) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).Where("recognition_id = ?", recognitionID).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *workLogRepository) GetRecipeLines(ctx context.Context, recipeID int64) ([]entities.RecipeLine, error) {
	var lines []entities.RecipeLine
	if err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("id asc").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *workLogRepository) GetRecipeLineOptions(ctx context.Context, recipeLineIDs []int64) ([]entities.RecipeLineOption, error) {
	if len(recipeLineIDs) == 0 {
		return nil, nil
	}
	var options []entities.RecipeLineOption
	if err := r.db.WithContext(ctx).
		Where("recipe_line_id IN ?", recipeLineIDs).
		Order("id asc").
		Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

func (r *workLogRepository) GetInitialItems(ctx context.Context, recognitionID int64) ([]entities.InitialItem, error) {
	var items []entities.InitialItem
	if err := r.db.WithContext(ctx).
		Where("recognition_id = ?", recognitionID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *workLogRepository) GetInitialAnnotations(ctx context.Context, recognitionID int64) ([]entities.InitialAnnotation, error) {
	var annotations []entities.InitialAnnotation
	if err := r.db.WithContext(ctx).
		Where("recognition_id = ?", recognitionID).
		Order("id asc").
		Find(&annotations).Error; err != nil {
		return nil, err
	}
	return annotations, nil
}

// ReplaceWorkRows swaps a work log's mutable rows for a fresh set in one
// transaction; used by reset so a half-applied baseline can never be observed.
// Annotations are keyed by the initial item they belong to and rewired to the
// newly created item IDs as those become known.
func (r *workLogRepository) ReplaceWorkRows(ctx context.Context, workLogID int64, items []entities.WorkItem, annotationsByInitialItem map[int64][]entities.WorkAnnotation) ([]entities.WorkItem, []entities.WorkAnnotation, error) {
	var createdAnnotations []entities.WorkAnnotation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("work_log_id = ?", workLogID).Delete(&entities.WorkAnnotation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("work_log_id = ?", workLogID).Delete(&entities.WorkItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
			if items[i].InitialItemID == nil {
				continue
			}
			for _, a := range annotationsByInitialItem[*items[i].InitialItemID] {
				a.WorkItemID = items[i].ID
				if err := tx.Create(&a).Error; err != nil {
					return err
				}
				createdAnnotations = append(createdAnnotations, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return items, createdAnnotations, nil
}

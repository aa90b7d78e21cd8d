package annotation

import (
	"context"

	"gorm.io/gorm"

	"Tray-Validation-Backend/entities"
)

type (
	AnnotationRepository interface {
		CreateAnnotation(ctx context.Context, annotation *entities.WorkAnnotation) error
		GetAnnotationByID(ctx context.Context, id int64) (*entities.WorkAnnotation, error)
		UpdateAnnotation(ctx context.Context, annotation *entities.WorkAnnotation) error
		SoftDeleteAnnotation(ctx context.Context, id int64) error
		GetAnnotations(ctx context.Context, workLogID int64) ([]entities.WorkAnnotation, error)
		DeleteByWorkLog(ctx context.Context, workLogID int64) error
	}

	annotationRepository struct {
		db *gorm.DB
	}
)

func NewAnnotationRepository(db *gorm.DB) AnnotationRepository {
	return &annotationRepository{db: db}
}

func (r *annotationRepository) CreateAnnotation(ctx context.Context, annotation *entities.WorkAnnotation) error {
	return r.db.WithContext(ctx).Create(annotation).Error
}

func (r *annotationRepository) GetAnnotationByID(ctx context.Context, id int64) (*entities.WorkAnnotation, error) {
	var annotation entities.WorkAnnotation
	if err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&annotation).Error; err != nil {
		return nil, err
	}
	return &annotation, nil
}

func (r *annotationRepository) UpdateAnnotation(ctx context.Context, annotation *entities.WorkAnnotation) error {
	return r.db.WithContext(ctx).Save(annotation).Error
}

func (r *annotationRepository) SoftDeleteAnnotation(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&entities.WorkAnnotation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_deleted": true}).Error
}

func (r *annotationRepository) GetAnnotations(ctx context.Context, workLogID int64) ([]entities.WorkAnnotation, error) {
	var annotations []entities.WorkAnnotation
	if err := r.db.WithContext(ctx).
		Where("work_log_id = ? AND is_deleted = ?", workLogID, false).
		Order("id asc").
		Find(&annotations).Error; err != nil {
		return nil, err
	}
	return annotations, nil
}

func (r *annotationRepository) DeleteByWorkLog(ctx context.Context, workLogID int64) error {
	return r.db.WithContext(ctx).
		Where("work_log_id = ?", workLogID).
		Delete(&entities.WorkAnnotation{}).Error
}

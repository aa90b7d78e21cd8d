package workitem

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"Tray-Validation-Backend/entities"
)

type (
	WorkItemRepository interface {
		CreateWorkItem(ctx context.Context, item *entities.WorkItem) error
		GetWorkItemByID(ctx context.Context, id int64) (*entities.WorkItem, error)
		UpdateWorkItem(ctx context.Context, item *entities.WorkItem) error
		SoftDeleteWorkItem(ctx context.Context, id int64) error
		GetWorkItems(ctx context.Context, workLogID int64) ([]entities.WorkItem, error)
		SoftDeleteAnnotationsByItem(ctx context.Context, workItemID int64) error
		DeleteByWorkLog(ctx context.Context, workLogID int64) error
	}

	workItemRepository struct {
		db *gorm.DB
	}
)

func NewWorkItemRepository(db *gorm.DB) WorkItemRepository {
	return &workItemRepository{db: db}
}

func (r *workItemRepository) CreateWorkItem(ctx context.Context, item *entities.WorkItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *workItemRepository) GetWorkItemByID(ctx context.Context, id int64) (*entities.WorkItem, error) {
	var item entities.WorkItem
	if err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, err
	}
	return &item, nil
}

func (r *workItemRepository) UpdateWorkItem(ctx context.Context, item *entities.WorkItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *workItemRepository) SoftDeleteWorkItem(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&entities.WorkItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_deleted": true}).Error
}

func (r *workItemRepository) GetWorkItems(ctx context.Context, workLogID int64) ([]entities.WorkItem, error) {
	var items []entities.WorkItem
	if err := r.db.WithContext(ctx).
		Where("work_log_id = ? AND is_deleted = ?", workLogID, false).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *workItemRepository) SoftDeleteAnnotationsByItem(ctx context.Context, workItemID int64) error {
	return r.db.WithContext(ctx).Model(&entities.WorkAnnotation{}).
		Where("work_item_id = ?", workItemID).
		Updates(map[string]interface{}{"is_deleted": true}).Error
}

func (r *workItemRepository) DeleteByWorkLog(ctx context.Context, workLogID int64) error {
	return r.db.WithContext(ctx).
		Where("work_log_id = ?", workLogID).
		Delete(&entities.WorkItem{}).Error
}

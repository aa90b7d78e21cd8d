package workitem

import (
	"context"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/entities"
)

type (
	WorkItemService interface {
		CreateWorkItem(ctx context.Context, req domain.CreateWorkItemRequest) (*entities.WorkItem, error)
		UpdateWorkItem(ctx context.Context, id int64, patch domain.WorkItemPatch) (*entities.WorkItem, error)
		DeleteWorkItem(ctx context.Context, id int64) error
		GetWorkItems(ctx context.Context, workLogID int64) ([]entities.WorkItem, error)
	}

	workItemService struct {
		workItemRepository WorkItemRepository
	}
)

func NewWorkItemService(workItemRepository WorkItemRepository) WorkItemService {
	return &workItemService{workItemRepository: workItemRepository}
}

func (s *workItemService) CreateWorkItem(ctx context.Context, req domain.CreateWorkItemRequest) (*entities.WorkItem, error) {
	if !domain.ValidItemTypes[req.Type] {
		return nil, domain.ErrInvalidItemType
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	if req.BottleOrientation != nil &&
		*req.BottleOrientation != domain.BottleHorizontal && *req.BottleOrientation != domain.BottleVertical {
		return nil, domain.ErrInvalidOrientation
	}

	item := &entities.WorkItem{
		WorkLogID:         req.WorkLogID,
		RecognitionID:     req.RecognitionID,
		Type:              req.Type,
		RecipeLineID:      req.RecipeLineID,
		Quantity:          quantity,
		BottleOrientation: req.BottleOrientation,
		Metadata:          req.Metadata,
	}
	if err := s.workItemRepository.CreateWorkItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *workItemService) UpdateWorkItem(ctx context.Context, id int64, patch domain.WorkItemPatch) (*entities.WorkItem, error) {
	item, err := s.workItemRepository.GetWorkItemByID(ctx, id)
	if err != nil {
		return nil, domain.ErrWorkItemNotFound
	}
	if patch.Type != nil && !domain.ValidItemTypes[*patch.Type] {
		return nil, domain.ErrInvalidItemType
	}
	if patch.Quantity != nil && *patch.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	patch.Apply(item)
	if err := s.workItemRepository.UpdateWorkItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteWorkItem soft-deletes the item and cascades to its annotations, so a
// client that only deletes the item never leaves orphaned boxes behind.
func (s *workItemService) DeleteWorkItem(ctx context.Context, id int64) error {
	if _, err := s.workItemRepository.GetWorkItemByID(ctx, id); err != nil {
		return domain.ErrWorkItemNotFound
	}
	if err := s.workItemRepository.SoftDeleteAnnotationsByItem(ctx, id); err != nil {
		return err
	}
	return s.workItemRepository.SoftDeleteWorkItem(ctx, id)
}

func (s *workItemService) GetWorkItems(ctx context.Context, workLogID int64) ([]entities.WorkItem, error) {
	return s.workItemRepository.GetWorkItems(ctx, workLogID)
}

package annotation

import (
	"context"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/entities"
	"Tray-Validation-Backend/pkg/workitem"
)

type (
	AnnotationService interface {
		CreateAnnotation(ctx context.Context, req domain.CreateAnnotationRequest) (*entities.WorkAnnotation, error)
		UpdateAnnotation(ctx context.Context, id int64, patch domain.AnnotationPatch) (*entities.WorkAnnotation, error)
		DeleteAnnotation(ctx context.Context, id int64) error
		GetAnnotations(ctx context.Context, workLogID int64) ([]entities.WorkAnnotation, error)
	}

	annotationService struct {
		annotationRepository AnnotationRepository
		workItemRepository   workitem.WorkItemRepository
	}
)

func NewAnnotationService(annotationRepository AnnotationRepository, workItemRepository workitem.WorkItemRepository) AnnotationService {
	return &annotationService{
		annotationRepository: annotationRepository,
		workItemRepository:   workItemRepository,
	}
}

func (s *annotationService) CreateAnnotation(ctx context.Context, req domain.CreateAnnotationRequest) (*entities.WorkAnnotation, error) {
	if req.BBox.W <= 0 || req.BBox.H <= 0 {
		return nil, domain.ErrInvalidBBox
	}
	// every box must reference a live item; orphans are rejected at the door
	if _, err := s.workItemRepository.GetWorkItemByID(ctx, req.WorkItemID); err != nil {
		return nil, domain.ErrOrphanedAnnotation
	}

	annotation := &entities.WorkAnnotation{
		WorkLogID:           req.WorkLogID,
		WorkItemID:          req.WorkItemID,
		ImageID:             req.ImageID,
		InitialAnnotationID: req.InitialAnnotationID,
		BBox:                req.BBox,
		IsOccluded:          req.IsOccluded,
		OcclusionMetadata:   req.OcclusionMetadata,
	}
	if err := s.annotationRepository.CreateAnnotation(ctx, annotation); err != nil {
		return nil, err
	}
	return annotation, nil
}

func (s *annotationService) UpdateAnnotation(ctx context.Context, id int64, patch domain.AnnotationPatch) (*entities.WorkAnnotation, error) {
	annotation, err := s.annotationRepository.GetAnnotationByID(ctx, id)
	if err != nil {
		return nil, domain.ErrAnnotationNotFound
	}
	if patch.BBox != nil && (patch.BBox.W <= 0 || patch.BBox.H <= 0) {
		return nil, domain.ErrInvalidBBox
	}
	if patch.WorkItemID != nil {
		if _, err := s.workItemRepository.GetWorkItemByID(ctx, *patch.WorkItemID); err != nil {
			return nil, domain.ErrOrphanedAnnotation
		}
	}
	patch.Apply(annotation)
	if err := s.annotationRepository.UpdateAnnotation(ctx, annotation); err != nil {
		return nil, err
	}
	return annotation, nil
}

func (s *annotationService) DeleteAnnotation(ctx context.Context, id int64) error {
	if _, err := s.annotationRepository.GetAnnotationByID(ctx, id); err != nil {
		return domain.ErrAnnotationNotFound
	}
	return s.annotationRepository.SoftDeleteAnnotation(ctx, id)
}

func (s *annotationService) GetAnnotations(ctx context.Context, workLogID int64) ([]entities.WorkAnnotation, error) {
	return s.annotationRepository.GetAnnotations(ctx, workLogID)
}

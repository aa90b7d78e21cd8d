package worklog

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/entities"
	"Tray-Validation-Backend/internal/observability"
	"Tray-Validation-Backend/internal/utils/storage"
	"Tray-Validation-Backend/pkg/annotation"
	"Tray-Validation-Backend/pkg/workitem"
)

type (
	WorkLogService interface {
		GetValidationSession(ctx context.Context, workLogID int64) (*domain.ValidationSessionSnapshot, error)
		Complete(ctx context.Context, workLogID int64) error
		Abandon(ctx context.Context, workLogID int64) error
		NextStep(ctx context.Context, req domain.NextStepRequest) (*domain.NextStepResponse, error)
		Reset(ctx context.Context, workLogID int64) (*domain.ResetResponse, error)
		Heartbeat(ctx context.Context, workLogID int64) error
		Claim(ctx context.Context, reviewerID string) (*domain.ClaimWorkLogResponse, error)
		DownloadImage(ctx context.Context, imageID int64) (io.ReadCloser, string, error)
	}

	workLogService struct {
		workLogRepository    WorkLogRepository
		workItemRepository   workitem.WorkItemRepository
		annotationRepository annotation.AnnotationRepository
		awsS3                storage.AwsS3
	}
)

func NewWorkLogService(
	workLogRepository WorkLogRepository,
	workItemRepository workitem.WorkItemRepository,
	annotationRepository annotation.AnnotationRepository,
	awsS3 storage.AwsS3,
) WorkLogService {
	return &workLogService{
		workLogRepository:    workLogRepository,
		workItemRepository:   workItemRepository,
		annotationRepository: annotationRepository,
		awsS3:                awsS3,
	}
}

func (s *workLogService) GetValidationSession(ctx context.Context, workLogID int64) (*domain.ValidationSessionSnapshot, error) {
	workLog, err := s.workLogRepository.GetWorkLogByID(ctx, workLogID)
	if err != nil {
		return nil, domain.ErrWorkLogNotFound
	}
	recognition, err := s.workLogRepository.GetRecognitionByID(ctx, workLog.RecognitionID)
	if err != nil {
		return nil, err
	}
	images, err := s.workLogRepository.GetImages(ctx, workLog.RecognitionID)
	if err != nil {
		return nil, err
	}
	items, err := s.workItemRepository.GetWorkItems(ctx, workLogID)
	if err != nil {
		return nil, err
	}
	annotations, err := s.annotationRepository.GetAnnotations(ctx, workLogID)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.ValidationSessionSnapshot{
		WorkLog:     workLog,
		Recognition: recognition,
		Images:      images,
		ActiveMenu:  recognition.ActiveMenu,
		Items:       items,
		Annotations: annotations,
	}

	// trays without a receipt are still reviewable
	recipe, err := s.workLogRepository.GetRecipe(ctx, workLog.RecognitionID)
	if err != nil {
		log.Printf("[worklog] recognition %d has no recipe: %v", workLog.RecognitionID, err)
		return snapshot, nil
	}
	snapshot.Recipe = recipe
	lines, err := s.workLogRepository.GetRecipeLines(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}
	snapshot.RecipeLines = lines
	lineIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		lineIDs = append(lineIDs, line.ID)
	}
	options, err := s.workLogRepository.GetRecipeLineOptions(ctx, lineIDs)
	if err != nil {
		return nil, err
	}
	snapshot.RecipeLineOptions = options
	return snapshot, nil
}

func (s *workLogService) activeWorkLog(ctx context.Context, workLogID int64) (*entities.ValidationWorkLog, error) {
	workLog, err := s.workLogRepository.GetWorkLogByID(ctx, workLogID)
	if err != nil {
		return nil, domain.ErrWorkLogNotFound
	}
	if workLog.Status == domain.WorkLogStatusCompleted || workLog.Status == domain.WorkLogStatusAbandoned {
		return nil, domain.ErrWorkLogTerminal
	}
	return workLog, nil
}

func (s *workLogService) Complete(ctx context.Context, workLogID int64) error {
	workLog, err := s.activeWorkLog(ctx, workLogID)
	if err != nil {
		return err
	}
	if !workLog.IsLastStep() {
		return domain.ErrNotLastStep
	}

	now := time.Now()
	workLog.Status = domain.WorkLogStatusCompleted
	workLog.CompletedAt = &now
	workLog.LastActivityAt = &now
	if step := workLog.CurrentStep(); step != nil {
		step.Status = domain.StepStatusCompleted
	}
	if err := s.workLogRepository.UpdateWorkLog(ctx, workLog); err != nil {
		return err
	}
	if err := s.workLogRepository.UpdateRecognitionState(ctx, workLog.RecognitionID, "validated"); err != nil {
		return err
	}
	observability.ValidationsCompleted.Inc()
	return nil
}

// Abandon releases the assignment back to the shared queue: status and
// assignee are cleared but the work rows stay, so the next claimant resumes
// from whatever was last saved.
func (s *workLogService) Abandon(ctx context.Context, workLogID int64) error {
	workLog, err := s.activeWorkLog(ctx, workLogID)
	if err != nil {
		return err
	}
	workLog.Status = domain.WorkLogStatusPending
	workLog.AssignedTo = nil
	if err := s.workLogRepository.UpdateWorkLog(ctx, workLog); err != nil {
		return err
	}
	observability.ValidationsAbandoned.Inc()
	return nil
}

func (s *workLogService) NextStep(ctx context.Context, req domain.NextStepRequest) (*domain.NextStepResponse, error) {
	workLog, err := s.activeWorkLog(ctx, req.WorkLogID)
	if err != nil {
		return nil, err
	}
	step := workLog.CurrentStep()
	if step == nil {
		return nil, domain.ErrNoStepsRemaining
	}

	if req.Skip {
		step.Status = domain.StepStatusSkipped
	} else {
		step.Status = domain.StepStatusCompleted
	}

	now := time.Now()
	workLog.LastActivityAt = &now
	res := &domain.NextStepResponse{}
	if workLog.IsLastStep() {
		workLog.Status = domain.WorkLogStatusCompleted
		workLog.CompletedAt = &now
		res.NewStepIndex = -1
		res.Completed = true
	} else {
		workLog.CurrentStepIndex++
		next := workLog.CurrentStep()
		next.Status = domain.StepStatusInProgress
		res.NewStepIndex = workLog.CurrentStepIndex
		res.CurrentStep = next
	}
	if err := s.workLogRepository.UpdateWorkLog(ctx, workLog); err != nil {
		return nil, err
	}
	if res.Completed {
		if err := s.workLogRepository.UpdateRecognitionState(ctx, workLog.RecognitionID, "validated"); err != nil {
			return nil, err
		}
		observability.ValidationsCompleted.Inc()
	}
	return res, nil
}

// Reset rebuilds the work rows from the initial_* baseline. The server is the
// source of truth for the pristine state; the response carries the fresh rows
// so the client can swap its in-memory state wholesale.
func (s *workLogService) Reset(ctx context.Context, workLogID int64) (*domain.ResetResponse, error) {
	workLog, err := s.activeWorkLog(ctx, workLogID)
	if err != nil {
		return nil, err
	}

	initialItems, err := s.workLogRepository.GetInitialItems(ctx, workLog.RecognitionID)
	if err != nil {
		return nil, err
	}
	initialAnnotations, err := s.workLogRepository.GetInitialAnnotations(ctx, workLog.RecognitionID)
	if err != nil {
		return nil, err
	}

	items := make([]entities.WorkItem, 0, len(initialItems))
	for _, init := range initialItems {
		initID := init.ID
		items = append(items, entities.WorkItem{
			WorkLogID:         workLogID,
			RecognitionID:     workLog.RecognitionID,
			InitialItemID:     &initID,
			Type:              init.Type,
			RecipeLineID:      init.RecipeLineID,
			Quantity:          init.Quantity,
			BottleOrientation: init.BottleOrientation,
			Metadata:          init.Metadata,
		})
	}
	annotationsByInitialItem := make(map[int64][]entities.WorkAnnotation, len(initialAnnotations))
	for _, init := range initialAnnotations {
		initID := init.ID
		annotationsByInitialItem[init.InitialItemID] = append(annotationsByInitialItem[init.InitialItemID], entities.WorkAnnotation{
			WorkLogID:           workLogID,
			ImageID:             init.ImageID,
			InitialAnnotationID: &initID,
			BBox:                init.BBox,
			IsOccluded:          init.IsOccluded,
			OcclusionMetadata:   init.OcclusionMetadata,
		})
	}

	createdItems, createdAnnotations, err := s.workLogRepository.ReplaceWorkRows(ctx, workLogID, items, annotationsByInitialItem)
	if err != nil {
		return nil, err
	}
	observability.SessionResets.Inc()
	return &domain.ResetResponse{Items: createdItems, Annotations: createdAnnotations}, nil
}

func (s *workLogService) Heartbeat(ctx context.Context, workLogID int64) error {
	if _, err := s.activeWorkLog(ctx, workLogID); err != nil {
		return err
	}
	if err := s.workLogRepository.TouchLastActivity(ctx, workLogID, time.Now()); err != nil {
		return err
	}
	observability.Heartbeats.Inc()
	return nil
}

func (s *workLogService) Claim(ctx context.Context, reviewerID string) (*domain.ClaimWorkLogResponse, error) {
	reviewerUUID, err := uuid.Parse(reviewerID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	workLog, err := s.workLogRepository.ClaimOldestPending(ctx, reviewerUUID)
	if err != nil {
		return nil, domain.ErrNoPendingWork
	}
	if err := s.workLogRepository.UpdateRecognitionState(ctx, workLog.RecognitionID, "in_validation"); err != nil {
		return nil, err
	}
	observability.SessionsClaimed.Inc()
	return &domain.ClaimWorkLogResponse{WorkLogID: workLog.ID}, nil
}

// DownloadImage streams a camera shot from the bucket; the caller owns the reader.
func (s *workLogService) DownloadImage(ctx context.Context, imageID int64) (io.ReadCloser, string, error) {
	img, err := s.workLogRepository.GetImageByID(ctx, imageID)
	if err != nil {
		return nil, "", domain.ErrImageNotFound
	}
	return s.awsS3.DownloadFile(ctx, img.StoragePath)
}
